package server

import (
	"testing"

	"github.com/clusterlab/slurmlaunch/agent/api"
	"github.com/clusterlab/slurmlaunch/agent/configure"
)

func spoolServer(spool string) *Server {
	return &Server{
		configure: &configure.Configure{
			SpoolPath: spool,
		},
	}
}

func TestResolveLogPath(t *testing.T) {
	s := spoolServer("/var/spool/slurm-agent")

	// Relative paths resolve against the submission's spool dir, where
	// the chdir directive anchors the job.
	got, err := s.resolveLogPath("sub-1", "train-42.out")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "/var/spool/slurm-agent/sub-1/train-42.out" {
		t.Fatalf("resolved to %q", got)
	}

	got, err = s.resolveLogPath("sub-1", "/var/spool/slurm-agent/sub-1/train-42.err")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "/var/spool/slurm-agent/sub-1/train-42.err" {
		t.Fatalf("resolved to %q", got)
	}

	got, err = s.resolveLogPath("sub-1", "${spool_path}/sub-1/train-42.out")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "/var/spool/slurm-agent/sub-1/train-42.out" {
		t.Fatalf("templated path resolved to %q", got)
	}
}

func TestResolveLogPath_RejectsEscapes(t *testing.T) {
	s := spoolServer("/var/spool/slurm-agent")
	for _, p := range []string{
		"../../etc/passwd",
		"../../../etc/passwd",
		"/etc/passwd",
		"/var/spool/slurm-agent-other/x.out",
	} {
		if _, err := s.resolveLogPath("sub-1", p); err != api.ErrLogPathOutsideSpool {
			t.Errorf("resolveLogPath(%q) = %v, want ErrLogPathOutsideSpool", p, err)
		}
	}
}
