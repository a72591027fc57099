package localrun

import (
	"strings"
	"testing"

	"github.com/clusterlab/slurmlaunch/slurm"
)

func TestMemoryToMB(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"50G", 50 * 1024, false},
		{"512M", 512, false},
		{"2T", 2 * 1024 * 1024, false},
		{"2048K", 2, false},
		{"512K", 1, false},
		{"1024", 1024, false},
		{"", 0, false},
		{"fifty", 0, true},
		{"50GB", 0, true},
	}
	for _, c := range cases {
		got, err := memoryToMB(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("memoryToMB(%q) = %d, want error", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("memoryToMB(%q): unexpected error %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("memoryToMB(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestResourceControlFromSpec(t *testing.T) {
	spec := &slurm.JobSpec{
		Tasks:       2,
		CPUsPerTask: 4,
		Memory:      "50G",
	}
	res, err := ResourceControlFromSpec(spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.CPU != 800 {
		t.Errorf("CPU = %d, want 800", res.CPU)
	}
	if res.Memory != 50*1024 {
		t.Errorf("Memory = %d, want %d", res.Memory, 50*1024)
	}

	res, err = ResourceControlFromSpec(&slurm.JobSpec{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.CPU != 100 {
		t.Errorf("default CPU = %d, want 100", res.CPU)
	}
}

func TestResourceLimits_NoMemoryRequest(t *testing.T) {
	limits := resourceLimits(&ResourceControl{CPU: 100})
	if limits.Memory != nil {
		t.Fatalf("memoryless request installed a memory limit: %+v", limits.Memory)
	}
	if limits.CPU == nil || *limits.CPU.Quota != 50000 {
		t.Fatalf("cpu limit mismatch: %+v", limits.CPU)
	}

	limits = resourceLimits(&ResourceControl{Memory: 50 * 1024, CPU: 100})
	if limits.Memory == nil || *limits.Memory.Limit != 50*1024*1024*1024 {
		t.Fatalf("memory limit mismatch: %+v", limits.Memory)
	}
}

func TestShellLine(t *testing.T) {
	spec := slurm.DefaultJobSpec()
	line := shellLine(spec)
	if !strings.Contains(line, "conda activate rl && ") {
		t.Errorf("activation missing: %s", line)
	}
	if !strings.Contains(line, "python 'main.py' '--env' 'ALE/KungFuMaster-v5' '--value_coef' '1'") {
		t.Errorf("program line mismatch: %s", line)
	}
}

func TestCalcCgroupPath(t *testing.T) {
	s := NewSpawner("/sys/fs/cgroup/slurmlaunch")
	got := s.calcCgroupPath("sub/mit:1")
	if strings.ContainsAny(got[len("/sys/fs/cgroup/slurmlaunch/"):], "/:") {
		t.Fatalf("unsanitized cgroup path: %s", got)
	}
}
