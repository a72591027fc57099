package slurm

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/clusterlab/slurmlaunch/common/runner"
)

var ErrJobNotFound = fmt.Errorf("job not found")

// Client drives the scheduler through its command-line tools. Binaries
// default to the bare names and get resolved through PATH.
type Client struct {
	SbatchPath  string
	ScancelPath string
	SqueuePath  string
	SacctPath   string
}

func NewClient() *Client {
	return &Client{
		SbatchPath:  "sbatch",
		ScancelPath: "scancel",
		SqueuePath:  "squeue",
		SacctPath:   "sacct",
	}
}

func (c *Client) run(ctx context.Context, user string, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if user != "" {
		var err error
		cmd, err = runner.CommandUseUser(cmd, user)
		if err != nil {
			return "", err
		}
	}
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	err := cmd.Run()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", err
		}
		return "", fmt.Errorf("%s: %s", name, msg)
	}
	return stdout.String(), nil
}

// Submit renders the spec, writes the script into spoolDir and hands it to
// sbatch. When user is non-empty sbatch runs under that account.
func (c *Client) Submit(ctx context.Context, spec *JobSpec, spoolDir string, user string) (string, error) {
	script, err := Render(spec)
	if err != nil {
		return "", err
	}
	err = os.MkdirAll(spoolDir, os.FileMode(0755))
	if err != nil {
		return "", err
	}
	scriptPath := filepath.Join(spoolDir, spec.Name+".sbatch")
	err = os.WriteFile(scriptPath, []byte(script), os.FileMode(0644))
	if err != nil {
		return "", err
	}
	out, err := c.run(ctx, user, c.SbatchPath, scriptPath)
	if err != nil {
		return "", err
	}
	return ParseSubmitOutput(out)
}

func (c *Client) Cancel(ctx context.Context, jobID string, user string) error {
	_, err := c.run(ctx, user, c.ScancelPath, jobID)
	return err
}

const jobInfoFormat = "%i|%j|%P|%T|%r"

// Status looks the job up in the queue first, then falls back to
// accounting for jobs that already left the queue.
func (c *Client) Status(ctx context.Context, jobID string) (*JobInfo, error) {
	out, err := c.run(ctx, "", c.SqueuePath, "--noheader", "--job", jobID, "--format", jobInfoFormat)
	if err == nil {
		infos, err := ParseJobList(out)
		if err != nil {
			return nil, err
		}
		if len(infos) > 0 {
			return infos[0], nil
		}
	}
	out, err = c.run(
		ctx, "", c.SacctPath,
		"--noheader", "--parsable2", "--jobs", jobID,
		"--format", "JobID,JobName,Partition,State,Reason,ExitCode",
	)
	if err != nil {
		return nil, err
	}
	infos, err := ParseJobList(out)
	if err != nil {
		return nil, err
	}
	for _, info := range infos {
		if info.ID == jobID {
			return info, nil
		}
	}
	return nil, ErrJobNotFound
}
