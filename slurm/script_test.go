package slurm

import (
	"strings"
	"testing"
)

func TestRender_FullSpec(t *testing.T) {
	spec := &JobSpec{
		Name:         "atari-train",
		TimeLimit:    "10-00:00:00",
		Tasks:        1,
		GPUs:         1,
		Partition:    "compsci-gpu",
		ExcludeNodes: "linux[41-60]",
		Memory:       "50G",
		MailUser:     "student@cs.example.edu",
		MailTypes:    []MailType{MailTypeEnd, MailTypeFail},
		Output:       "train-%j.out",
		CondaEnv:     "rl",
		Command:      "python",
		Args:         []string{"main.py", "--env", "ALE/KungFuMaster-v5", "--value_coef", "1"},
	}
	script, err := Render(spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		"#!/bin/bash",
		"#SBATCH --job-name=atari-train",
		"#SBATCH --time=10-00:00:00",
		"#SBATCH --ntasks=1",
		"#SBATCH --gres=gpu:1",
		"#SBATCH --partition=compsci-gpu",
		"#SBATCH --exclude=linux[41-60]",
		"#SBATCH --mem=50G",
		"#SBATCH --mail-user=student@cs.example.edu",
		"#SBATCH --mail-type=END,FAIL",
		"#SBATCH --output=train-%j.out",
		"source ~/.bashrc",
		"conda activate rl",
		`python main.py --env "ALE/KungFuMaster-v5" --value_coef 1`,
	}
	for _, line := range want {
		if !strings.Contains(script, line+"\n") {
			t.Errorf("rendered script missing line %q\nscript:\n%s", line, script)
		}
	}
}

func TestRender_DirectiveOrderDeterministic(t *testing.T) {
	spec := DefaultJobSpec()
	a, err := Render(spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Render(spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Fatalf("rendering is not deterministic:\n%s\n---\n%s", a, b)
	}
}

func TestRender_OmitsUnsetDirectives(t *testing.T) {
	spec := &JobSpec{
		Name:      "bare",
		TimeLimit: "30",
		Tasks:     1,
		Partition: "cpu",
		Command:   "hostname",
	}
	script, err := Render(spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, flag := range []string{"--gres", "--mem", "--mail-user", "--mail-type", "--exclude", "--output", "--error", "--chdir", "--cpus-per-task"} {
		if strings.Contains(script, flag) {
			t.Errorf("unset directive %s rendered:\n%s", flag, script)
		}
	}
	if strings.Contains(script, "conda activate") {
		t.Errorf("activation preamble rendered without a conda env:\n%s", script)
	}
}

func TestRender_WorkDirBecomesChdirDirective(t *testing.T) {
	spec := DefaultJobSpec()
	spec.WorkDir = "/var/spool/slurm-agent/sub-1"
	script, err := Render(spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(script, "#SBATCH --chdir=/var/spool/slurm-agent/sub-1\n") {
		t.Errorf("chdir directive missing:\n%s", script)
	}
	if strings.Contains(script, "\ncd ") {
		t.Errorf("work dir must be a scheduler directive, not a cd line:\n%s", script)
	}
}

func TestRender_ExtraDirectives(t *testing.T) {
	spec := DefaultJobSpec()
	spec.Directives = []string{"--nice=100"}
	script, err := Render(spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(script, "#SBATCH --nice=100\n") {
		t.Errorf("extra directive missing:\n%s", script)
	}
}

func TestRender_RejectsInvalidSpec(t *testing.T) {
	spec := DefaultJobSpec()
	spec.Partition = ""
	_, err := Render(spec)
	if err != ErrEmptyPartition {
		t.Fatalf("got %v, want ErrEmptyPartition", err)
	}
}

func TestQuoteArg(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"main.py", "main.py"},
		{"--env", "--env"},
		{"ALE/KungFuMaster-v5", `"ALE/KungFuMaster-v5"`},
		{"a b", `"a b"`},
		{`say "hi"`, `"say \"hi\""`},
		{"$HOME", `"\$HOME"`},
		{"", `""`},
	}
	for _, c := range cases {
		got := quoteArg(c.in)
		if got != c.want {
			t.Errorf("quoteArg(%q) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestReplacer_ReplaceSpec(t *testing.T) {
	rep := NewReplacer("atari-train", "exp-7", "alice", "/var/spool/slurmlaunch")
	spec := &JobSpec{
		Name:      "atari-train",
		TimeLimit: "60",
		Tasks:     1,
		Partition: "cpu",
		Command:   "python",
		Args:      []string{"main.py", "--run", "${experiment_id}"},
		Output:    "${spool_path}/${job_name}.out",
	}
	out := rep.ReplaceSpec(spec)
	if out.Args[2] != "exp-7" {
		t.Errorf("arg not expanded: %v", out.Args)
	}
	if out.Output != "/var/spool/slurmlaunch/atari-train.out" {
		t.Errorf("output not expanded: %v", out.Output)
	}
	if spec.Args[2] != "${experiment_id}" {
		t.Errorf("input spec mutated: %v", spec.Args)
	}
}
