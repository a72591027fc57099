package slurm

import "testing"

func TestParseSubmitOutput(t *testing.T) {
	id, err := ParseSubmitOutput("Submitted batch job 123456\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "123456" {
		t.Fatalf("got %q, want 123456", id)
	}
	for _, bad := range []string{"", "sbatch: error: invalid partition", "Submitted batch job abc"} {
		if _, err := ParseSubmitOutput(bad); err == nil {
			t.Errorf("ParseSubmitOutput(%q): want error", bad)
		}
	}
}

func TestParseJobInfo(t *testing.T) {
	info, err := ParseJobInfo("123456|atari-train|compsci-gpu|RUNNING|None")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.ID != "123456" || info.Name != "atari-train" || info.Partition != "compsci-gpu" {
		t.Fatalf("fields mismatch: %+v", info)
	}
	if info.Status != JobStatusRunning {
		t.Fatalf("status = %v, want running", info.Status)
	}
	if _, err := ParseJobInfo("123456|only-two"); err == nil {
		t.Fatal("want error for short record")
	}
}

func TestParseJobInfo_SacctExitCode(t *testing.T) {
	info, err := ParseJobInfo("123456|atari-train|compsci-gpu|FAILED|OutOfMemory|137:0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Status != JobStatusFailed {
		t.Fatalf("status = %v, want failed", info.Status)
	}
	if info.ExitCode != 137 {
		t.Fatalf("exit code = %d, want 137", info.ExitCode)
	}
}

func TestStateToStatus(t *testing.T) {
	cases := map[string]JobStatus{
		"PENDING":           JobStatusPending,
		"PD":                JobStatusPending,
		"RUNNING":           JobStatusRunning,
		"COMPLETING":        JobStatusRunning,
		"COMPLETED":         JobStatusCompleted,
		"FAILED":            JobStatusFailed,
		"OUT_OF_MEMORY":     JobStatusFailed,
		"PREEMPTED":         JobStatusFailed,
		"CANCELLED":         JobStatusCancelled,
		"CANCELLED+":        JobStatusCancelled,
		"CANCELLED by 1234": JobStatusCancelled,
		"TIMEOUT":           JobStatusTimeout,
		"DEADLINE":          JobStatusTimeout,
		"SPECIAL_EXIT":      JobStatusUnknown,
		"":                  JobStatusUnknown,
	}
	for in, want := range cases {
		if got := stateToStatus(in); got != want {
			t.Errorf("stateToStatus(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseJobList_SkipsStepRows(t *testing.T) {
	out := "123456|atari-train|compsci-gpu|COMPLETED|None|0:0\n" +
		"123456.batch|batch|compsci-gpu|COMPLETED|None|0:0\n" +
		"123456.extern|extern|compsci-gpu|COMPLETED|None|0:0\n"
	infos, err := ParseJobList(out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("got %d records, want 1", len(infos))
	}
	if !infos[0].Status.Terminal() {
		t.Fatalf("completed job should be terminal")
	}
}
