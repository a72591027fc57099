package runner

import (
	"os"
	"testing"
)

func TestStatusRoundTrip(t *testing.T) {
	spool := t.TempDir()

	if err := WriteStatus(spool, "kungfu-ppo", "sub-1", "123456", 4242); err != nil {
		t.Fatalf("write: %v", err)
	}
	status, err := GetStatus(spool)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if status.ExperimentID != "kungfu-ppo" || status.SubmissionID != "sub-1" {
		t.Fatalf("identifiers mismatch: %+v", status)
	}
	if status.JobID != "123456" || status.EntrancePID != 4242 {
		t.Fatalf("job fields mismatch: %+v", status)
	}

	if err := ClearStatus(spool); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := GetStatus(spool); !os.IsNotExist(err) {
		t.Fatalf("status survived clear: %v", err)
	}
}
