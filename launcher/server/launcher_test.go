package server

import (
	"reflect"
	"testing"

	"github.com/clusterlab/slurmlaunch/launcher/experiment"
	"github.com/clusterlab/slurmlaunch/launcher/message"
	"github.com/clusterlab/slurmlaunch/slurm"
)

func TestLogPaths(t *testing.T) {
	spec := &slurm.JobSpec{
		Output:      "train-%j.out",
		ErrorOutput: "train-%j.err",
	}
	got := logPaths(spec, "123456")
	want := []string{"train-123456.out", "train-123456.err"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("logPaths = %v, want %v", got, want)
	}

	if got := logPaths(&slurm.JobSpec{}, "123456"); got != nil {
		t.Fatalf("logPaths on empty spec = %v, want nil", got)
	}
}

func TestInvalidRequestReport(t *testing.T) {
	msg := &message.LaunchMessage{
		SubmissionID: "sub-1",
		ExperimentID: "kungfu-ppo",
	}
	report := invalidRequestReport(msg, experiment.ErrNoJobSection)
	if !report.Done {
		t.Fatal("report must be terminal so consumers stop waiting")
	}
	if report.Success {
		t.Fatal("report must not claim success")
	}
	if report.SubmissionID != "sub-1" || report.ExperimentID != "kungfu-ppo" {
		t.Fatalf("identifiers mismatch: %+v", report)
	}
	if report.Error != experiment.ErrNoJobSection.Error() {
		t.Fatalf("error not carried: %q", report.Error)
	}
}
