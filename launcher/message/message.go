package message

import "fmt"

// LaunchMessage asks the launch daemon to submit one training run. Only
// the experiment ID is required; the overrides win over the manifest.
type LaunchMessage struct {
	SubmissionID string `json:"submission_id"`
	ExperimentID string `json:"experiment_id"`
	User         string `json:"user"`
	Env          string `json:"env"`
	ValueCoef    string `json:"value_coef"`
	Partition    string `json:"partition"`
}

type LaunchReportMessage struct {
	SubmissionID string `json:"submission_id"`
	ExperimentID string `json:"experiment_id"`
	JobID        string `json:"job_id"`
	Success      bool   `json:"success"`
	Error        string `json:"error"`
	Done         bool   `json:"done"`
	Status       string `json:"status"`
	Message      string `json:"message"`
	Timestamp    int64  `json:"timestamp"` // time.Now().UnixMicro()
	// We don't use time.Now().UnixNano() as it exceeds js's Number.MAX_SAFE_INTEGER
}

var ErrMaxAttemptsExceeded = fmt.Errorf("max attempts exceeded")
