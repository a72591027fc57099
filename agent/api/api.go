package api

import (
	"github.com/clusterlab/slurmlaunch/common"
	"github.com/clusterlab/slurmlaunch/slurm"
)

type SubmitJobRequest struct {
	SubmissionID string         `json:"submission-id"`
	Spec         *slurm.JobSpec `json:"spec"`
	User         string         `json:"user"`
}

type SubmitJobResponse struct {
	common.ResponseBase
	JobID string `json:"job-id"`
}

type CancelJobRequest struct {
	JobID string `json:"job-id"`
	User  string `json:"user"`
}

type CancelJobResponse struct {
	common.ResponseBase
}

type JobStatusRequest struct {
	JobID string `json:"job-id"`
}

type JobStatusResponse struct {
	common.ResponseBase
	Info *slurm.JobInfo `json:"info"`
}

type UploadLogsRequest struct {
	SubmissionID string   `json:"submission-id"`
	JobID        string   `json:"job-id"`
	Paths        []string `json:"paths"`
}

type UploadLogsResponse struct {
	common.ResponseBase
	Objects []string `json:"objects"`
}
