package agent

import (
	"github.com/clusterlab/slurmlaunch/agent/api"
	"github.com/clusterlab/slurmlaunch/common"
	"github.com/clusterlab/slurmlaunch/slurm"
)

// Client talks to a submit agent over its signed HTTP surface.
type Client struct {
	cc common.CommonClient
}

func NewClient(cc common.CommonClient) *Client {
	c := &Client{
		cc: cc,
	}
	return c
}

func (c *Client) SubmitJob(submissionID string, spec *slurm.JobSpec, user string) (string, error) {
	req := &api.SubmitJobRequest{
		SubmissionID: submissionID,
		Spec:         spec,
		User:         user,
	}
	resp := new(api.SubmitJobResponse)
	err := c.cc.DoPostRequest("submit-job", req, resp)
	if err != nil {
		return "", err
	}
	return resp.JobID, resp.GetError()
}

func (c *Client) CancelJob(jobID string, user string) error {
	req := &api.CancelJobRequest{
		JobID: jobID,
		User:  user,
	}
	resp := new(api.CancelJobResponse)
	err := c.cc.DoPostRequest("cancel-job", req, resp)
	if err != nil {
		return err
	}
	return resp.GetError()
}

func (c *Client) JobStatus(jobID string) (*slurm.JobInfo, error) {
	req := &api.JobStatusRequest{
		JobID: jobID,
	}
	resp := new(api.JobStatusResponse)
	err := c.cc.DoPostRequest("job-status", req, resp)
	if err != nil {
		return nil, err
	}
	return resp.Info, resp.GetError()
}

func (c *Client) UploadLogs(submissionID string, jobID string, paths []string) ([]string, error) {
	req := &api.UploadLogsRequest{
		SubmissionID: submissionID,
		JobID:        jobID,
		Paths:        paths,
	}
	resp := new(api.UploadLogsResponse)
	err := c.cc.DoPostRequest("upload-logs", req, resp)
	if err != nil {
		return nil, err
	}
	return resp.Objects, resp.GetError()
}
