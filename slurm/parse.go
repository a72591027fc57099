package slurm

import (
	"fmt"
	"strconv"
	"strings"
)

var ErrUnexpectedSubmitOutput = fmt.Errorf("unexpected sbatch output")

// ParseSubmitOutput extracts the job ID from sbatch's stdout, which is
// "Submitted batch job <id>" on success.
func ParseSubmitOutput(output string) (string, error) {
	line := strings.TrimSpace(output)
	const prefix = "Submitted batch job "
	if !strings.HasPrefix(line, prefix) {
		return "", ErrUnexpectedSubmitOutput
	}
	id := strings.TrimSpace(strings.TrimPrefix(line, prefix))
	if _, err := strconv.Atoi(id); err != nil {
		return "", ErrUnexpectedSubmitOutput
	}
	return id, nil
}

// stateToStatus maps squeue/sacct state strings. sacct may append a "+"
// (e.g. "CANCELLED+") and a " by <uid>" suffix.
func stateToStatus(state string) JobStatus {
	s := strings.ToUpper(strings.TrimSpace(state))
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSuffix(s, "+")
	switch s {
	case "PD", "PENDING", "CF", "CONFIGURING", "RQ", "REQUEUED":
		return JobStatusPending
	case "R", "RUNNING", "CG", "COMPLETING", "S", "SUSPENDED":
		return JobStatusRunning
	case "CD", "COMPLETED":
		return JobStatusCompleted
	case "F", "FAILED", "NF", "NODE_FAIL", "OOM", "OUT_OF_MEMORY", "BF", "BOOT_FAIL", "PR", "PREEMPTED":
		return JobStatusFailed
	case "CA", "CANCELLED":
		return JobStatusCancelled
	case "TO", "TIMEOUT", "DL", "DEADLINE":
		return JobStatusTimeout
	}
	return JobStatusUnknown
}

// ParseJobInfo reads one pipe-separated record in the form
// "<id>|<name>|<partition>|<state>|<reason>|<exitcode>", the format both
// squeue and sacct are asked to emit.
func ParseJobInfo(line string) (*JobInfo, error) {
	fields := strings.Split(strings.TrimSpace(line), "|")
	if len(fields) < 4 {
		return nil, fmt.Errorf("malformed job record %q", line)
	}
	info := &JobInfo{
		ID:        fields[0],
		Name:      fields[1],
		Partition: fields[2],
		Status:    stateToStatus(fields[3]),
	}
	if len(fields) > 4 {
		info.Reason = fields[4]
	}
	if len(fields) > 5 {
		// sacct exit code is "<code>:<signal>"
		code, _, _ := strings.Cut(fields[5], ":")
		if v, err := strconv.Atoi(code); err == nil {
			info.ExitCode = v
		}
	}
	return info, nil
}

// ParseJobList parses multi-line squeue/sacct output, skipping blanks and
// sacct's ".batch"/".extern" step rows.
func ParseJobList(output string) ([]*JobInfo, error) {
	var infos []*JobInfo
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		info, err := ParseJobInfo(line)
		if err != nil {
			return nil, err
		}
		if strings.Contains(info.ID, ".") {
			continue
		}
		infos = append(infos, info)
	}
	return infos, nil
}
