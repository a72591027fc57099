package runner

import (
	"encoding/json"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"strconv"
	"syscall"
)

func CommandUseUser(cmd *exec.Cmd, username string) (*exec.Cmd, error) {
	u, err := user.Lookup(username)
	if err != nil {
		return nil, err
	}
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	uid, err := strconv.ParseUint(u.Uid, 10, 32)
	if err != nil {
		return nil, err
	}
	gid, err := strconv.ParseUint(u.Gid, 10, 32)
	if err != nil {
		return nil, err
	}
	if cmd.SysProcAttr.Credential == nil {
		cmd.SysProcAttr.Credential = &syscall.Credential{
			Uid: uint32(uid),
			Gid: uint32(gid),
		}
	}
	if cmd.Dir == "" {
		cmd.Dir = u.HomeDir
	}
	cmd.Env = append(cmd.Env, []string{
		"HOME=" + u.HomeDir,
		"USER=" + u.Username,
	}...)
	return cmd, nil
}

func GetHomeDirectory() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	return u.HomeDir, nil
}

func GetCurrentUsername() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	return u.Username, nil
}

// Status records the launch currently running on this host, so CLI
// subcommands invoked from inside a job can find their own submission.
type Status struct {
	ExperimentID string `json:"experiment-id"`
	SubmissionID string `json:"submission-id"`
	JobID        string `json:"job-id"`
	EntrancePID  int    `json:"entrance-pid"`
}

func getStatusFileName(spoolPath string) (string, error) {
	u, err := GetCurrentUsername()
	if err != nil {
		return "", err
	}
	return filepath.Join(spoolPath, u+".launch.json"), nil
}

func GetStatus(spoolPath string) (*Status, error) {
	path, err := getStatusFileName(spoolPath)
	if err != nil {
		return nil, err
	}
	f, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	status := new(Status)
	err = json.Unmarshal(f, status)
	if err != nil {
		return nil, err
	}
	return status, nil
}

func WriteStatus(
	spoolPath string, experimentID string, submissionID string, jobID string, entrancePID int,
) error {
	path, err := getStatusFileName(spoolPath)
	if err != nil {
		return err
	}
	status := &Status{
		ExperimentID: experimentID,
		SubmissionID: submissionID,
		JobID:        jobID,
		EntrancePID:  entrancePID,
	}
	f, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return os.WriteFile(path, f, os.FileMode(0600))
}

func ClearStatus(spoolPath string) error {
	path, err := getStatusFileName(spoolPath)
	if err != nil {
		return err
	}
	return os.Remove(path)
}
