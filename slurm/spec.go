package slurm

type MailType string

const (
	MailTypeNone      MailType = "NONE"
	MailTypeBegin     MailType = "BEGIN"
	MailTypeEnd       MailType = "END"
	MailTypeFail      MailType = "FAIL"
	MailTypeRequeue   MailType = "REQUEUE"
	MailTypeAll       MailType = "ALL"
	MailTypeTimeLimit MailType = "TIME_LIMIT"
)

// JobSpec is the full resource request handed to sbatch, plus the
// activation preamble and the one command the job runs.
type JobSpec struct {
	Name         string     `json:"name" yaml:"name" toml:"name"`
	TimeLimit    string     `json:"time-limit" yaml:"time-limit" toml:"time_limit"` // D-HH:MM:SS
	Tasks        int        `json:"tasks" yaml:"tasks" toml:"tasks"`
	CPUsPerTask  int        `json:"cpus-per-task" yaml:"cpus-per-task" toml:"cpus_per_task"`
	GPUs         int        `json:"gpus" yaml:"gpus" toml:"gpus"`
	Partition    string     `json:"partition" yaml:"partition" toml:"partition"`
	ExcludeNodes string     `json:"exclude-nodes" yaml:"exclude-nodes" toml:"exclude_nodes"` // e.g. linux[41-60]
	Memory       string     `json:"memory" yaml:"memory" toml:"memory"`                      // e.g. 50G
	MailUser     string     `json:"mail-user" yaml:"mail-user" toml:"mail_user"`
	MailTypes    []MailType `json:"mail-types" yaml:"mail-types" toml:"mail_types"`
	Output       string     `json:"output" yaml:"output" toml:"output"` // %j expands to the job ID
	ErrorOutput  string     `json:"error-output" yaml:"error-output" toml:"error_output"`
	WorkDir      string     `json:"work-dir" yaml:"work-dir" toml:"work_dir"`
	CondaEnv     string     `json:"conda-env" yaml:"conda-env" toml:"conda_env"`
	Command      string     `json:"command" yaml:"command" toml:"command"`
	Args         []string   `json:"args" yaml:"args" toml:"args"`
	Directives   []string   `json:"directives" yaml:"directives" toml:"directives"` // raw extra #SBATCH lines
}

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
	JobStatusTimeout   JobStatus = "timeout"
	JobStatusUnknown   JobStatus = "unknown"
)

// Terminal reports whether the scheduler will not change the status again.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled, JobStatusTimeout:
		return true
	}
	return false
}

type JobInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Partition string    `json:"partition"`
	Status    JobStatus `json:"status"`
	Reason    string    `json:"reason"`
	ExitCode  int       `json:"exit-code"`
}
