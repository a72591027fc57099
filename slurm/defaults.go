package slurm

// DefaultJobSpec is the resource request the CLI starts from when no job
// file is given: one task, one GPU, ten days of wall clock.
func DefaultJobSpec() *JobSpec {
	return &JobSpec{
		Name:         "atari-train",
		TimeLimit:    "10-00:00:00",
		Tasks:        1,
		GPUs:         1,
		Partition:    "compsci-gpu",
		ExcludeNodes: "linux[41-60]",
		Memory:       "50G",
		MailTypes:    []MailType{MailTypeEnd, MailTypeFail},
		Output:       "train-%j.out",
		CondaEnv:     "rl",
		Command:      "python",
		Args:         []string{"main.py", "--env", "ALE/KungFuMaster-v5", "--value_coef", "1"},
	}
}
