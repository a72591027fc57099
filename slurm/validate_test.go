package slurm

import "testing"

func TestNormalizeTimeLimit(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"10-00:00:00", "10-00:00:00", false},
		{"1-12:30:00", "1-12:30:00", false},
		{"12:30:00", "0-12:30:00", false},
		{"240:00:00", "10-00:00:00", false},
		{"25:00:00", "1-01:00:00", false},
		{"30:00", "0-00:30:00", false},
		{"90", "0-01:30:00", false},
		{"1500", "1-01:00:00", false},
		{"2-06", "2-06:00:00", false},
		{"2-06:15", "2-06:15:00", false},
		{"", "", true},
		{"abc", "", true},
		{"-5", "", true},
		{"1-25:00:00", "", true},
		{"00:61:00", "", true},
		{"1:2:3:4", "", true},
	}
	for _, c := range cases {
		got, err := NormalizeTimeLimit(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("NormalizeTimeLimit(%q) = %q, want error", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeTimeLimit(%q): unexpected error %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("NormalizeTimeLimit(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestValidate(t *testing.T) {
	base := func() *JobSpec { return DefaultJobSpec() }

	cases := []struct {
		name   string
		mutate func(*JobSpec)
		want   error
	}{
		{"valid", func(s *JobSpec) {}, nil},
		{"empty name", func(s *JobSpec) { s.Name = "" }, ErrEmptyJobName},
		{"name with spaces", func(s *JobSpec) { s.Name = "a b" }, ErrEmptyJobName},
		{"empty partition", func(s *JobSpec) { s.Partition = "" }, ErrEmptyPartition},
		{"empty command", func(s *JobSpec) { s.Command = "" }, ErrEmptyCommand},
		{"zero tasks", func(s *JobSpec) { s.Tasks = 0 }, ErrNegativeTasks},
		{"negative gpus", func(s *JobSpec) { s.GPUs = -1 }, ErrNegativeGPUs},
		{"negative cpus", func(s *JobSpec) { s.CPUsPerTask = -2 }, ErrNegativeCPUs},
		{"bad time", func(s *JobSpec) { s.TimeLimit = "soon" }, ErrInvalidTimeLimit},
		{"bad memory", func(s *JobSpec) { s.Memory = "50GB" }, ErrInvalidMemory},
		{"bad mail type", func(s *JobSpec) { s.MailTypes = []MailType{"SOMETIMES"} }, ErrInvalidMailType},
	}
	for _, c := range cases {
		spec := base()
		c.mutate(spec)
		err := Validate(spec)
		if err != c.want {
			t.Errorf("%s: Validate() = %v, want %v", c.name, err, c.want)
		}
	}
}

func TestValidate_NormalizesTimeLimit(t *testing.T) {
	spec := DefaultJobSpec()
	spec.TimeLimit = "90"
	if err := Validate(spec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.TimeLimit != "0-01:30:00" {
		t.Fatalf("time limit not normalized: %q", spec.TimeLimit)
	}
}
