package experiment

import (
	"reflect"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/clusterlab/slurmlaunch/slurm"
)

const manifestTOML = `
id = "kungfu-ppo"
name = "KungFuMaster PPO sweep"
env = "ALE/KungFuMaster-v5"
value_coef = "1"

[job]
name = "atari-train"
time_limit = "10-00:00:00"
tasks = 1
gpus = 1
partition = "compsci-gpu"
exclude_nodes = "linux[41-60]"
memory = "50G"
conda_env = "rl"
command = "python"
args = ["main.py"]
`

func parseManifest(t *testing.T) *Experiment {
	t.Helper()
	e := new(Experiment)
	if err := toml.Unmarshal([]byte(manifestTOML), e); err != nil {
		t.Fatalf("unmarshal manifest: %v", err)
	}
	return e
}

func TestManifestUnmarshal(t *testing.T) {
	e := parseManifest(t)
	if e.ID != "kungfu-ppo" || e.Env != "ALE/KungFuMaster-v5" {
		t.Fatalf("manifest fields mismatch: %+v", e)
	}
	if e.Job == nil || e.Job.Partition != "compsci-gpu" || e.Job.GPUs != 1 {
		t.Fatalf("job section mismatch: %+v", e.Job)
	}
}

func TestBuildJobSpec_Defaults(t *testing.T) {
	e := parseManifest(t)
	spec, err := e.BuildJobSpec(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"main.py", "--env", "ALE/KungFuMaster-v5", "--value_coef", "1"}
	if !reflect.DeepEqual(spec.Args, want) {
		t.Fatalf("args = %v, want %v", spec.Args, want)
	}
	if len(e.Job.Args) != 1 {
		t.Fatalf("manifest job spec mutated: %v", e.Job.Args)
	}
}

func TestBuildJobSpec_Overrides(t *testing.T) {
	e := parseManifest(t)
	spec, err := e.BuildJobSpec(&Overrides{
		Env:       "ALE/MsPacman-v5",
		ValueCoef: "0.5",
		Partition: "compsci-gpu-long",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"main.py", "--env", "ALE/MsPacman-v5", "--value_coef", "0.5"}
	if !reflect.DeepEqual(spec.Args, want) {
		t.Fatalf("args = %v, want %v", spec.Args, want)
	}
	if spec.Partition != "compsci-gpu-long" {
		t.Fatalf("partition override not applied: %v", spec.Partition)
	}
}

func TestBuildJobSpec_MissingSections(t *testing.T) {
	e := parseManifest(t)
	e.Job = nil
	if _, err := e.BuildJobSpec(nil); err != ErrNoJobSection {
		t.Fatalf("got %v, want ErrNoJobSection", err)
	}

	e = parseManifest(t)
	e.Env = ""
	if _, err := e.BuildJobSpec(nil); err != ErrNoEnv {
		t.Fatalf("got %v, want ErrNoEnv", err)
	}
}

func TestBuildJobSpec_InvalidResourceRequest(t *testing.T) {
	e := parseManifest(t)
	e.Job.TimeLimit = "whenever"
	if _, err := e.BuildJobSpec(nil); err != slurm.ErrInvalidTimeLimit {
		t.Fatalf("got %v, want ErrInvalidTimeLimit", err)
	}
}
