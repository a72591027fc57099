package experiment

import (
	"fmt"

	"github.com/clusterlab/slurmlaunch/slurm"
)

// Experiment is the manifest stored as experiment.toml in the experiment
// bucket. The job section carries the resource request; env and
// value_coef become the training program's two flags.
type Experiment struct {
	ID          string         `json:"id" yaml:"id" toml:"id"`
	Name        string         `json:"name" yaml:"name" toml:"name"`
	Description string         `json:"description" yaml:"description" toml:"description"`
	Env         string         `json:"env" yaml:"env" toml:"env"`
	ValueCoef   string         `json:"value-coef" yaml:"value-coef" toml:"value_coef"`
	Job         *slurm.JobSpec `json:"job" yaml:"job" toml:"job"`
}

var ErrNoJobSection = fmt.Errorf("experiment manifest has no job section")
var ErrNoEnv = fmt.Errorf("experiment manifest sets no env")

type Overrides struct {
	Env       string
	ValueCoef string
	Partition string
}

// BuildJobSpec materializes the resource request for one launch:
// manifest defaults, then overrides, then the fixed program flags.
func (e *Experiment) BuildJobSpec(o *Overrides) (*slurm.JobSpec, error) {
	if e.Job == nil {
		return nil, ErrNoJobSection
	}
	spec := *e.Job
	spec.Args = append([]string{}, e.Job.Args...)
	env := e.Env
	valueCoef := e.ValueCoef
	if o != nil {
		if o.Env != "" {
			env = o.Env
		}
		if o.ValueCoef != "" {
			valueCoef = o.ValueCoef
		}
		if o.Partition != "" {
			spec.Partition = o.Partition
		}
	}
	if env == "" {
		return nil, ErrNoEnv
	}
	spec.Args = append(spec.Args, "--env", env)
	if valueCoef != "" {
		spec.Args = append(spec.Args, "--value_coef", valueCoef)
	}
	err := slurm.Validate(&spec)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}
