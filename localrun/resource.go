package localrun

import (
	"fmt"
	"strconv"

	"github.com/clusterlab/slurmlaunch/slurm"
)

type ResourceControl struct {
	Memory int64 `json:"memory" yaml:"memory" toml:"memory"` // Memory limit in MBytes
	CPU    int64 `json:"cpu" yaml:"cpu" toml:"cpu"`          // 100 for one cpu, 200 for two, 300 for three...
}

var ErrInvalidMemoryRequest = fmt.Errorf("invalid memory request")

// memoryToMB converts a Slurm memory request (50G, 512M, plain MB) to
// megabytes. Sub-megabyte requests round up so a request never collapses
// to a zero limit.
func memoryToMB(memory string) (int64, error) {
	if memory == "" {
		return 0, nil
	}
	unit := memory[len(memory)-1]
	mult := int64(1)
	digits := memory
	switch unit {
	case 'K':
		digits = memory[:len(memory)-1]
		v, err := strconv.ParseInt(digits, 10, 64)
		if err != nil || v < 0 {
			return 0, ErrInvalidMemoryRequest
		}
		return (v + 1023) / 1024, nil
	case 'M':
		digits = memory[:len(memory)-1]
	case 'G':
		digits = memory[:len(memory)-1]
		mult = 1024
	case 'T':
		digits = memory[:len(memory)-1]
		mult = 1024 * 1024
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || v < 0 {
		return 0, ErrInvalidMemoryRequest
	}
	return v * mult, nil
}

// ResourceControlFromSpec maps a job spec's request onto local cgroup
// limits. A spec that never set cpus-per-task gets one CPU per task.
func ResourceControlFromSpec(spec *slurm.JobSpec) (*ResourceControl, error) {
	mem, err := memoryToMB(spec.Memory)
	if err != nil {
		return nil, err
	}
	cpus := spec.CPUsPerTask
	if cpus == 0 {
		cpus = 1
	}
	tasks := spec.Tasks
	if tasks == 0 {
		tasks = 1
	}
	return &ResourceControl{
		Memory: mem,
		CPU:    int64(cpus*tasks) * 100,
	}, nil
}
