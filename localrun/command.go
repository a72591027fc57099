package localrun

import (
	"log"
	"os"
	"os/exec"
	"strings"

	"github.com/clusterlab/slurmlaunch/common/runner"
	"github.com/clusterlab/slurmlaunch/localrun/configure"
	"github.com/clusterlab/slurmlaunch/slurm"
	"gopkg.in/yaml.v2"
)

// Command runs a job spec directly on this host, for machines without a
// Slurm installation. The resource request still holds, enforced through
// cgroups instead of the scheduler.
type Command struct {
	configure *configure.Configure
	spawner   *Spawner
}

func NewCommand() *Command {
	cmd := &Command{}
	return cmd
}

func (c *Command) Init(conf string) error {
	cFile, err := os.ReadFile(conf)
	if err != nil {
		return err
	}
	c.configure = new(configure.Configure)
	err = yaml.Unmarshal(cFile, c.configure)
	if err != nil {
		return err
	}
	c.spawner = NewSpawner(c.configure.CgroupsBasePath)
	err = c.spawner.Init()
	return err
}

// shellLine builds the one-liner the sbatch script would have run: the
// activation preamble followed by the program.
func shellLine(spec *slurm.JobSpec) string {
	parts := []string{}
	if spec.CondaEnv != "" {
		parts = append(parts, "source ~/.bashrc", "conda activate "+spec.CondaEnv)
	}
	cmdLine := spec.Command
	for _, arg := range spec.Args {
		cmdLine += " '" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
	}
	parts = append(parts, cmdLine)
	return strings.Join(parts, " && ")
}

func (c *Command) RunJob(spec *slurm.JobSpec, user string, submissionID string) error {
	err := slurm.Validate(spec)
	if err != nil {
		return err
	}
	res, err := ResourceControlFromSpec(spec)
	if err != nil {
		return err
	}
	cmd := exec.Command("bash", "-c", shellLine(spec))
	if spec.WorkDir != "" {
		cmd.Dir = spec.WorkDir
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	err = runner.WriteStatus(c.configure.SpoolPath, "", submissionID, "", -1)
	defer runner.ClearStatus(c.configure.SpoolPath)
	if err != nil {
		log.Println("ERROR:", err)
		return err
	}
	cg, err := c.spawner.SpawnCommand(cmd, user, res, submissionID)
	if err != nil {
		if cg != nil {
			cg.Delete()
		}
		return err
	}
	defer cg.Delete()
	err = runner.WriteStatus(c.configure.SpoolPath, "", submissionID, "", cmd.Process.Pid)
	if err != nil {
		log.Println("ERROR:", err)
	}
	return cmd.Wait()
}
