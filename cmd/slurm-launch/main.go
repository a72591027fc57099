package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/clusterlab/slurmlaunch/agent"
	"github.com/clusterlab/slurmlaunch/common"
	"github.com/clusterlab/slurmlaunch/common/runner"
	"github.com/clusterlab/slurmlaunch/common/version"
	"github.com/clusterlab/slurmlaunch/localrun"
	"github.com/clusterlab/slurmlaunch/slurm"
	"github.com/satori/uuid"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v2"
)

func specFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "job-file",
			Usage: "Path to a job spec file (yaml format); flags override its fields",
		},
		&cli.StringFlag{
			Name:  "name",
			Usage: "Job name",
		},
		&cli.StringFlag{
			Name:  "time",
			Usage: "Wall-clock limit, e.g. 10-00:00:00",
		},
		&cli.IntFlag{
			Name:  "tasks",
			Usage: "Task count",
		},
		&cli.IntFlag{
			Name:  "gpus",
			Usage: "GPUs for the job",
		},
		&cli.StringFlag{
			Name:  "partition",
			Usage: "Partition to submit to",
		},
		&cli.StringFlag{
			Name:  "exclude",
			Usage: "Nodes to exclude, e.g. linux[41-60]",
		},
		&cli.StringFlag{
			Name:  "mem",
			Usage: "Memory request, e.g. 50G",
		},
		&cli.StringFlag{
			Name:  "mail-user",
			Usage: "Notification address (events: END, FAIL)",
		},
		&cli.StringFlag{
			Name:  "output",
			Usage: "Stdout path, %j expands to the job ID",
		},
		&cli.StringFlag{
			Name:  "conda-env",
			Usage: "Conda environment activated before the program runs",
		},
		&cli.StringFlag{
			Name:  "env",
			Usage: "Gym environment id passed to the training program",
		},
		&cli.StringFlag{
			Name:  "value-coef",
			Usage: "Value loss coefficient passed to the training program",
		},
	}
}

// buildSpec layers defaults, the job file and flag overrides.
func buildSpec(ctx *cli.Context) (*slurm.JobSpec, error) {
	spec := slurm.DefaultJobSpec()
	if jobFile := ctx.String("job-file"); jobFile != "" {
		f, err := os.ReadFile(jobFile)
		if err != nil {
			return nil, err
		}
		spec = new(slurm.JobSpec)
		err = yaml.Unmarshal(f, spec)
		if err != nil {
			return nil, err
		}
	}
	if v := ctx.String("name"); v != "" {
		spec.Name = v
	}
	if v := ctx.String("time"); v != "" {
		spec.TimeLimit = v
	}
	if v := ctx.Int("tasks"); v != 0 {
		spec.Tasks = v
	}
	if ctx.IsSet("gpus") {
		spec.GPUs = ctx.Int("gpus")
	}
	if v := ctx.String("partition"); v != "" {
		spec.Partition = v
	}
	if v := ctx.String("exclude"); v != "" {
		spec.ExcludeNodes = v
	}
	if v := ctx.String("mem"); v != "" {
		spec.Memory = v
	}
	if v := ctx.String("mail-user"); v != "" {
		spec.MailUser = v
		if len(spec.MailTypes) == 0 {
			spec.MailTypes = []slurm.MailType{slurm.MailTypeEnd, slurm.MailTypeFail}
		}
	}
	if v := ctx.String("output"); v != "" {
		spec.Output = v
	}
	if v := ctx.String("conda-env"); v != "" {
		spec.CondaEnv = v
	}
	if v := ctx.String("env"); v != "" {
		spec.Args = replaceFlagValue(spec.Args, "--env", v)
	}
	if v := ctx.String("value-coef"); v != "" {
		spec.Args = replaceFlagValue(spec.Args, "--value_coef", v)
	}
	return spec, nil
}

func replaceFlagValue(args []string, flag string, value string) []string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			args[i+1] = value
			return args
		}
	}
	return append(args, flag, value)
}

func main() {
	app := cli.NewApp()
	app.Name = "slurm-launch"
	app.Usage = "Submit training jobs to the cluster"
	app.Version = version.Version
	app.Authors = []*cli.Author{}
	for _, author := range version.Authors {
		app.Authors = append(app.Authors, &cli.Author{Name: author[0], Email: author[1]})
	}
	app.Commands = []*cli.Command{
		{
			Name:  "render",
			Usage: "Print the sbatch script for a job spec",
			Flags: specFlags(),
			Action: func(ctx *cli.Context) error {
				spec, err := buildSpec(ctx)
				if err != nil {
					return err
				}
				script, err := slurm.Render(spec)
				if err != nil {
					return err
				}
				fmt.Print(script)
				return nil
			},
		},
		{
			Name:  "submit",
			Usage: "Submit a job, through sbatch on this host or through a remote submit agent",
			Flags: append(specFlags(),
				&cli.StringFlag{
					Name:        "spool",
					Usage:       "Directory the rendered script is written to",
					Value:       "/tmp/slurmlaunch",
					DefaultText: "/tmp/slurmlaunch",
				},
				&cli.StringSliceFlag{
					Name:  "agent-address",
					Usage: "Submit through an agent instead of local sbatch; repeat for failover",
				},
				&cli.StringFlag{
					Name:  "secret-key",
					Usage: "Secret key for the agent's signed requests",
				},
				&cli.DurationFlag{
					Name:        "timeout",
					Usage:       "Agent request timeout",
					Value:       30 * time.Second,
					DefaultText: "30s",
				},
			),
			Action: func(ctx *cli.Context) error {
				spec, err := buildSpec(ctx)
				if err != nil {
					return err
				}
				var jobID string
				if addresses := ctx.StringSlice("agent-address"); len(addresses) > 0 {
					user, err := runner.GetCurrentUsername()
					if err != nil {
						return err
					}
					ac := agent.NewClient(common.NewCommonSignedMultiAddressClient(
						addresses, []byte(ctx.String("secret-key")), ctx.Duration("timeout"), true,
					))
					jobID, err = ac.SubmitJob(uuid.NewV4().String(), spec, user)
					if err != nil {
						return err
					}
				} else {
					jobID, err = slurm.NewClient().Submit(context.Background(), spec, ctx.String("spool"), "")
					if err != nil {
						return err
					}
				}
				fmt.Println(jobID)
				return nil
			},
		},
		{
			Name:      "status",
			Usage:     "Show the scheduler's view of a job",
			ArgsUsage: "JOB_ID",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "local",
					Usage: "Show the launch recorded on this host by run-local instead",
				},
				&cli.StringFlag{
					Name:        "spool",
					Usage:       "Spool directory holding the local launch status file",
					Value:       "/tmp/slurmlaunch",
					DefaultText: "/tmp/slurmlaunch",
				},
			},
			Action: func(ctx *cli.Context) error {
				if ctx.Bool("local") {
					status, err := runner.GetStatus(ctx.String("spool"))
					if err != nil {
						return err
					}
					fmt.Printf("%v\t%v\tpid %v\n", status.SubmissionID, status.JobID, status.EntrancePID)
					return nil
				}
				if ctx.Args().Len() != 1 {
					return fmt.Errorf("expected exactly one job ID")
				}
				info, err := slurm.NewClient().Status(context.Background(), ctx.Args().Get(0))
				if err != nil {
					return err
				}
				fmt.Printf("%v\t%v\t%v\t%v\n", info.ID, info.Name, info.Partition, info.Status)
				if info.Reason != "" && info.Reason != "None" {
					fmt.Println("reason:", info.Reason)
				}
				return nil
			},
		},
		{
			Name:      "cancel",
			Usage:     "Cancel a queued or running job",
			ArgsUsage: "JOB_ID",
			Action: func(ctx *cli.Context) error {
				if ctx.Args().Len() != 1 {
					return fmt.Errorf("expected exactly one job ID")
				}
				return slurm.NewClient().Cancel(context.Background(), ctx.Args().Get(0), "")
			},
		},
		{
			Name:  "run-local",
			Usage: "Run a job spec on this host under cgroup limits, without Slurm",
			Flags: append(specFlags(), &cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c", "conf"},
				Usage:       "Configure file path",
				Value:       "/etc/slurmlaunch/localrun.yml",
				DefaultText: "/etc/slurmlaunch/localrun.yml",
			}),
			Action: func(ctx *cli.Context) error {
				spec, err := buildSpec(ctx)
				if err != nil {
					return err
				}
				cmd := localrun.NewCommand()
				err = cmd.Init(ctx.String("config"))
				if err != nil {
					return err
				}
				user, err := runner.GetCurrentUsername()
				if err != nil {
					return err
				}
				return cmd.RunJob(spec, user, spec.Name)
			},
		},
	}
	err := app.Run(os.Args)
	if err != nil {
		log.Fatalln(err)
	}
}
