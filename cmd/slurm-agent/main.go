package main

import (
	"fmt"
	"log"
	"os"

	"github.com/clusterlab/slurmlaunch/agent/configure"
	"github.com/clusterlab/slurmlaunch/agent/server"
	"github.com/clusterlab/slurmlaunch/common/version"
	"github.com/urfave/cli/v3"
)

func main() {
	app := cli.NewApp()
	app.Name = "slurm-agent"
	app.Usage = "Login-node agent submitting jobs on behalf of the launch daemon"
	app.Version = version.Version
	app.Authors = []*cli.Author{}
	for _, author := range version.Authors {
		app.Authors = append(app.Authors, &cli.Author{Name: author[0], Email: author[1]})
	}
	app.Commands = append(app.Commands, &cli.Command{
		Name:    "serve",
		Aliases: []string{"s", "run"},
		Usage:   "Start the slurm-agent service",
		Action: func(ctx *cli.Context) error {
			conf, err := configure.LoadConfigure(ctx.String("configure"))
			if err != nil {
				return err
			}
			if conf.Discovery == nil ||
				conf.MinIO == nil ||
				conf.MinIO.Buckets == nil ||
				conf.MinIO.Credentials == nil ||
				len(conf.Partitions) == 0 {
				return fmt.Errorf("invalid configure, some required parameters not set")
			}
			srv, err := server.NewServer(conf)
			if err != nil {
				return err
			}
			return srv.Start()
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "configure",
				Aliases:     []string{"config", "c"},
				Usage:       "The path to configure file (yaml format)",
				Value:       "/etc/slurm-agent.yml",
				DefaultText: "/etc/slurm-agent.yml",
			},
		},
	})
	err := app.Run(os.Args)
	if err != nil {
		log.Fatalln(err)
	}
}
