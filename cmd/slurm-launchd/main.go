package main

import (
	"log"
	"os"

	"github.com/clusterlab/slurmlaunch/launcher/configure"
	"github.com/clusterlab/slurmlaunch/launcher/server"
	"github.com/urfave/cli/v3"
)

func main() {
	app := cli.NewApp()
	app.Name = "slurm-launchd"
	app.Usage = "Training job launch daemon"
	app.Commands = append(app.Commands, &cli.Command{
		Name:    "serve",
		Aliases: []string{"s", "run"},
		Usage:   "Start the slurm-launchd service",
		Action: func(ctx *cli.Context) error {
			confFile := ctx.String("configure")
			conf, err := configure.LoadConfigure(confFile)
			if err != nil {
				return err
			}
			launcher, err := server.NewLauncher(conf)
			if err != nil {
				return err
			}
			return launcher.Run()
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "configure",
				Aliases:     []string{"config", "c"},
				Usage:       "The path to configure file (yaml format)",
				Value:       "/etc/slurm-launchd.yml",
				DefaultText: "/etc/slurm-launchd.yml",
			},
		},
	})
	err := app.Run(os.Args)
	if err != nil {
		log.Fatalln(err)
	}
}
