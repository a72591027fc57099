package main

import (
	"log"
	"os"
	"time"

	"github.com/clusterlab/slurmlaunch/discovery/server"
	"github.com/urfave/cli/v3"
)

func main() {
	app := cli.NewApp()
	app.Name = "slurm-discovery"
	app.Usage = "Launch cluster discovery service"
	app.Commands = []*cli.Command{
		{
			Name:    "serve",
			Aliases: []string{"s", "run"},
			Usage:   "Start the slurm-discovery service",
			Action: func(c *cli.Context) error {
				log.Println("Slurm Launch Discovery Service")
				srv, err := server.NewServer(c.String("listen"), c.String("data"), c.String("access-key"), c.Duration("save-interval"))
				if err != nil {
					return err
				}
				return srv.Start()
			},
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:        "data",
					Aliases:     []string{"d"},
					Usage:       "Specify the path to slurm-discovery database file",
					Value:       "/tmp/slurm-discovery.dat",
					DefaultText: "/tmp/slurm-discovery.dat",
				},
				&cli.StringFlag{
					Name:        "listen",
					Aliases:     []string{"l", "a", "address"},
					Usage:       "Specify which address should slurm-discovery listen on",
					Value:       ":20751",
					DefaultText: ":20751",
				},
				&cli.StringFlag{
					Name:    "access-key",
					Aliases: []string{"key", "k"},
					Usage:   "Specify the access key, leave empty to disable",
					Value:   "",
				},
				&cli.DurationFlag{
					Name:        "save-interval",
					Aliases:     []string{"t"},
					Usage:       "Specify how often the registry is persisted to disk",
					Value:       30 * time.Second,
					DefaultText: "30s",
				},
			},
		},
	}
	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
