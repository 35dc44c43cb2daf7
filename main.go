package main

import (
	"os"

	"github.com/christian34/caribu/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "caribu"
	app.Usage = "compute light interception by 3D plant canopies"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "run",
			Usage: "compute light interception",
			Description: `
Load the scene, lights and optical properties described by a run configuration
file (YAML, TOML or JSON) and compute the irradiance (Ei), absorbed irradiance
(Eabs) and area of every primitive for each band.

When a soil mesh is configured, the soil irradiance and the energy it
intercepts are reported after each band.`,
			ArgsUsage: "config.yaml",
			Action:    cmd.WithExitError(cmd.RunScene),
		},
		{
			Name:  "periodise",
			Usage: "clip and replicate the scene geometry to fit its pattern",
			Description: `
Run the external periodise executable on the scene geometry and write the
periodised geometry as a Canestra .can file.`,
			ArgsUsage: "config.yaml",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "out, o",
					Value: "periodised.can",
					Usage: "output .can file",
				},
			},
			Action: cmd.WithExitError(cmd.PeriodiseScene),
		},
		{
			Name:      "form-factors",
			Usage:     "compute the form factor matrix between primitives",
			ArgsUsage: "config.yaml",
			Action:    cmd.WithExitError(cmd.ShowFormFactors),
		},
		{
			Name:      "incident",
			Usage:     "display the energy budget of the light sources",
			ArgsUsage: "config.yaml",
			Action:    cmd.WithExitError(cmd.ShowIncidentEnergy),
		},
		{
			Name:      "info",
			Usage:     "display scene information",
			ArgsUsage: "config.yaml",
			Action:    cmd.WithExitError(cmd.ShowSceneInfo),
		},
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}
