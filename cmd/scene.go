package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/christian34/caribu/caribu"
	"github.com/christian34/caribu/config"
	"github.com/christian34/caribu/log"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Load the run configuration given as the first command argument and build
// the scene it describes.
func loadScene(ctx *cli.Context) (*caribu.Scene, *config.Config, error) {
	if ctx.NArg() != 1 {
		return nil, nil, errors.New("missing run configuration file argument")
	}

	cfg, err := config.Load(ctx.Args().First())
	if err != nil {
		return nil, nil, err
	}

	// Command line verbosity flags take precedence
	if cfg.LogLevel != "" && !ctx.GlobalBool("v") && !ctx.GlobalBool("vv") {
		log.SetLevel(log.ParseLevel(cfg.LogLevel))
	}

	opts, err := cfg.Options(context.Background())
	if err != nil {
		return nil, nil, err
	}

	sc, err := caribu.New(opts)
	if err != nil {
		return nil, nil, err
	}

	displaySceneInfo(sc)
	return sc, cfg, nil
}

// Display scene info.
func ShowSceneInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	_, _, err := loadScene(ctx)
	return err
}

func displaySceneInfo(sc *caribu.Scene) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Primitives", "Triangles", "Lights", "Bands", "Pattern", "Soil triangles", "Unit"})

	tri := sc.Triangles()
	pattern := "-"
	if p := sc.Pattern(); p != nil {
		pattern = fmt.Sprintf("%v", p.Tuple())
	}
	table.Append([]string{
		fmt.Sprintf("%d", len(tri)),
		fmt.Sprintf("%d", tri.TriangleCount()),
		fmt.Sprintf("%d", len(sc.Lights())),
		strings.Join(sc.Bands(), ", "),
		pattern,
		fmt.Sprintf("%d", len(sc.Soil())),
		sc.Converter().Unit(),
	})

	table.Render()
	logger.Noticef("scene information:\n%s", buf.String())
}
