package cmd

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Compute and display the primitive form factor matrix.
func ShowFormFactors(ctx *cli.Context) error {
	setupLogging(ctx)

	sc, cfg, err := loadScene(ctx)
	if err != nil {
		return err
	}

	opts := cfg.FormFactorOptions()
	opts.Aggregate = true
	res, err := sc.FormFactors(opts)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader(append([]string{""}, res.Primitives...))
	for i, id := range res.Primitives {
		row := []string{id}
		for j := range res.Primitives {
			row = append(row, fmt.Sprintf("%.4f", res.Aggregated[i][j]))
		}
		table.Append(row)
	}
	table.Render()
	return nil
}
