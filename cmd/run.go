package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/christian34/caribu/caribu"
	"github.com/christian34/caribu/kernel"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Compute light interception and display the per primitive results.
func RunScene(ctx *cli.Context) error {
	setupLogging(ctx)

	sc, cfg, err := loadScene(ctx)
	if err != nil {
		return err
	}

	res, err := sc.Run(cfg.RunOptions())
	if err != nil {
		return err
	}

	for _, band := range res.Bands {
		displayBandResult(ctx.App.Writer, res, band)
		if res.SoilAggregated == nil {
			continue
		}
		qi, einc, err := sc.SoilEnergy(res, band)
		if err != nil {
			return err
		}
		fmt.Fprintf(ctx.App.Writer, "soil: Qi = %g W.m-2, Einc = %g W\n\n", qi, einc)
	}
	return nil
}

func displayBandResult(w io.Writer, res *caribu.RunResult, band string) {
	agg := res.Aggregated[band]
	names := make([]string, 0, len(agg))
	for name := range agg {
		names = append(names, name)
	}
	sort.Strings(names)

	ids := make([]string, 0)
	for id := range agg[kernel.ResultArea] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Fprintf(w, "band %s (%s, run %s)\n", band, res.Mode, res.ID)
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader(append(append([]string{"Primitive"}, names...), "Optical properties"))
	for _, id := range ids {
		row := []string{id}
		for _, name := range names {
			row = append(row, fmt.Sprintf("%.6g", agg[name][id]))
		}
		row = append(row, fmt.Sprintf("%v", res.Materials[band][id]))
		table.Append(row)
	}
	table.Render()
	fmt.Fprintln(w)
}
