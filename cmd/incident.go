package cmd

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Display the energy budget of the scene light sources.
func ShowIncidentEnergy(ctx *cli.Context) error {
	setupLogging(ctx)

	sc, _, err := loadScene(ctx)
	if err != nil {
		return err
	}

	qi, qem, einc := sc.IncidentEnergy()
	incident := "-"
	if einc != nil {
		incident = fmt.Sprintf("%g", *einc)
	}

	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Qi (W.m-2)", "Qem (W.m-2)", "Einc (W)"})
	table.Append([]string{fmt.Sprintf("%g", qi), fmt.Sprintf("%g", qem), incident})
	table.Render()
	return nil
}
