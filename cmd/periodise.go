package cmd

import (
	"os"

	"github.com/urfave/cli"
)

// Periodise the scene geometry against its pattern and write the result as
// a .can file.
func PeriodiseScene(ctx *cli.Context) error {
	setupLogging(ctx)

	sc, _, err := loadScene(ctx)
	if err != nil {
		return err
	}

	if _, err = sc.RunPeriodise(); err != nil {
		return err
	}

	can, err := sc.CanString()
	if err != nil {
		return err
	}

	out := ctx.String("out")
	if err = os.WriteFile(out, []byte(can), 0o644); err != nil {
		return err
	}
	logger.Noticef("wrote periodised scene to %s", out)
	return nil
}
