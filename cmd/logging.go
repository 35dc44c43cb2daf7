package cmd

import (
	"fmt"

	"github.com/christian34/caribu/log"
	"github.com/urfave/cli"
)

var logger = log.New("caribu")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}

// Wrap a command action so that its failure is printed to the user and
// turned into a non-zero exit status. cli only reports cli.ExitCoder errors.
func WithExitError(action cli.ActionFunc) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		err := action(ctx)
		if err == nil {
			return nil
		}
		return cli.NewExitError(fmt.Sprintf("%s %s: %v", ctx.App.Name, ctx.Command.Name, err), 1)
	}
}
