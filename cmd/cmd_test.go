package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

const leafCan = "p 1 100000101000 3 0 0 1 1 0 1 0 1 1\np 1 100000101000 3 1 0 1 1 1 1 0 1 1\n"

func newTestApp(out *bytes.Buffer) *cli.App {
	app := cli.NewApp()
	app.Writer = out
	app.Flags = []cli.Flag{
		cli.BoolFlag{Name: "v"},
		cli.BoolFlag{Name: "vv"},
	}
	app.Commands = []cli.Command{
		{Name: "run", Action: RunScene},
		{Name: "incident", Action: ShowIncidentEnergy},
		{Name: "info", Action: ShowSceneInfo},
		{
			Name:   "periodise",
			Flags:  []cli.Flag{cli.StringFlag{Name: "out, o", Value: "periodised.can"}},
			Action: PeriodiseScene,
		},
	}
	return app
}

func writeConfig(t *testing.T, config string) string {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "leaf.can"), []byte(leafCan), 0o644))
	path := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(config), 0o644))
	return path
}

func TestRunCommand(t *testing.T) {
	path := writeConfig(t, `
scene: leaf.can
pattern: [5.0, 5.0, 7.0, 7.0]
soil_mesh: 0
z_soil: 0.0
`)

	var out bytes.Buffer
	require.NoError(t, newTestApp(&out).Run([]string{"caribu", "run", path}))

	text := out.String()
	assert.Contains(t, text, "band default_band")
	assert.Contains(t, text, "100000101000")
	assert.Contains(t, text, "Optical properties")
	assert.Contains(t, text, "soil: Qi = 1 W.m-2, Einc = 4 W")
}

func TestIncidentCommand(t *testing.T) {
	path := writeConfig(t, `
scene: leaf.can
lights:
  - energy: 2.0
    direction: [0.0, 0.0, -1.0]
pattern: [0.0, 0.0, 2.0, 2.0]
`)

	var out bytes.Buffer
	require.NoError(t, newTestApp(&out).Run([]string{"caribu", "-vv", "incident", path}))
	assert.Contains(t, out.String(), " 2 |")
	assert.Contains(t, out.String(), " 8 |")
}

func TestCommandErrors(t *testing.T) {
	var out bytes.Buffer
	app := newTestApp(&out)

	err := app.Run([]string{"caribu", "info"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "missing run configuration"))

	// Periodisation without a pattern is a configuration error
	path := writeConfig(t, "scene: leaf.can\n")
	err = app.Run([]string{"caribu", "periodise", "-o", filepath.Join(t.TempDir(), "out.can"), path})
	assert.Error(t, err)
}

func TestCommandErrorsReachUser(t *testing.T) {
	var out, errOut bytes.Buffer
	exitCode := -1
	origErrWriter, origExiter := cli.ErrWriter, cli.OsExiter
	cli.ErrWriter = &errOut
	cli.OsExiter = func(code int) { exitCode = code }
	defer func() { cli.ErrWriter, cli.OsExiter = origErrWriter, origExiter }()

	app := newTestApp(&out)
	app.Name = "caribu"
	for idx := range app.Commands {
		app.Commands[idx].Action = WithExitError(app.Commands[idx].Action.(func(*cli.Context) error))
	}

	specs := []struct {
		args   []string
		expMsg string
	}{
		{[]string{"caribu", "run", filepath.Join(t.TempDir(), "missing.yaml")}, "caribu run: open"},
		{[]string{"caribu", "info", writeConfig(t, "scene: nowhere.can\n")}, "nowhere.can"},
		{[]string{"caribu", "incident"}, "caribu incident: missing run configuration file argument"},
	}

	for specIndex, spec := range specs {
		errOut.Reset()
		exitCode = -1

		if err := app.Run(spec.args); err == nil {
			t.Fatalf("[spec %d] expected an error", specIndex)
		}
		if exitCode != 1 {
			t.Fatalf("[spec %d] expected exit code 1; got %d", specIndex, exitCode)
		}
		if !strings.Contains(errOut.String(), spec.expMsg) {
			t.Fatalf("[spec %d] expected error output to contain %q; got %q", specIndex, spec.expMsg, errOut.String())
		}
	}
}
