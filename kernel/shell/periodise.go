// Package shell adapts external light-transport executables to the kernel
// interfaces. Inputs are written to a scratch directory, the executable is
// invoked and its output file is read back.
package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/christian34/caribu/log"
)

var (
	ErrBinaryNotFound = errors.New("shell: executable not found")
	ErrExecution      = errors.New("shell: execution failed")
)

// DefaultPeriodiseBinary is the executable looked up in PATH when no binary
// is configured.
const DefaultPeriodiseBinary = "periodise"

type Options struct {
	// Path to the periodise executable. Defaults to DefaultPeriodiseBinary.
	Binary string

	// Parent directory for scratch files. Defaults to os.TempDir().
	ScratchDir string

	// Keep scratch files after each call (debugging).
	KeepFiles bool
}

// Periodiser implements kernel.Periodiser by running the periodise
// executable:
//
//	periodise -m scene.can -8 pattern.8 -o out.can
type Periodiser struct {
	logger log.Logger
	ctx    context.Context
	opts   Options
}

// Create a new periodiser. The context bounds every spawned process; nil
// defaults to context.Background().
func NewPeriodiser(ctx context.Context, opts Options) *Periodiser {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Binary == "" {
		opts.Binary = DefaultPeriodiseBinary
	}

	return &Periodiser{
		logger: log.New("periodise"),
		ctx:    ctx,
		opts:   opts,
	}
}

// Periodise a .can geometry description against a .8 pattern description.
func (p *Periodiser) Periodise(can, pattern string) (string, error) {
	binary, err := exec.LookPath(p.opts.Binary)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %s", ErrBinaryNotFound, p.opts.Binary, err.Error())
	}

	dir, err := os.MkdirTemp(p.opts.ScratchDir, "caribu-periodise-")
	if err != nil {
		return "", err
	}
	if p.opts.KeepFiles {
		p.logger.Noticef("keeping scratch files in %s", dir)
	} else {
		defer os.RemoveAll(dir)
	}

	canFile := filepath.Join(dir, "scene.can")
	patternFile := filepath.Join(dir, "pattern.8")
	outFile := filepath.Join(dir, "out.can")
	if err = os.WriteFile(canFile, []byte(can), 0o644); err != nil {
		return "", err
	}
	if err = os.WriteFile(patternFile, []byte(pattern), 0o644); err != nil {
		return "", err
	}

	start := time.Now()
	cmd := exec.CommandContext(p.ctx, binary, "-m", canFile, "-8", patternFile, "-o", outFile)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%w: %s: %s\n%s", ErrExecution, binary, err.Error(), output)
	}
	p.logger.Debugf("periodise output:\n%s", output)

	data, err := os.ReadFile(outFile)
	if err != nil {
		return "", fmt.Errorf("%w: %s did not produce an output file: %s", ErrExecution, binary, err.Error())
	}

	p.logger.Infof("periodised scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return string(data), nil
}
