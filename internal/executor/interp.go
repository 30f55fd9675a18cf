package executor

import (
	"bytes"
	"context"
	"strings"

	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Interp runs commands with an in-process POSIX shell and no elevation.
// External programs (cat, base64, curl) are still started from PATH.
//
// It backs "elevation.mode: none", which is useful when the daemon config
// is readable by the current user, and it lets tests exercise the exact
// command strings the bridge builds against real files.
type Interp struct {
	// Dir is the working directory. Empty means the current directory.
	Dir string
}

// NewInterp creates an Interp executor.
func NewInterp() *Interp {
	return &Interp{}
}

// Exec parses and runs command.
func (e *Interp) Exec(ctx context.Context, command string) Result {
	file, err := syntax.NewParser().Parse(strings.NewReader(command), "")
	if err != nil {
		return failed("", "", "parse command: "+err.Error())
	}

	var stdout, stderr bytes.Buffer
	opts := []interp.RunnerOption{interp.StdIO(nil, &stdout, &stderr)}
	if e.Dir != "" {
		opts = append(opts, interp.Dir(e.Dir))
	}
	runner, err := interp.New(opts...)
	if err != nil {
		return failed("", "", "create shell: "+err.Error())
	}

	err = runner.Run(ctx, file)
	if err == nil {
		return completed(0, stdout.String(), stderr.String())
	}
	if ctx.Err() != nil {
		return failed(stdout.String(), stderr.String(), "command cancelled: "+ctx.Err().Error())
	}

	if status, ok := interp.IsExitStatus(err); ok {
		return completed(int(status), stdout.String(), stderr.String())
	}
	return failed(stdout.String(), stderr.String(), err.Error())
}
