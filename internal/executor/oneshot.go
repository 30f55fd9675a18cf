package executor

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

const waitDelay = 500 * time.Millisecond

// maxArgCommand is the longest command passed as a "-c" argument. Linux
// rejects any single argument over 128 KiB, so longer commands (large
// proxied POST bodies) are written to the shell's stdin instead.
const maxArgCommand = 100 << 10

// OneShot starts a fresh elevated shell for every command, as in
// "su -c <command>". Depending on the elevation manager each call may
// prompt for consent.
type OneShot struct {
	// Command is the elevation binary (e.g. "su").
	Command string

	// Args are inserted between Command and "-c <command>". For sudo this
	// would be ["sh"], giving "sudo sh -c <command>".
	Args []string
}

// NewOneShot creates a OneShot executor for the given elevation binary.
func NewOneShot(command string, args ...string) *OneShot {
	return &OneShot{Command: command, Args: args}
}

// Exec runs command in a new elevated shell and waits for it to exit.
// A command longer than maxArgCommand is read by the shell from stdin, so
// it must not itself read stdin.
func (e *OneShot) Exec(ctx context.Context, command string) Result {
	argv := make([]string, 0, len(e.Args)+2)
	argv = append(argv, e.Args...)
	onStdin := len(command) > maxArgCommand
	if !onStdin {
		argv = append(argv, "-c", command)
	}

	cmd := exec.CommandContext(ctx, e.Command, argv...)
	if onStdin {
		cmd.Stdin = strings.NewReader(command + "\n")
	}
	// Children of a killed shell may hold the output pipes open.
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return completed(0, stdout.String(), stderr.String())
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return failed(stdout.String(), stderr.String(), "elevated command cancelled: "+ctxErr.Error())
	}

	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return failed("", "", "elevation binary not found: "+e.Command)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return completed(exitErr.ExitCode(), stdout.String(), stderr.String())
	}

	return failed(stdout.String(), stderr.String(), err.Error())
}
