package cmd

import (
	"errors"
	"fmt"

	"github.com/xdg/rootbridge/internal/term"
)

// Exit codes returned through ExitCodeError.
const (
	exitFailure          = 1
	exitTokenUnavailable = 2
	exitDaemonUnreached  = 3
)

// ExitCodeError carries a process exit code out of a command. The command
// has already told the user what went wrong.
type ExitCodeError struct {
	Code int
}

// NewExitCodeError creates an ExitCodeError with the given code.
func NewExitCodeError(code int) *ExitCodeError {
	return &ExitCodeError{Code: code}
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

func isExitCodeError(err error) bool {
	var exitErr *ExitCodeError
	return errors.As(err, &exitErr)
}

// tokenUnavailable reports that no token could be read or provisioned and
// returns the matching exit code.
func tokenUnavailable() error {
	term.Error("daemon API token unavailable; grant root access or pick the config with 'rootbridge daemon-config select', then retry")
	return NewExitCodeError(exitTokenUnavailable)
}

// interactiveRequiredError is returned when a prompt would block on a pipe.
func interactiveRequiredError(hint string) error {
	return fmt.Errorf("stdin is not a terminal; %s", hint)
}
