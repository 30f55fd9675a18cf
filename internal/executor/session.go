package executor

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// Session keeps a single elevated shell alive and feeds it one command at a
// time on stdin. Consent is requested when the shell starts, so a process
// that reuses one Session is prompted at most once.
//
// Each command runs in a subshell, then the session prints a random end
// marker followed by the exit status on stdout, and the marker alone on
// stderr. Output is read up to those markers.
//
// A Session is safe for concurrent use; commands are serialized. If the
// shell dies or a command is cancelled, the shell is discarded and a new one
// is started on the next call.
type Session struct {
	command string
	args    []string

	mu     sync.Mutex
	proc   *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	stderr *bufio.Reader
	marker string
}

// NewSession creates a Session that starts "<command> <args...>" on first
// use. For Magisk-style su this is just "su"; for sudo, "sudo sh".
func NewSession(command string, args ...string) *Session {
	return &Session{command: command, args: args}
}

// streamResult is what a marker reader collects from one stream.
type streamResult struct {
	lines []string
	tail  string
	err   error
}

// Exec runs command in the session's shell.
func (s *Session) Exec(ctx context.Context, command string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ctx.Err() != nil {
		return failed("", "", "elevated command cancelled: "+ctx.Err().Error())
	}

	if s.proc == nil {
		if err := s.start(); err != nil {
			return failed("", "", err.Error())
		}
	}

	// stdin of the command is /dev/null so it cannot eat the session's input.
	script := fmt.Sprintf("(\n%s\n) </dev/null\n__rb_rc=$?; echo %s\"$__rb_rc\"; echo %s >&2\n",
		command, s.marker, s.marker)
	if _, err := io.WriteString(s.stdin, script); err != nil {
		s.reset()
		return failed("", "", "elevated shell is not accepting input: "+err.Error())
	}

	outCh := make(chan streamResult, 1)
	errCh := make(chan streamResult, 1)
	go func(r *bufio.Reader, marker string) { outCh <- readUntilMarker(r, marker) }(s.stdout, s.marker)
	go func(r *bufio.Reader, marker string) { errCh <- readUntilMarker(r, marker) }(s.stderr, s.marker)

	var out, errOut streamResult
	var gotOut, gotErr bool
	for !gotOut || !gotErr {
		select {
		case out = <-outCh:
			gotOut = true
		case errOut = <-errCh:
			gotErr = true
		case <-ctx.Done():
			// Killing the shell unblocks both readers.
			s.reset()
			if !gotOut {
				out = <-outCh
			}
			if !gotErr {
				errOut = <-errCh
			}
			return Result{
				Success:  false,
				ExitCode: ExitNotRun,
				Stdout:   out.lines,
				Stderr:   append(errOut.lines, "elevated command cancelled: "+ctx.Err().Error()),
			}
		}
	}

	if out.err != nil || errOut.err != nil {
		// The shell went away mid-command (consent denied, killed, exit).
		s.reset()
		return Result{
			Success:  false,
			ExitCode: ExitNotRun,
			Stdout:   out.lines,
			Stderr:   append(errOut.lines, "elevated shell exited"),
		}
	}

	code, err := strconv.Atoi(strings.TrimSpace(out.tail))
	if err != nil {
		code = ExitNotRun
	}
	return Result{
		Success:  code == 0,
		ExitCode: code,
		Stdout:   out.lines,
		Stderr:   errOut.lines,
	}
}

// Close shuts down the elevated shell if one is running.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.proc == nil {
		return nil
	}
	_ = s.stdin.Close()
	err := s.proc.Wait()
	s.proc = nil
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// A shell that exits non-zero on EOF is not a close failure.
		return nil
	}
	return err
}

// start launches the elevated shell. Caller must hold s.mu.
func (s *Session) start() error {
	marker, err := newMarker()
	if err != nil {
		return err
	}

	cmd := exec.Command(s.command, s.args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("elevated shell stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("elevated shell stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("elevated shell stderr: %w", err)
	}
	if err := cmd.Start(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return fmt.Errorf("elevation binary not found: %s", s.command)
		}
		return fmt.Errorf("start elevated shell: %w", err)
	}

	s.proc = cmd
	s.stdin = stdin
	s.stdout = bufio.NewReader(stdout)
	s.stderr = bufio.NewReader(stderr)
	s.marker = marker
	return nil
}

// reset kills the shell and forgets it. Caller must hold s.mu.
func (s *Session) reset() {
	if s.proc == nil {
		return
	}
	_ = s.stdin.Close()
	if s.proc.Process != nil {
		_ = s.proc.Process.Kill()
	}
	_ = s.proc.Wait()
	s.proc = nil
}

// readUntilMarker reads lines until one contains marker. Text before the
// marker on that line belongs to the command (output without a trailing
// newline); text after it is returned as tail.
func readUntilMarker(r *bufio.Reader, marker string) streamResult {
	var res streamResult
	for {
		line, err := r.ReadString('\n')
		line = strings.TrimSuffix(line, "\n")
		if idx := strings.Index(line, marker); idx >= 0 {
			if idx > 0 {
				res.lines = append(res.lines, line[:idx])
			}
			res.tail = line[idx+len(marker):]
			return res
		}
		if err != nil {
			if line != "" {
				res.lines = append(res.lines, line)
			}
			res.err = err
			return res
		}
		res.lines = append(res.lines, line)
	}
}

func newMarker() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session marker: %w", err)
	}
	return "__ROOTBRIDGE_END_" + hex.EncodeToString(b) + "__", nil
}
