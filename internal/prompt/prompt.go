// Package prompt asks the operator questions on a terminal: which daemon
// config to use, and whether to go ahead with a token rotation.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// Asker is what the CLI needs from an interactive session.
type Asker interface {
	// Choose lists options and returns the index picked. An empty answer
	// picks def.
	Choose(question string, options []string, def int) (int, error)

	// Confirm asks a yes/no question. An empty answer returns def.
	Confirm(question string, def bool) (bool, error)
}

// Console is an Asker reading answers line by line from an input stream.
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsole returns a Console reading r and writing questions to w.
func NewConsole(r io.Reader, w io.Writer) *Console {
	return &Console{in: bufio.NewReader(r), out: w}
}

// answer reads one trimmed line. EOF with no text is an empty answer.
func (c *Console) answer() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Choose prints a numbered list, marking def with "*".
func (c *Console) Choose(question string, options []string, def int) (int, error) {
	if def < 0 || def >= len(options) {
		return 0, fmt.Errorf("default %d is not one of %d options", def, len(options))
	}

	_, _ = fmt.Fprintln(c.out, question)
	for i, opt := range options {
		mark := " "
		if i == def {
			mark = "*"
		}
		_, _ = fmt.Fprintf(c.out, " %s %d) %s\n", mark, i+1, opt)
	}
	_, _ = fmt.Fprintf(c.out, "Number [%d]: ", def+1)

	ans, err := c.answer()
	if err != nil {
		return 0, err
	}
	if ans == "" {
		return def, nil
	}
	n, err := strconv.Atoi(ans)
	if err != nil || n < 1 || n > len(options) {
		return 0, fmt.Errorf("answer %q is not a number from 1 to %d", ans, len(options))
	}
	return n - 1, nil
}

// Confirm accepts y, yes, n or no in any case.
func (c *Console) Confirm(question string, def bool) (bool, error) {
	_, _ = fmt.Fprint(c.out, question)

	ans, err := c.answer()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(ans) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	}
	return false, fmt.Errorf("answer %q is not y or n", ans)
}

// Script is an Asker that replays fixed answers. Questions past the end
// of a list get their default.
type Script struct {
	Choices  []int
	Confirms []bool

	// Asked records every question in order.
	Asked []Question
}

// Question is one recorded call on a Script.
type Question struct {
	Text    string
	Options []string
	Default any
}

func (s *Script) Choose(question string, options []string, def int) (int, error) {
	s.Asked = append(s.Asked, Question{Text: question, Options: options, Default: def})
	if len(s.Choices) == 0 {
		return def, nil
	}
	n := s.Choices[0]
	s.Choices = s.Choices[1:]
	return n, nil
}

func (s *Script) Confirm(question string, def bool) (bool, error) {
	s.Asked = append(s.Asked, Question{Text: question, Default: def})
	if len(s.Confirms) == 0 {
		return def, nil
	}
	ok := s.Confirms[0]
	s.Confirms = s.Confirms[1:]
	return ok, nil
}

// IsTerminal reports whether f is an interactive terminal. Commands that
// prompt check this first and fail with a hint instead of blocking on a
// pipe.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}
