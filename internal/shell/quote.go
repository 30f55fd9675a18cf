// Package shell builds the command strings handed to the elevated shell.
//
// Every literal argument that ends up in a command goes through Quote.
// Paths and header values come from configuration and the daemon's own
// files; they are quoted so that spaces and quotes survive, not to defend
// against a hostile value.
package shell

import "strings"

// Quote wraps s in single quotes for a POSIX shell. Each embedded single
// quote is replaced with '\'' (close quote, escaped quote, reopen quote).
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Join joins alternatives with || inside a subshell so the first one that
// succeeds wins. A single alternative is returned unwrapped.
func Join(alternatives []string) string {
	switch len(alternatives) {
	case 0:
		return "false"
	case 1:
		return alternatives[0]
	}
	return "(" + strings.Join(alternatives, " || ") + ")"
}

// Redact replaces every occurrence of secret in command with a placeholder
// so commands can be logged.
func Redact(command, secret string) string {
	if secret == "" {
		return command
	}
	return strings.ReplaceAll(command, secret, "<redacted>")
}
