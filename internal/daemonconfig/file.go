package daemonconfig

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/xdg/rootbridge/internal/clog"
	"github.com/xdg/rootbridge/internal/executor"
	"github.com/xdg/rootbridge/internal/shell"
)

// HeredocMarker terminates the here-document used by the fallback write.
//
// Known limitation: if the written text contains a line that is exactly
// this marker, the shell ends the document there and the file is truncated.
// Config files are small JSON objects, so this is not guarded against.
const HeredocMarker = "EOF"

// DefaultBase64Decoders are tried in order to decode base64 on the device.
// Most builds ship base64 in PATH; toybox provides it otherwise.
var DefaultBase64Decoders = []string{
	"base64 -d",
	"/system/bin/toybox base64 -d",
}

// Files reads and writes config files through an Executor.
type Files struct {
	exec     executor.Executor
	locator  *Locator
	decoders []string
}

// NewFiles creates a Files. A nil decoders slice means
// DefaultBase64Decoders.
func NewFiles(exec executor.Executor, locator *Locator, decoders []string) *Files {
	if decoders == nil {
		decoders = DefaultBase64Decoders
	}
	return &Files{exec: exec, locator: locator, decoders: decoders}
}

// Locator returns the locator used to resolve the write target.
func (f *Files) Locator() *Locator {
	return f.locator
}

// ReadAt returns the content of the file at path, or "" if the file is
// missing, unreadable, or blank.
func (f *Files) ReadAt(ctx context.Context, path string) string {
	r := f.exec.Exec(ctx, "cat "+shell.Quote(path)+" 2>/dev/null || true")
	text := r.Output()
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return text
}

// Read returns the content of the currently selected config.
func (f *Files) Read(ctx context.Context) string {
	return f.ReadAt(ctx, f.locator.GetPath())
}

// Write replaces the currently selected config with text.
func (f *Files) Write(ctx context.Context, text string) bool {
	return f.WriteAt(ctx, f.locator.GetPath(), text)
}

// WriteAt replaces the file at path with text. It pipes a base64 copy
// through a decoder first; if that fails it falls back to a here-document.
// Returns whether the executor reported success.
func (f *Files) WriteAt(ctx context.Context, path, text string) bool {
	primary := f.exec.Exec(ctx, Base64WriteCommand(path, text, f.decoders))
	if primary.Success {
		clog.Debug("daemonconfig: wrote %s via base64", path)
		return true
	}
	clog.Debug("daemonconfig: base64 write to %s failed (exit %d), trying heredoc", path, primary.ExitCode)

	r := f.exec.Exec(ctx, HeredocWriteCommand(path, text))
	if !r.Success {
		clog.Warn("daemonconfig: could not write %s: %s", path, r.ErrOutput())
	}
	return r.Success
}

// Base64WriteCommand builds the primary write command: the payload travels
// as a single quoted base64 word, so its content never meets the shell.
func Base64WriteCommand(path, text string, decoders []string) string {
	b64 := base64.StdEncoding.EncodeToString([]byte(text))
	return "echo " + shell.Quote(b64) + " | " + DecoderChain(decoders) + " > " + shell.Quote(path)
}

// DecoderChain joins base64 decoder commands so the first working one wins.
// Each decoder's stderr is discarded.
func DecoderChain(decoders []string) string {
	alts := make([]string, len(decoders))
	for i, d := range decoders {
		alts[i] = d + " 2>/dev/null"
	}
	return shell.Join(alts)
}

// HeredocWriteCommand builds the fallback write command with text embedded
// literally in a quoted here-document. See HeredocMarker for its limitation.
func HeredocWriteCommand(path, text string) string {
	var b strings.Builder
	b.WriteString("cat > ")
	b.WriteString(shell.Quote(path))
	b.WriteString(" <<'" + HeredocMarker + "'\n")
	b.WriteString(text)
	if !strings.HasSuffix(text, "\n") {
		b.WriteString("\n")
	}
	b.WriteString(HeredocMarker + "\n")
	return b.String()
}
