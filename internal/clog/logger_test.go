package clog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestLogger(level Level) (*Logger, *bytes.Buffer, *bytes.Buffer) {
	var file, errOut bytes.Buffer
	l := NewLogger()
	l.SetFileOutput(&file)
	l.SetErrOutput(&errOut)
	l.SetLevel(level)
	l.now = func() time.Time { return time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC) }
	return l, &file, &errOut
}

func TestLogger_FileFormat(t *testing.T) {
	l, file, _ := newTestLogger(LevelDebug)

	l.Info("selected %s", "/data/adb/modules/mora/config.json")

	want := "2026-03-01T08:00:00Z [INFO] selected /data/adb/modules/mora/config.json\n"
	if file.String() != want {
		t.Errorf("file output = %q, want %q", file.String(), want)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	l, file, _ := newTestLogger(LevelWarn)

	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	l.Error("e")

	out := file.String()
	if strings.Contains(out, "[DEBUG]") || strings.Contains(out, "[INFO]") {
		t.Errorf("messages below level leaked: %q", out)
	}
	if !strings.Contains(out, "[WARN] w") || !strings.Contains(out, "[ERROR] e") {
		t.Errorf("expected warn and error, got %q", out)
	}
}

func TestLogger_StderrOnlyWarnAndAbove(t *testing.T) {
	l, _, errOut := newTestLogger(LevelDebug)

	l.Info("quiet")
	l.Warn("loud")

	if strings.Contains(errOut.String(), "quiet") {
		t.Errorf("info reached stderr: %q", errOut.String())
	}
	if errOut.String() != "[WARN] loud\n" {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestLogger_DaemonMode(t *testing.T) {
	l, file, errOut := newTestLogger(LevelDebug)
	l.SetDaemonMode(true)

	l.Error("serve failed")

	if !strings.Contains(file.String(), "serve failed") {
		t.Error("expected file output in daemon mode")
	}
	if errOut.Len() != 0 {
		t.Errorf("daemon mode wrote to stderr: %q", errOut.String())
	}
}

func TestOpenLogFile_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "rootbridge.log")

	for _, line := range []string{"one\n", "two\n"} {
		f, err := OpenLogFile(path)
		if err != nil {
			t.Fatalf("OpenLogFile() error = %v", err)
		}
		if _, err := f.WriteString(line); err != nil {
			t.Fatalf("WriteString() error = %v", err)
		}
		f.Close()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "one\ntwo\n" {
		t.Errorf("log file = %q", data)
	}
}

func TestStateDir(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/xdg-state")
	if got := StateDir(); got != "/tmp/xdg-state/rootbridge" {
		t.Errorf("StateDir() = %q", got)
	}
	if got := DefaultLogPath(); got != "/tmp/xdg-state/rootbridge/rootbridge.log" {
		t.Errorf("DefaultLogPath() = %q", got)
	}
}
