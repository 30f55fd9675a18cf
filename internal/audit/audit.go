// Package audit provides structured logging for token and proxy events.
// Log entries follow a key=value format suitable for parsing and analysis.
//
// Tokens themselves are never recorded, only where they were found or
// provisioned.
package audit

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"
)

// EventType represents the type of token or proxy event.
type EventType string

// Event types for token discovery.
const (
	EventTokenFound       EventType = "FOUND"
	EventTokenProvisioned EventType = "PROVISIONED"
	EventTokenDiscovered  EventType = "DISCOVERED"
	EventTokenMissing     EventType = "MISSING"
	EventTokenRotated     EventType = "ROTATED"
)

// Event types for proxied requests.
const (
	EventProxyRequest EventType = "REQUEST"
)

// Event represents a token or proxy audit log entry.
type Event struct {
	// Timestamp is when the event occurred.
	Timestamp time.Time

	// Type is the event type (FOUND, PROVISIONED, REQUEST, etc.)
	Type EventType

	// Path is the daemon config path (for token events).
	Path string

	// Reason explains a MISSING or failed ROTATED event.
	Reason string

	// Method is the HTTP method (for REQUEST events).
	Method string

	// Target is the daemon API path (for REQUEST events).
	Target string

	// Code is the HTTP status, 0 when no response was received.
	Code int

	// Error is the response error tag, if any.
	Error string

	// Duration is the time the request took.
	Duration time.Duration
}

// Format returns the log entry as a formatted string.
// Format: 2024-01-15T14:32:05Z TOKEN FOUND path="/data/adb/modules/mora/config.json"
// Format: 2024-01-15T14:32:05Z PROXY REQUEST method=GET target="/api/status" code=200 duration=12.0ms
func (e *Event) Format() string {
	var b strings.Builder

	b.WriteString(e.Timestamp.UTC().Format(time.RFC3339))

	if e.isProxyEvent() {
		b.WriteString(" PROXY ")
	} else {
		b.WriteString(" TOKEN ")
	}
	b.WriteString(string(e.Type))

	if e.isProxyEvent() {
		b.WriteString(" method=")
		b.WriteString(e.Method)
		b.WriteString(" target=")
		b.WriteString(quoteValue(e.Target))
		b.WriteString(" code=")
		b.WriteString(strconv.Itoa(e.Code))
		writeOptionalField(&b, "error", e.Error)
		b.WriteString(" duration=")
		b.WriteString(formatDuration(e.Duration))
		return b.String()
	}

	writeOptionalField(&b, "path", e.Path)
	writeOptionalField(&b, "reason", e.Reason)
	return b.String()
}

func (e *Event) isProxyEvent() bool {
	return e.Type == EventProxyRequest
}

// writeOptionalField appends " key=quoted_value" to the builder if value is non-empty.
func writeOptionalField(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	b.WriteString(" ")
	b.WriteString(key)
	b.WriteString("=")
	b.WriteString(quoteValue(value))
}

// quoteValue returns a quoted string value.
func quoteValue(s string) string {
	return fmt.Sprintf("%q", s)
}

// formatDuration formats a duration as a human-readable string (e.g., "2.3s", "1m30s").
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return d.Round(time.Second).String()
}

// Logger writes audit events to an io.Writer. A nil *Logger discards
// everything.
type Logger struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

// NewLogger creates a new audit logger that writes to the given writer.
func NewLogger(w io.Writer) *Logger {
	return &Logger{w: w, now: time.Now}
}

// Log writes an event to the audit log. A zero Timestamp is filled in.
func (l *Logger) Log(e *Event) error {
	if l == nil || l.w == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if e.Timestamp.IsZero() {
		e.Timestamp = l.now()
	}
	line := e.Format() + "\n"
	_, err := l.w.Write([]byte(line))
	if err != nil {
		return fmt.Errorf("write audit event: %w", err)
	}
	return nil
}

// LogToken logs a TOKEN event for the given config path.
func (l *Logger) LogToken(typ EventType, path, reason string) error {
	return l.Log(&Event{
		Type:   typ,
		Path:   path,
		Reason: reason,
	})
}

// LogProxy logs a PROXY REQUEST event.
func (l *Logger) LogProxy(method, target string, code int, errTag string, duration time.Duration) error {
	return l.Log(&Event{
		Type:     EventProxyRequest,
		Method:   method,
		Target:   target,
		Code:     code,
		Error:    errTag,
		Duration: duration,
	})
}
