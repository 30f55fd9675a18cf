// Package proxy relays HTTP requests to the local daemon by running an HTTP
// client inside the elevated shell.
//
// The daemon only accepts loopback connections carrying its API token, and
// the token lives in a file only the elevated shell can read. Each request
// therefore becomes a single shell command: curl with both auth headers,
// writing the body followed by a status trailer to stdout:
//
//	<body>\n__HTTP__<status>
//
// Responses are always values. A missing token, a missing client binary, or
// a timeout produce a Response with Code 0 rather than an error.
package proxy

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/xdg/rootbridge/internal/audit"
	"github.com/xdg/rootbridge/internal/clog"
	"github.com/xdg/rootbridge/internal/daemonconfig"
	"github.com/xdg/rootbridge/internal/executor"
	"github.com/xdg/rootbridge/internal/shell"
)

// DefaultBaseURL is where the daemon listens.
const DefaultBaseURL = "http://127.0.0.1:1004"

// DefaultTimeout bounds the HTTP leg of each request.
const DefaultTimeout = 3 * time.Second

// StatusMarker separates the response body from the status code.
const StatusMarker = "\n__HTTP__"

// Response.Error tags.
const (
	// ErrTokenMissing means no token was available, so nothing was sent.
	ErrTokenMissing = "token_missing"
	// ErrCancelled means the caller stopped waiting for the response.
	ErrCancelled = "cancelled"
)

// DefaultHTTPClients are tried in order. Termux ships curl outside PATH
// for the root shell.
var DefaultHTTPClients = []string{
	"curl",
	"/data/data/com.termux/files/usr/bin/curl",
}

// Response is the outcome of a proxied request.
type Response struct {
	// Code is the HTTP status, or 0 if no response was received.
	Code int `json:"code"`
	// Body is the response body.
	Body string `json:"body"`
	// Error is a machine-readable tag such as ErrTokenMissing.
	Error string `json:"error,omitempty"`
	// ShellError is the shell's stderr when the command failed.
	ShellError string `json:"shell_error,omitempty"`
}

// JSON returns r encoded as a JSON object.
func (r Response) JSON() string {
	data, err := json.Marshal(r)
	if err != nil {
		// A struct of strings and an int always marshals.
		return `{"code":0,"body":""}`
	}
	return string(data)
}

// TokenSource supplies the daemon API token. An empty string means no
// token is available.
type TokenSource interface {
	ReadToken(ctx context.Context) string
}

// Options configures a Client. Zero values select the defaults.
type Options struct {
	BaseURL  string
	Timeout  time.Duration
	Clients  []string
	Decoders []string
}

// Client sends requests to the daemon through an Executor.
type Client struct {
	exec     executor.Executor
	tokens   TokenSource
	baseURL  string
	timeout  time.Duration
	clients  []string
	decoders []string
	audit    *audit.Logger
}

// NewClient creates a Client. auditLog may be nil.
func NewClient(exec executor.Executor, tokens TokenSource, opts Options, auditLog *audit.Logger) *Client {
	c := &Client{
		exec:     exec,
		tokens:   tokens,
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		timeout:  opts.Timeout,
		clients:  opts.Clients,
		decoders: opts.Decoders,
		audit:    auditLog,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if len(c.clients) == 0 {
		c.clients = DefaultHTTPClients
	}
	if len(c.decoders) == 0 {
		c.decoders = daemonconfig.DefaultBase64Decoders
	}
	return c
}

// BaseURL returns the daemon base URL requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get sends a GET request for path.
func (c *Client) Get(ctx context.Context, path string) Response {
	return c.Request(ctx, "GET", path, "")
}

// Post sends body as a JSON POST request to path.
func (c *Client) Post(ctx context.Context, path, body string) Response {
	return c.Request(ctx, "POST", path, body)
}

// Request sends an HTTP request to the daemon. Methods other than GET
// carry body as JSON.
func (c *Client) Request(ctx context.Context, method, path, body string) Response {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = "GET"
	}
	start := time.Now()

	token := c.tokens.ReadToken(ctx)
	if strings.TrimSpace(token) == "" {
		resp := Response{Error: ErrTokenMissing}
		c.record(method, path, resp, start)
		return resp
	}

	url := c.baseURL + path
	var command string
	if method == "GET" {
		command = c.GetCommand(url, token)
	} else {
		command = c.BodyCommand(method, url, token, body)
	}
	clog.Debug("proxy: %s", shell.Redact(command, token))

	r := c.exec.Exec(ctx, command)
	respBody, code := ParseFramed(r.Output(), r.Success)
	resp := Response{Code: code, Body: respBody}
	if !r.Success && len(r.Stderr) > 0 {
		resp.ShellError = r.ErrOutput()
	}
	c.record(method, path, resp, start)
	return resp
}

// GetCommand builds the GET command for url.
func (c *Client) GetCommand(url, token string) string {
	alts := make([]string, len(c.clients))
	for i, bin := range c.clients {
		alts[i] = c.curl(bin, token, url)
	}
	return shell.Join(alts)
}

// BodyCommand builds the command for a request with a JSON body. The body
// travels base64-encoded and is decoded on the device into curl's stdin.
func (c *Client) BodyCommand(method, url, token, body string) string {
	b64 := base64.StdEncoding.EncodeToString([]byte(body))
	extra := []string{
		"-H", shell.Quote("Content-Type: application/json"),
		"-X", shell.Quote(method),
		"--data-binary", "@-",
	}
	alts := make([]string, len(c.clients))
	for i, bin := range c.clients {
		alts[i] = c.curl(bin, token, url, extra...)
	}
	return "echo " + shell.Quote(b64) + " | " + daemonconfig.DecoderChain(c.decoders) + " | " + wrap(shell.Join(alts))
}

// curl builds one client invocation. extra goes after the auth headers.
func (c *Client) curl(bin, token, url string, extra ...string) string {
	args := []string{
		bin, "-s", "-m", formatSeconds(c.timeout),
		"-H", shell.Quote("X-Api-Key: " + token),
		"-H", shell.Quote("Authorization: Bearer " + token),
	}
	args = append(args, extra...)
	args = append(args, "-o", "-", "-w", shell.Quote(`\n__HTTP__%{http_code}`), shell.Quote(url))
	return strings.Join(args, " ")
}

func (c *Client) record(method, path string, resp Response, start time.Time) {
	if err := c.audit.LogProxy(method, path, resp.Code, resp.Error, time.Since(start)); err != nil {
		clog.Warn("proxy: %v", err)
	}
}

// ParseFramed splits command output into body and status code at the last
// StatusMarker. An unparsable status yields 0. Without a marker the whole
// output is the body, with code 200 if the command succeeded and 0
// otherwise.
func ParseFramed(out string, success bool) (body string, code int) {
	idx := strings.LastIndex(out, StatusMarker)
	if idx < 0 {
		if success {
			return out, 200
		}
		return out, 0
	}
	code, err := strconv.Atoi(strings.TrimSpace(out[idx+len(StatusMarker):]))
	if err != nil {
		code = 0
	}
	return out[:idx], code
}

// wrap parenthesizes a single command so it can sit in a pipeline; Join
// already wraps alternatives.
func wrap(cmd string) string {
	if strings.HasPrefix(cmd, "(") {
		return cmd
	}
	return "(" + cmd + ")"
}

// formatSeconds renders d for curl's -m flag, which accepts fractions.
func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
