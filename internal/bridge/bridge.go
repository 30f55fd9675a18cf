// Package bridge is the surface a UI host calls to reach the daemon.
//
// Every operation blocks on the elevated shell, which may be waiting for the
// user to grant root. Hosts that must stay responsive call operations
// through Run.
package bridge

import (
	"context"
	"strings"
	"sync"

	"github.com/xdg/rootbridge/internal/executor"
	"github.com/xdg/rootbridge/internal/proxy"
)

// RootCheckCommand prints the effective uid of the elevated shell.
const RootCheckCommand = "id -u"

// Bridge exposes root detection, the API token, and the request proxy.
// Operations are serialized: at most one touches the elevated shell and the
// config selection at a time.
type Bridge struct {
	mu     sync.Mutex
	exec   executor.Executor
	tokens proxy.TokenSource
	client *proxy.Client
}

// New creates a Bridge. client should use the same token source.
func New(exec executor.Executor, tokens proxy.TokenSource, client *proxy.Client) *Bridge {
	return &Bridge{exec: exec, tokens: tokens, client: client}
}

// TestRoot reports whether the elevated shell runs as uid 0.
func (b *Bridge) TestRoot(ctx context.Context) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	r := b.exec.Exec(ctx, RootCheckCommand)
	return r.Success && len(r.Stdout) > 0 && strings.TrimSpace(r.Stdout[0]) == "0"
}

// APIBaseURL returns the daemon base URL.
func (b *Bridge) APIBaseURL() string {
	return b.client.BaseURL()
}

// APIToken returns the daemon API token, or "" if unavailable.
func (b *Bridge) APIToken(ctx context.Context) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.tokens.ReadToken(ctx)
}

// ProxyGet sends a GET to the daemon and returns the JSON-encoded
// proxy.Response.
func (b *Bridge) ProxyGet(ctx context.Context, path string) string {
	return b.Get(ctx, path).JSON()
}

// ProxyPost sends body as JSON to the daemon and returns the JSON-encoded
// proxy.Response.
func (b *Bridge) ProxyPost(ctx context.Context, path, body string) string {
	return b.Post(ctx, path, body).JSON()
}

// Get is ProxyGet without the encoding step.
func (b *Bridge) Get(ctx context.Context, path string) proxy.Response {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.client.Get(ctx, path)
}

// Post is ProxyPost without the encoding step.
func (b *Bridge) Post(ctx context.Context, path, body string) proxy.Response {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.client.Post(ctx, path, body)
}
