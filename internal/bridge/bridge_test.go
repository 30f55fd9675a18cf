package bridge

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/xdg/rootbridge/internal/executor"
	"github.com/xdg/rootbridge/internal/proxy"
	"github.com/xdg/rootbridge/internal/testutil"
)

type staticToken string

func (s staticToken) ReadToken(context.Context) string { return string(s) }

func newBridge(exec executor.Executor, tok string) *Bridge {
	tokens := staticToken(tok)
	return New(exec, tokens, proxy.NewClient(exec, tokens, proxy.Options{}, nil))
}

func TestTestRoot(t *testing.T) {
	tests := []struct {
		name   string
		result executor.Result
		want   bool
	}{
		{"root", testutil.Lines("0"), true},
		{"root with whitespace", testutil.Lines(" 0 "), true},
		{"app uid", testutil.Lines("10234"), false},
		{"no output", testutil.Lines(), false},
		{"denied", executor.Result{Success: false, ExitCode: 1, Stdout: []string{"0"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := testutil.NewFakeExecutor(func(string) executor.Result { return tt.result })
			if got := newBridge(fake, "").TestRoot(context.Background()); got != tt.want {
				t.Errorf("TestRoot() = %v, want %v", got, tt.want)
			}
			if calls := fake.Calls(); len(calls) != 1 || calls[0] != RootCheckCommand {
				t.Errorf("commands = %q", calls)
			}
		})
	}
}

func TestAPIBaseURL(t *testing.T) {
	if got := newBridge(nil, "").APIBaseURL(); got != "http://127.0.0.1:1004" {
		t.Errorf("APIBaseURL() = %q", got)
	}
}

func TestAPIToken(t *testing.T) {
	if got := newBridge(nil, "tok").APIToken(context.Background()); got != "tok" {
		t.Errorf("APIToken() = %q", got)
	}
}

func TestProxyGet_JSON(t *testing.T) {
	fake := testutil.NewFakeExecutor(func(string) executor.Result {
		return testutil.Lines(`{"ok":true}`, "__HTTP__200")
	})

	got := newBridge(fake, "tok").ProxyGet(context.Background(), "/api/status")

	var resp proxy.Response
	if err := json.Unmarshal([]byte(got), &resp); err != nil {
		t.Fatalf("ProxyGet() returned invalid JSON %q: %v", got, err)
	}
	if resp.Code != 200 || resp.Body != `{"ok":true}` {
		t.Errorf("response = %+v", resp)
	}
}

func TestProxyPost_TokenMissing(t *testing.T) {
	fake := testutil.NewFakeExecutor(nil)

	got := newBridge(fake, "").ProxyPost(context.Background(), "/api/x", "{}")

	if got != `{"code":0,"body":"","error":"token_missing"}` {
		t.Errorf("ProxyPost() = %s", got)
	}
	if fake.CallCount() != 0 {
		t.Errorf("expected no commands, got %d", fake.CallCount())
	}
}

func TestBridge_SerializesOperations(t *testing.T) {
	var active, maxActive int32
	fake := testutil.NewFakeExecutor(func(cmd string) executor.Result {
		n := atomic.AddInt32(&active, 1)
		for {
			m := atomic.LoadInt32(&maxActive)
			if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		if strings.HasPrefix(cmd, "id") {
			return testutil.Lines("0")
		}
		return testutil.Lines("x", "__HTTP__200")
	})
	b := newBridge(fake, "tok")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); b.TestRoot(context.Background()) }()
		go func() { defer wg.Done(); b.ProxyGet(context.Background(), "/x") }()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&maxActive); got != 1 {
		t.Errorf("max concurrent commands = %d, want 1", got)
	}
}
