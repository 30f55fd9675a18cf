package bridge

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/xdg/rootbridge/internal/clog"
	"github.com/xdg/rootbridge/internal/proxy"
	"github.com/xdg/rootbridge/internal/token"
)

// DefaultListenAddr is the loopback address for the bridge endpoint.
const DefaultListenAddr = "127.0.0.1:1005"

// DefaultRequestTimeout bounds each endpoint call, including any wait for
// root consent.
const DefaultRequestTimeout = 30 * time.Second

// maxBodyBytes caps POST bodies forwarded to the daemon.
const maxBodyBytes = 1 << 20

// Server exposes a Bridge as a JSON HTTP API on a loopback address, so a
// UI host in any language can call it. Loopback is shared by every local
// process, so each request must carry the server's secret as a bearer
// token.
type Server struct {
	// Addr is the address to listen on (e.g., "127.0.0.1:1005").
	Addr string

	// Secret is the bearer token required on every request.
	Secret string

	// Bridge handles the calls.
	Bridge *Bridge

	// RequestTimeout bounds each call. Zero means no bound beyond the
	// client's connection.
	RequestTimeout time.Duration

	server   *http.Server
	listener net.Listener
	mu       sync.Mutex
	running  bool
}

// NewServer creates a server for b. If addr is empty, it defaults to
// DefaultListenAddr. If secret is empty, a random one is generated.
func NewServer(addr, secret string, b *Bridge, requestTimeout time.Duration) *Server {
	if addr == "" {
		addr = DefaultListenAddr
	}
	if secret == "" {
		secret = token.Generate()
	}
	return &Server{
		Addr:           addr,
		Secret:         secret,
		Bridge:         b,
		RequestTimeout: requestTimeout,
	}
}

// Handler returns the endpoint's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /bridge/root", s.handleRoot)
	mux.HandleFunc("GET /bridge/base-url", s.handleBaseURL)
	mux.HandleFunc("GET /bridge/token", s.handleToken)
	mux.HandleFunc("GET /bridge/proxy", s.handleProxy)
	mux.HandleFunc("POST /bridge/proxy", s.handleProxy)
	return s.requireSecret(mux)
}

// requireSecret rejects requests that lack "Authorization: Bearer <Secret>".
func (s *Server) requireSecret(next http.Handler) http.Handler {
	want := []byte("Bearer " + s.Secret)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := []byte(r.Header.Get("Authorization"))
		if s.Secret == "" || subtle.ConstantTimeCompare(got, want) != 1 {
			w.Header().Set("WWW-Authenticate", "Bearer")
			s.writeError(w, http.StatusUnauthorized, "missing or invalid bearer secret")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Start begins accepting connections.
// It returns an error if the server is already running or fails to start.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("bridge server already running")
	}

	listener, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Addr, err)
	}

	s.listener = listener
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 30 * time.Second,
		ErrorLog:          log.New(clog.Writer(clog.LevelWarn), "", 0),
	}
	s.running = true

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			clog.Error("bridge server: %v", err)
		}
	}()

	clog.Info("bridge server listening on %s", listener.Addr())
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.running = false
	return s.server.Shutdown(ctx)
}

// ListenAddr returns the actual address the server is listening on.
// Returns empty string if the server is not running.
func (s *Server) ListenAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

type rootResponse struct {
	Root bool `json:"root"`
}

type baseURLResponse struct {
	BaseURL string `json:"base_url"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// requestContext applies RequestTimeout to r's context.
func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.RequestTimeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), s.RequestTimeout)
}

// handleRoot handles GET /bridge/root.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	root := Run(ctx, false, s.Bridge.TestRoot)
	s.writeJSON(w, http.StatusOK, rootResponse{Root: root})
}

// handleBaseURL handles GET /bridge/base-url.
func (s *Server) handleBaseURL(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, baseURLResponse{BaseURL: s.Bridge.APIBaseURL()})
}

// handleToken handles GET /bridge/token. An unavailable token is an empty
// string, not an HTTP error.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	tok := Run(ctx, "", s.Bridge.APIToken)
	s.writeJSON(w, http.StatusOK, tokenResponse{Token: tok})
}

// handleProxy handles GET and POST /bridge/proxy?path=/daemon/path. The
// daemon's status is reported in the body; the endpoint itself answers 200.
func (s *Server) handleProxy(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if !strings.HasPrefix(path, "/") {
		s.writeError(w, http.StatusBadRequest, "path must start with /")
		return
	}

	var body string
	if r.Method == http.MethodPost {
		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				s.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			s.writeError(w, http.StatusBadRequest, "failed to read request body")
			return
		}
		body = string(data)
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	cancelled := proxy.Response{Error: proxy.ErrCancelled}
	resp := Run(ctx, cancelled, func(ctx context.Context) proxy.Response {
		if r.Method == http.MethodPost {
			return s.Bridge.Post(ctx, path, body)
		}
		return s.Bridge.Get(ctx, path)
	})
	s.writeJSON(w, http.StatusOK, resp)
}

// writeJSON writes a JSON response with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response with the given status code.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}
