package webview

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"graphauth/pkg/logging"
)

// DefaultLocalPort is the callback port used when the caller does not
// pick one. It must match a redirect URI registered for the
// application.
const DefaultLocalPort = 8400

// callbackPath is where the local server receives the redirect.
const callbackPath = "/callback"

const callbackSuccessHTML = `<!DOCTYPE html>
<html><head><title>Sign-in complete</title></head>
<body><h1>Sign-in complete</h1>
<p>You can close this window and return to the terminal.</p>
</body></html>`

const callbackErrorHTML = `<!DOCTYPE html>
<html><head><title>Sign-in failed</title></head>
<body><h1>Sign-in failed</h1>
<p>The authorization server reported an error. You can close this
window; details are in the terminal.</p>
</body></html>`

// LocalServerSurface is a Surface backed by a loopback callback HTTP
// server and the system browser. Navigate opens the browser at the
// authorization URL; when the provider redirects back to the local
// server, the redirect URL is reported as a navigation event.
type LocalServerSurface struct {
	port        int
	openBrowser func(string) error

	server   *http.Server
	listener net.Listener
	events   chan NavigationEvent

	redirectURI string

	emitOnce  sync.Once
	closeOnce sync.Once

	mu     sync.Mutex
	closed bool
}

// LocalServerOption configures a LocalServerSurface.
type LocalServerOption func(*LocalServerSurface)

// WithBrowserOpener replaces the system browser launcher. Tests use
// this to intercept the authorization URL instead of opening a window.
func WithBrowserOpener(open func(url string) error) LocalServerOption {
	return func(s *LocalServerSurface) {
		s.openBrowser = open
	}
}

// NewLocalServerSurface builds a surface listening on the given
// loopback port. Port 0 picks an ephemeral port; DefaultLocalPort is
// the conventional choice for registered applications.
func NewLocalServerSurface(port int, opts ...LocalServerOption) *LocalServerSurface {
	s := &LocalServerSurface{
		port:        port,
		openBrowser: OpenBrowser,
		events:      make(chan NavigationEvent, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start binds the listener and begins serving the callback endpoint.
// It returns the redirect URI to configure on the interactive
// credential. The server stops when the context is cancelled or Close
// is called.
func (s *LocalServerSurface) Start(ctx context.Context) (string, error) {
	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("failed to start callback server on %s: %w", addr, err)
	}

	s.listener = listener
	s.port = listener.Addr().(*net.TCPAddr).Port
	s.redirectURI = fmt.Sprintf("http://localhost:%d%s", s.port, callbackPath)

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, s.handleCallback)

	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			logging.Error("WebView", err, "Callback server stopped unexpectedly")
		}
	}()

	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()

	logging.Debug("WebView", "Callback server listening on port %d", s.port)
	return s.redirectURI, nil
}

// RedirectURI returns the redirect URI the surface serves. Valid after
// Start.
func (s *LocalServerSurface) RedirectURI() string {
	return s.redirectURI
}

// Navigate opens the authorization URL in the browser.
func (s *LocalServerSurface) Navigate(_ context.Context, authURL string) error {
	return s.openBrowser(authURL)
}

// Events returns the navigation event channel. The local server
// reports exactly one event: the redirect back from the provider.
func (s *LocalServerSurface) Events() <-chan NavigationEvent {
	return s.events
}

// handleCallback turns the provider's redirect into a navigation
// event. Only the first callback counts; repeats are rejected.
func (s *LocalServerSurface) handleCallback(w http.ResponseWriter, r *http.Request) {
	var handled bool
	s.emitOnce.Do(func() {
		handled = true
		s.processCallback(w, r)
	})

	if !handled {
		http.Error(w, "Callback already processed", http.StatusConflict)
	}
}

func (s *LocalServerSurface) processCallback(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Cache-Control", "no-store")

	redirect := &url.URL{
		Scheme:   "http",
		Host:     fmt.Sprintf("localhost:%d", s.port),
		Path:     r.URL.Path,
		RawQuery: r.URL.RawQuery,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if r.URL.Query().Get("error") != "" {
		_, _ = w.Write([]byte(callbackErrorHTML))
	} else {
		_, _ = w.Write([]byte(callbackSuccessHTML))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.events <- NavigationEvent{URL: redirect}:
	default:
	}
}

// Close shuts down the callback server and closes the event channel.
// Safe to call more than once.
func (s *LocalServerSurface) Close() error {
	s.closeOnce.Do(func() {
		if s.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.server.Shutdown(ctx)
		}
		if s.listener != nil {
			_ = s.listener.Close()
		}
		s.mu.Lock()
		s.closed = true
		close(s.events)
		s.mu.Unlock()
	})
	return nil
}
