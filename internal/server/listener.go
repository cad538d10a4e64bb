package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sonorous/internal/shared"
)

const shutdownGrace = 5 * time.Second

// CallbackServer listens on the redirect URI's host for a single authorization callback.
type CallbackServer struct {
	handler *CallbackHandler
	server  *http.Server
	addr    string
	errs    chan error
	logger  *log.Logger
}

// NewCallbackServer prepares a listener for redirectURI, which must be an http URL with a host.
func NewCallbackServer(redirectURI string, logger *log.Logger) (*CallbackServer, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return nil, fmt.Errorf("%w: redirect uri: %v", shared.ErrInvalidConfig, err)
	}
	if u.Scheme != "http" || u.Host == "" {
		return nil, fmt.Errorf("%w: redirect uri must be http://host[:port]/path, got %q", shared.ErrInvalidConfig, redirectURI)
	}

	host := u.Host
	if u.Port() == "" {
		host = net.JoinHostPort(u.Hostname(), "80")
	}

	handler := NewCallbackHandler(u.Path)
	router := NewRouter([]Handler{handler}, RequestLogger(logger))

	return &CallbackServer{
		handler: handler,
		server:  &http.Server{Addr: host, Handler: router, ReadHeaderTimeout: 10 * time.Second},
		addr:    host,
		errs:    make(chan error, 1),
		logger:  logger,
	}, nil
}

// Handler exposes the callback handler, used to clear the consumed fragment.
func (s *CallbackServer) Handler() *CallbackHandler {
	return s.handler
}

// Start binds the listener and serves in the background.
func (s *CallbackServer) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.addr = ln.Addr().String()

	go func() {
		s.logger.Info("callback listener started", "addr", s.addr)
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errs <- err
		}
	}()
	return nil
}

// Addr is the bound address once [CallbackServer.Start] has returned.
func (s *CallbackServer) Addr() string {
	return s.addr
}

// Wait blocks until a fragment arrives, the server fails, timeout elapses or ctx is done.
func (s *CallbackServer) Wait(ctx context.Context, timeout time.Duration) (string, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case fragment := <-s.handler.Result():
		return fragment, nil
	case err := <-s.errs:
		return "", fmt.Errorf("callback listener failed: %w", err)
	case <-timer.C:
		return "", fmt.Errorf("%w after %s", shared.ErrAuthTimeout, timeout)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Shutdown stops the listener, waiting up to five seconds for in-flight requests.
func (s *CallbackServer) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Warn("error shutting down callback listener", "error", err)
	}
}
