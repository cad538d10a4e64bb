package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sonorous/internal/shared"
)

// Callback is the outcome of one authorization attempt.
type Callback struct {
	Fragment string
	Err      error
}

// LoopbackOpts configures a [Loopback].
type LoopbackOpts struct {
	RedirectURI string
	Timeout     time.Duration
	Open        func(url string) error      // defaults to shared.OpenBrowser
	OnFailed    func(url string, err error) // called instead of failing when Open errors
	Logger      *log.Logger
}

// Loopback is a location that serves the redirect URI locally. Each navigation starts a fresh
// [CallbackServer], opens the browser and publishes the outcome on [Loopback.Callbacks].
type Loopback struct {
	opts      LoopbackOpts
	callbacks chan Callback

	mu      sync.Mutex
	current *CallbackServer
	cancel  context.CancelFunc
}

// NewLoopback creates a [Loopback]. A zero timeout waits two minutes.
func NewLoopback(opts LoopbackOpts) *Loopback {
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}
	if opts.Open == nil {
		opts.Open = shared.OpenBrowser
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Loopback{opts: opts, callbacks: make(chan Callback, 1)}
}

// Callbacks delivers one [Callback] per navigation.
func (l *Loopback) Callbacks() <-chan Callback {
	return l.callbacks
}

// Navigate starts listening on the redirect URI, then opens url. A listener from an earlier
// navigation is shut down first and its outcome is never published.
func (l *Loopback) Navigate(ctx context.Context, url string) error {
	srv, err := NewCallbackServer(l.opts.RedirectURI, l.opts.Logger)
	if err != nil {
		return err
	}

	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	if l.current != nil {
		l.current.Shutdown()
	}
	if err := srv.Start(); err != nil {
		l.current, l.cancel = nil, nil
		l.mu.Unlock()
		return err
	}
	waitCtx, cancel := context.WithCancel(ctx)
	l.current, l.cancel = srv, cancel
	l.mu.Unlock()

	go l.await(waitCtx, srv)

	if err := l.opts.Open(url); err != nil {
		if l.opts.OnFailed != nil {
			l.opts.OnFailed(url, err)
			return nil
		}
		return fmt.Errorf("could not open browser, visit %s: %w", url, err)
	}
	return nil
}

func (l *Loopback) await(ctx context.Context, srv *CallbackServer) {
	fragment, err := srv.Wait(ctx, l.opts.Timeout)
	srv.Shutdown()

	l.mu.Lock()
	defer l.mu.Unlock()
	if srv != l.current {
		l.opts.Logger.Debug("dropping callback from superseded listener")
		return
	}

	if err != nil {
		l.opts.Logger.Warn("authorization callback not received", "error", err)
	}

	select {
	case l.callbacks <- Callback{Fragment: fragment, Err: err}:
	default:
		l.opts.Logger.Warn("dropping authorization callback, previous one not consumed")
	}
}

// ClearFragment forgets the fragment held by the current listener.
func (l *Loopback) ClearFragment() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil {
		return nil
	}
	return l.current.Handler().ClearFragment()
}
