package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/sonorous/internal/shared"
)

func receive(t *testing.T, l *Loopback) Callback {
	t.Helper()
	select {
	case cb := <-l.Callbacks():
		return cb
	case <-time.After(5 * time.Second):
		t.Fatal("no callback delivered")
		return Callback{}
	}
}

func TestLoopback(t *testing.T) {
	logger := shared.NewLogger(io.Discard)

	t.Run("delivers the posted fragment", func(t *testing.T) {
		var l *Loopback
		var opened string
		l = NewLoopback(LoopbackOpts{
			RedirectURI: "http://127.0.0.1:0/callback",
			Logger:      logger,
			Open: func(url string) error {
				opened = url
				l.mu.Lock()
				addr := l.current.Addr()
				l.mu.Unlock()

				resp, err := http.Post("http://"+addr+TokenPath, "text/plain", strings.NewReader("access_token=XYZ"))
				if err != nil {
					return err
				}
				return resp.Body.Close()
			},
		})

		if err := l.Navigate(context.Background(), "https://accounts.example/authorize"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if opened != "https://accounts.example/authorize" {
			t.Errorf("expected authorize URL opened, got %q", opened)
		}

		cb := receive(t, l)
		if cb.Err != nil || cb.Fragment != "access_token=XYZ" {
			t.Fatalf("unexpected callback %+v", cb)
		}

		if err := l.ClearFragment(); err != nil {
			t.Fatalf("ClearFragment failed: %v", err)
		}
		if l.current.Handler().Fragment() != "" {
			t.Error("expected fragment cleared")
		}
	})

	t.Run("reports timeout", func(t *testing.T) {
		l := NewLoopback(LoopbackOpts{
			RedirectURI: "http://127.0.0.1:0/callback",
			Timeout:     20 * time.Millisecond,
			Logger:      logger,
			Open:        func(string) error { return nil },
		})

		if err := l.Navigate(context.Background(), "https://accounts.example/authorize"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cb := receive(t, l); !errors.Is(cb.Err, shared.ErrAuthTimeout) {
			t.Errorf("expected ErrAuthTimeout, got %v", cb.Err)
		}
	})

	t.Run("browser failure includes the url", func(t *testing.T) {
		l := NewLoopback(LoopbackOpts{
			RedirectURI: "http://127.0.0.1:0/callback",
			Timeout:     20 * time.Millisecond,
			Logger:      logger,
			Open:        func(string) error { return errors.New("no display") },
		})

		err := l.Navigate(context.Background(), "https://accounts.example/authorize")
		if err == nil || !strings.Contains(err.Error(), "https://accounts.example/authorize") {
			t.Errorf("expected error with url, got %v", err)
		}
		receive(t, l)
	})

	t.Run("browser failure handled by OnFailed", func(t *testing.T) {
		var failedURL string
		l := NewLoopback(LoopbackOpts{
			RedirectURI: "http://127.0.0.1:0/callback",
			Timeout:     20 * time.Millisecond,
			Logger:      logger,
			Open:        func(string) error { return errors.New("no display") },
			OnFailed:    func(url string, err error) { failedURL = url },
		})

		if err := l.Navigate(context.Background(), "https://accounts.example/authorize"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if failedURL != "https://accounts.example/authorize" {
			t.Errorf("expected OnFailed with url, got %q", failedURL)
		}
		receive(t, l)
	})

	t.Run("invalid redirect uri", func(t *testing.T) {
		l := NewLoopback(LoopbackOpts{RedirectURI: "https://example.com/callback", Logger: logger})
		if err := l.Navigate(context.Background(), "https://accounts.example/authorize"); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("second navigation supersedes the first", func(t *testing.T) {
		var l *Loopback
		calls := 0
		l = NewLoopback(LoopbackOpts{
			RedirectURI: "http://127.0.0.1:0/callback",
			Timeout:     50 * time.Millisecond,
			Logger:      logger,
			Open: func(string) error {
				calls++
				if calls == 1 {
					return nil
				}
				l.mu.Lock()
				addr := l.current.Addr()
				l.mu.Unlock()

				resp, err := http.Post("http://"+addr+TokenPath, "text/plain", strings.NewReader("access_token=XYZ"))
				if err != nil {
					return err
				}
				return resp.Body.Close()
			},
		})

		for range 2 {
			if err := l.Navigate(context.Background(), "https://accounts.example/authorize"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		if cb := receive(t, l); cb.Err != nil || cb.Fragment != "access_token=XYZ" {
			t.Fatalf("unexpected callback %+v", cb)
		}

		select {
		case cb := <-l.Callbacks():
			t.Errorf("expected exactly one callback, got another %+v", cb)
		case <-time.After(250 * time.Millisecond):
		}
	})

	t.Run("superseded listener never reports a timeout", func(t *testing.T) {
		l := NewLoopback(LoopbackOpts{
			RedirectURI: "http://127.0.0.1:0/callback",
			Timeout:     50 * time.Millisecond,
			Logger:      logger,
			Open:        func(string) error { return nil },
		})

		for range 2 {
			if err := l.Navigate(context.Background(), "https://accounts.example/authorize"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		if cb := receive(t, l); !errors.Is(cb.Err, shared.ErrAuthTimeout) {
			t.Errorf("expected ErrAuthTimeout, got %v", cb.Err)
		}
		select {
		case cb := <-l.Callbacks():
			t.Errorf("expected one callback, got another %+v", cb)
		case <-time.After(250 * time.Millisecond):
		}
	})

	t.Run("ClearFragment before navigation", func(t *testing.T) {
		l := NewLoopback(LoopbackOpts{Logger: logger})
		if err := l.ClearFragment(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
