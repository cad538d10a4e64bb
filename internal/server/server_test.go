package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sonorous/internal/shared"
)

func TestCallbackHandler(t *testing.T) {
	newRouter := func(h *CallbackHandler) http.Handler {
		return NewRouter([]Handler{h}, RequestLogger(shared.NewLogger(io.Discard)))
	}

	t.Run("Routes", func(t *testing.T) {
		h := NewCallbackHandler("/callback")
		routes := h.Routes()
		if len(routes) != 2 || routes[0] != "/callback" || routes[1] != TokenPath {
			t.Errorf("unexpected routes %v", routes)
		}
	})

	t.Run("serves callback page", func(t *testing.T) {
		h := NewCallbackHandler("/callback")
		rec := httptest.NewRecorder()
		newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("expected html content type, got %q", ct)
		}
		body := rec.Body.String()
		for _, want := range []string{"location.hash", "history.replaceState", "fetch("} {
			if !strings.Contains(body, want) {
				t.Errorf("expected page to contain %q", want)
			}
		}
	})

	t.Run("accepts one fragment", func(t *testing.T) {
		h := NewCallbackHandler("/callback")
		router := newRouter(h)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, TokenPath, strings.NewReader("access_token=XYZ&token_type=Bearer"))
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected status 204, got %d", rec.Code)
		}

		select {
		case got := <-h.Result():
			if got != "access_token=XYZ&token_type=Bearer" {
				t.Errorf("unexpected fragment %q", got)
			}
		default:
			t.Fatal("expected fragment on result channel")
		}

		if h.Fragment() != "access_token=XYZ&token_type=Bearer" {
			t.Errorf("expected fragment to be held, got %q", h.Fragment())
		}

		rec = httptest.NewRecorder()
		req = httptest.NewRequest(http.MethodPost, TokenPath, strings.NewReader("access_token=OTHER"))
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Errorf("expected status 409 for second callback, got %d", rec.Code)
		}
		if _, open := <-h.Result(); open {
			t.Error("expected result channel to be closed")
		}
	})

	t.Run("ClearFragment", func(t *testing.T) {
		h := NewCallbackHandler("/callback")
		h.Send("access_token=XYZ")

		if err := h.ClearFragment(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if h.Fragment() != "" {
			t.Errorf("expected fragment to be cleared, got %q", h.Fragment())
		}
		if h.Send("access_token=AGAIN") {
			t.Error("expected later sends to be rejected after clearing")
		}
	})

	t.Run("oversized body rejected", func(t *testing.T) {
		h := NewCallbackHandler("/callback")
		rec := httptest.NewRecorder()
		body := bytes.Repeat([]byte("a"), maxFragmentBytes+1)
		newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, TokenPath, bytes.NewReader(body)))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("wrong method", func(t *testing.T) {
		h := NewCallbackHandler("/callback")
		rec := httptest.NewRecorder()
		newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, TokenPath, nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status 405, got %d", rec.Code)
		}
	})

	t.Run("unknown path", func(t *testing.T) {
		h := NewCallbackHandler("/callback")
		rec := httptest.NewRecorder()
		newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/elsewhere", nil))

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
	})
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := shared.NewLogger(&buf)
	shared.SetLogLevel(logger, log.DebugLevel)

	h := NewCallbackHandler("/callback")
	router := NewRouter([]Handler{h}, RequestLogger(logger))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, TokenPath, strings.NewReader("access_token=SECRET")))

	out := buf.String()
	if !strings.Contains(out, "callback request") {
		t.Errorf("expected request to be logged, got %q", out)
	}
	if strings.Contains(out, "SECRET") {
		t.Error("expected token to stay out of the log")
	}
}

func TestCallbackServer(t *testing.T) {
	logger := shared.NewLogger(io.Discard)

	t.Run("rejects bad redirect uri", func(t *testing.T) {
		for _, uri := range []string{"://bad", "https://127.0.0.1/callback", "http:///callback"} {
			if _, err := NewCallbackServer(uri, logger); !errors.Is(err, shared.ErrInvalidConfig) {
				t.Errorf("%q: expected ErrInvalidConfig, got %v", uri, err)
			}
		}
	})

	t.Run("delivers fragment", func(t *testing.T) {
		srv, err := NewCallbackServer("http://127.0.0.1:0/callback", logger)
		if err != nil {
			t.Fatalf("failed to create server: %v", err)
		}
		if err := srv.Start(); err != nil {
			t.Fatalf("failed to start server: %v", err)
		}
		defer srv.Shutdown()

		go func() {
			resp, err := http.Post("http://"+srv.Addr()+TokenPath, "text/plain", strings.NewReader("access_token=XYZ"))
			if err == nil {
				resp.Body.Close()
			}
		}()

		fragment, err := srv.Wait(context.Background(), 5*time.Second)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if fragment != "access_token=XYZ" {
			t.Errorf("unexpected fragment %q", fragment)
		}
	})

	t.Run("times out", func(t *testing.T) {
		srv, err := NewCallbackServer("http://127.0.0.1:0/callback", logger)
		if err != nil {
			t.Fatalf("failed to create server: %v", err)
		}
		if err := srv.Start(); err != nil {
			t.Fatalf("failed to start server: %v", err)
		}
		defer srv.Shutdown()

		if _, err := srv.Wait(context.Background(), 10*time.Millisecond); !errors.Is(err, shared.ErrAuthTimeout) {
			t.Errorf("expected ErrAuthTimeout, got %v", err)
		}
	})

	t.Run("context cancelled", func(t *testing.T) {
		srv, err := NewCallbackServer("http://127.0.0.1:0/callback", logger)
		if err != nil {
			t.Fatalf("failed to create server: %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := srv.Wait(ctx, time.Minute); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
