// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/sonorous/internal/models"
)

// SampleTracks returns n tracks, most recent first, named "Song n" down to "Song 1".
func SampleTracks(n int) []models.Track {
	tracks := make([]models.Track, n)
	for i := range n {
		idx := n - i
		tracks[i] = models.Track{
			ID:       fmt.Sprintf("t%d", idx),
			Name:     fmt.Sprintf("Song %d", idx),
			Artist:   fmt.Sprintf("Artist %d", idx),
			AlbumArt: fmt.Sprintf("https://img/%d", idx),
			PlayedAt: fmt.Sprintf("2024-05-01T10:%02d:00Z", idx),
		}
	}
	return tracks
}

// FakeHistory is a test double for the history service.
type FakeHistory struct {
	Tracks []models.Track
	Err    error

	mu     sync.Mutex
	tokens []string
}

func (f *FakeHistory) FetchRecentlyPlayed(ctx context.Context, token string) ([]models.Track, error) {
	f.mu.Lock()
	f.tokens = append(f.tokens, token)
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	return f.Tracks, nil
}

func (f *FakeHistory) Name() string { return "fake history" }

// Tokens returns the tokens passed to each call.
func (f *FakeHistory) Tokens() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.tokens...)
}

// FakeCompleter is a test double for the language model.
type FakeCompleter struct {
	Text string
	Err  error

	mu       sync.Mutex
	requests []models.CompletionRequest
}

func (f *FakeCompleter) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.Err != nil {
		return "", f.Err
	}
	return f.Text, nil
}

func (f *FakeCompleter) Name() string { return "fake completer" }

// Requests returns every request received.
func (f *FakeCompleter) Requests() []models.CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.CompletionRequest(nil), f.requests...)
}

// MemoryLocation records navigation instead of opening a browser.
type MemoryLocation struct {
	NavigateErr error

	mu        sync.Mutex
	navigated []string
	cleared   int
}

func (m *MemoryLocation) Navigate(ctx context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.NavigateErr != nil {
		return m.NavigateErr
	}
	m.navigated = append(m.navigated, url)
	return nil
}

func (m *MemoryLocation) ClearFragment() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared++
	return nil
}

// Navigated returns the URLs passed to Navigate.
func (m *MemoryLocation) Navigated() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.navigated...)
}

// Cleared returns how many times the fragment was cleared.
func (m *MemoryLocation) Cleared() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cleared
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
