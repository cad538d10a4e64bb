package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/sonorous/internal/shared"
	tu "github.com/desertthunder/sonorous/internal/testing"
)

const recentlyPlayedJSON = `{
  "items": [
    {
      "track": {
        "id": "t2",
        "name": "Second Song",
        "artists": [{"id": "a2", "name": "Band Two"}, {"id": "a3", "name": "Guest"}],
        "album": {"id": "al2", "name": "Album", "images": [{"url": "https://img/large", "height": 640, "width": 640}, {"url": "https://img/small"}]},
        "preview_url": "https://preview/t2"
      },
      "played_at": "2024-05-01T10:05:00.000Z"
    },
    {
      "track": {
        "id": "t1",
        "name": "First Song",
        "artists": [],
        "album": {"id": "al1", "name": "Bare", "images": []},
        "preview_url": null
      },
      "played_at": "2024-05-01T10:00:00.000Z"
    }
  ],
  "limit": 20,
  "next": null
}`

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		srv := NewSpotifyService("", nil)
		if srv.apiURL != DefaultSpotifyAPIURL {
			t.Errorf("expected default API URL, got %s", srv.apiURL)
		}
		if srv.httpClient != http.DefaultClient {
			t.Error("expected default HTTP client")
		}
		if srv.Name() != "Spotify" {
			t.Errorf("expected service name 'Spotify', got %s", srv.Name())
		}

		trimmed := NewSpotifyService("http://example.com/v1/", nil)
		if trimmed.apiURL != "http://example.com/v1" {
			t.Errorf("expected trailing slash trimmed, got %s", trimmed.apiURL)
		}
	})

	t.Run("FetchRecentlyPlayed", func(t *testing.T) {
		t.Run("maps tracks", func(t *testing.T) {
			var gotPath, gotQuery, gotAuth string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotQuery = r.URL.RawQuery
				gotAuth = r.Header.Get("Authorization")
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(recentlyPlayedJSON))
			}))
			defer server.Close()

			srv := NewSpotifyService(server.URL, server.Client())
			tracks, err := srv.FetchRecentlyPlayed(context.Background(), "tok")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if gotPath != "/me/player/recently-played" {
				t.Errorf("unexpected path %s", gotPath)
			}
			if gotQuery != "limit=20" {
				t.Errorf("expected limit=20, got %s", gotQuery)
			}
			if gotAuth != "Bearer tok" {
				t.Errorf("expected bearer header, got %q", gotAuth)
			}

			if len(tracks) != 2 {
				t.Fatalf("expected 2 tracks, got %d", len(tracks))
			}

			first := tracks[0]
			if first.ID != "t2" || first.Name != "Second Song" {
				t.Errorf("expected most recent play first, got %+v", first)
			}
			if first.Artist != "Band Two" {
				t.Errorf("expected first artist, got %q", first.Artist)
			}
			if first.AlbumArt != "https://img/large" {
				t.Errorf("expected first album image, got %q", first.AlbumArt)
			}
			if first.PlayedAt != "2024-05-01T10:05:00.000Z" {
				t.Errorf("unexpected played_at %q", first.PlayedAt)
			}
			if first.PreviewURL != "https://preview/t2" {
				t.Errorf("unexpected preview url %q", first.PreviewURL)
			}

			second := tracks[1]
			if second.Artist != "" {
				t.Errorf("expected empty artist when none listed, got %q", second.Artist)
			}
			if second.AlbumArt != "" {
				t.Errorf("expected empty album art when no images, got %q", second.AlbumArt)
			}
			if second.PreviewURL != "" {
				t.Errorf("expected empty preview url, got %q", second.PreviewURL)
			}
		})

		t.Run("empty history", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"items": []}`))
			}))
			defer server.Close()

			tracks, err := NewSpotifyService(server.URL, server.Client()).FetchRecentlyPlayed(context.Background(), "tok")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tracks == nil || len(tracks) != 0 {
				t.Errorf("expected empty non-nil slice, got %#v", tracks)
			}
		})

		tests := []struct {
			name    string
			status  int
			body    string
			wantErr error
		}{
			{"unauthorized", http.StatusUnauthorized, `{"error":{"status":401,"message":"The access token expired"}}`, shared.ErrExpiredToken},
			{"server error", http.StatusInternalServerError, `oops`, shared.ErrFetchFailed},
			{"forbidden", http.StatusForbidden, `{"error":{"status":403,"message":"Insufficient client scope"}}`, shared.ErrFetchFailed},
			{"bad json", http.StatusOK, `{"items": [`, shared.ErrFetchFailed},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
					w.Write([]byte(tt.body))
				}))
				defer server.Close()

				_, err := NewSpotifyService(server.URL, server.Client()).FetchRecentlyPlayed(context.Background(), "tok")
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
			})
		}

		t.Run("expired token is not a fetch failure", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			}))
			defer server.Close()

			_, err := NewSpotifyService(server.URL, server.Client()).FetchRecentlyPlayed(context.Background(), "tok")
			if errors.Is(err, shared.ErrFetchFailed) {
				t.Errorf("expected 401 to be distinguishable from fetch failure, got %v", err)
			}
		})

		t.Run("error message from body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error":{"status":403,"message":"Insufficient client scope"}}`))
			}))
			defer server.Close()

			_, err := NewSpotifyService(server.URL, server.Client()).FetchRecentlyPlayed(context.Background(), "tok")
			if err == nil || err.Error() != "failed to fetch listening history: status 403: Insufficient client scope" {
				t.Errorf("unexpected error message: %v", err)
			}
		})

		t.Run("transport failure", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}

			_, err := NewSpotifyService("http://spotify.invalid", client).FetchRecentlyPlayed(context.Background(), "tok")
			if !errors.Is(err, shared.ErrFetchFailed) {
				t.Errorf("expected ErrFetchFailed, got %v", err)
			}
		})

		t.Run("cancelled context", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(recentlyPlayedJSON))
			}))
			defer server.Close()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := NewSpotifyService(server.URL, server.Client()).FetchRecentlyPlayed(ctx, "tok")
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled in chain, got %v", err)
			}
		})
	})
}
