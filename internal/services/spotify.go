// Spotify Web API response types based on https://developer.spotify.com/documentation/web-api/reference/get-recently-played
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/desertthunder/sonorous/internal/models"
	"github.com/desertthunder/sonorous/internal/shared"
	"golang.org/x/oauth2"
)

const (
	// DefaultSpotifyAPIURL is the Web API base.
	DefaultSpotifyAPIURL = "https://api.spotify.com/v1"

	recentlyPlayedLimit = 20
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a simplified artist object.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyAlbum represents a simplified album object.
type SpotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []SpotifyImage `json:"images"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	PreviewURL *string         `json:"preview_url"`
}

// SpotifyPlayHistory is one item of the recently played response.
type SpotifyPlayHistory struct {
	Track    SpotifyTrack `json:"track"`
	PlayedAt string       `json:"played_at"`
}

// SpotifyRecentlyPlayed is the cursor-paginated recently played response. Only the first
// page is ever read.
type SpotifyRecentlyPlayed struct {
	Items []SpotifyPlayHistory `json:"items"`
	Limit int                  `json:"limit"`
	Next  *string              `json:"next"`
}

type spotifyErrorBody struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// SpotifyService reads listening history from the Spotify Web API.
type SpotifyService struct {
	apiURL     string
	httpClient *http.Client
}

// NewSpotifyService creates a service against apiURL ([DefaultSpotifyAPIURL] when empty).
func NewSpotifyService(apiURL string, httpClient *http.Client) *SpotifyService {
	if apiURL == "" {
		apiURL = DefaultSpotifyAPIURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &SpotifyService{apiURL: strings.TrimRight(apiURL, "/"), httpClient: httpClient}
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// FetchRecentlyPlayed returns up to 20 recent plays, most recent first.
//
// A 401 returns [shared.ErrExpiredToken]. Every other failure returns [shared.ErrFetchFailed].
func (s *SpotifyService) FetchRecentlyPlayed(ctx context.Context, token string) ([]models.Track, error) {
	var page SpotifyRecentlyPlayed
	endpoint := fmt.Sprintf("/me/player/recently-played?limit=%d", recentlyPlayedLimit)
	if err := s.doRequest(ctx, token, http.MethodGet, endpoint, &page); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(page.Items))
	for _, item := range page.Items {
		tracks = append(tracks, toTrack(item))
	}
	return tracks, nil
}

// doRequest performs an authenticated HTTP request to the Spotify API.
func (s *SpotifyService) doRequest(ctx context.Context, token, method, endpoint string, result any) error {
	req, err := http.NewRequestWithContext(ctx, method, s.apiURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %w", shared.ErrFetchFailed, err)
	}

	(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %w", shared.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s", shared.ErrExpiredToken, errorMessage(resp.Body))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d: %s", shared.ErrFetchFailed, resp.StatusCode, errorMessage(resp.Body))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %w", shared.ErrFetchFailed, err)
		}
	}

	return nil
}

// errorMessage reads Spotify's {"error": {...}} body, falling back to the raw text.
func errorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4<<10))
	if err != nil || len(data) == 0 {
		return "no response body"
	}

	var parsed spotifyErrorBody
	if err := json.Unmarshal(data, &parsed); err == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return strings.TrimSpace(string(data))
}

func toTrack(item SpotifyPlayHistory) models.Track {
	track := models.Track{
		ID:       item.Track.ID,
		Name:     item.Track.Name,
		PlayedAt: item.PlayedAt,
	}
	if len(item.Track.Artists) > 0 {
		track.Artist = item.Track.Artists[0].Name
	}
	if len(item.Track.Album.Images) > 0 {
		track.AlbumArt = item.Track.Album.Images[0].URL
	}
	if item.Track.PreviewURL != nil {
		track.PreviewURL = *item.Track.PreviewURL
	}
	return track
}
