package models

import (
	"fmt"
	"slices"
	"strings"
)

// Track is a single play event mapped from the streaming service.
//
// ID combined with PlayedAt is unique per play.
type Track struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Artist     string `json:"artist"`
	AlbumArt   string `json:"album_art"`
	PlayedAt   string `json:"played_at"`             // ISO 8601
	PreviewURL string `json:"preview_url,omitempty"` // optional
}

// Key identifies the play event, used for list keys and deduplicated rendering.
func (t Track) Key() string {
	return t.ID + "@" + t.PlayedAt
}

// Genre is a narrative style for the generated story.
type Genre string

const (
	Romantic  Genre = "Romantic"
	Tragic    Genre = "Tragic"
	Cyberpunk Genre = "Cyberpunk"
	Fantasy   Genre = "Fantasy"
	Noir      Genre = "Noir"
	Adventure Genre = "Adventure"
	Horror    Genre = "Horror"
)

// DefaultGenre is selected until the user picks another.
const DefaultGenre = Fantasy

// Genres returns every genre in display order.
func Genres() []Genre {
	return []Genre{Romantic, Tragic, Cyberpunk, Fantasy, Noir, Adventure, Horror}
}

// ParseGenre matches name against the known genres, ignoring case and surrounding space.
func ParseGenre(name string) (Genre, error) {
	name = strings.TrimSpace(name)
	for _, g := range Genres() {
		if strings.EqualFold(string(g), name) {
			return g, nil
		}
	}
	return "", fmt.Errorf("unknown genre %q", name)
}

// Valid reports whether g is one of [Genres].
func (g Genre) Valid() bool {
	return slices.Contains(Genres(), g)
}

func (g Genre) String() string { return string(g) }

// Credentials are the two persisted strings. Empty means absent.
type Credentials struct {
	ClientID string
	Token    string
}

// LoggedIn reports whether an access token is present.
func (c Credentials) LoggedIn() bool { return c.Token != "" }

// KeyValueStore persists string values under fixed keys.
//
// Get returns "" with a nil error when the key is absent.
type KeyValueStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// CompletionRequest is a single text-generation call.
type CompletionRequest struct {
	Model       string
	Prompt      string
	Temperature float32
	TopP        float32
	TopK        float32
}
