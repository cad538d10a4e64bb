package repositories

import (
	"fmt"

	"github.com/desertthunder/sonorous/internal/models"
)

// Fixed storage keys for the persisted credentials.
const (
	ClientIDKey = "sonorous_spotify_client_id"
	TokenKey    = "sonorous_spotify_token"
)

// CredentialStore reads and writes [models.Credentials] through a [models.KeyValueStore].
type CredentialStore struct {
	kv models.KeyValueStore
}

// NewCredentialStore wraps kv.
func NewCredentialStore(kv models.KeyValueStore) *CredentialStore {
	return &CredentialStore{kv: kv}
}

// Load reads both credentials. Absent values come back as "".
func (s *CredentialStore) Load() (models.Credentials, error) {
	clientID, err := s.kv.Get(ClientIDKey)
	if err != nil {
		return models.Credentials{}, fmt.Errorf("failed to load client id: %w", err)
	}

	token, err := s.kv.Get(TokenKey)
	if err != nil {
		return models.Credentials{}, fmt.Errorf("failed to load token: %w", err)
	}

	return models.Credentials{ClientID: clientID, Token: token}, nil
}

// SaveClientID persists id as given; no format validation is done.
func (s *CredentialStore) SaveClientID(id string) error {
	return s.kv.Set(ClientIDKey, id)
}

func (s *CredentialStore) SaveToken(token string) error {
	return s.kv.Set(TokenKey, token)
}

// ClearToken removes the access token. The client id is left in place.
func (s *CredentialStore) ClearToken() error {
	return s.kv.Delete(TokenKey)
}
