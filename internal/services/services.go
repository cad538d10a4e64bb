package services

import (
	"context"

	"github.com/desertthunder/sonorous/internal/models"
)

// HistoryService fetches the signed-in user's recent plays, most recent first.
type HistoryService interface {
	FetchRecentlyPlayed(ctx context.Context, token string) ([]models.Track, error)
	Name() string
}

// CompletionService turns a prompt into generated text.
type CompletionService interface {
	Complete(ctx context.Context, req models.CompletionRequest) (string, error)
	Name() string
}

var (
	_ HistoryService    = (*SpotifyService)(nil)
	_ CompletionService = (*GeminiService)(nil)
)
