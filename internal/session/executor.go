package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sonorous/internal/auth"
	"github.com/desertthunder/sonorous/internal/models"
	"github.com/desertthunder/sonorous/internal/shared"
)

// CredentialWriter persists credential changes.
type CredentialWriter interface {
	SaveClientID(id string) error
	SaveToken(token string) error
	ClearToken() error
}

// HistoryFetcher loads the recent plays for a token.
type HistoryFetcher interface {
	FetchRecentlyPlayed(ctx context.Context, token string) ([]models.Track, error)
}

// StoryWriter writes a story for tracks given most recent first.
type StoryWriter interface {
	Generate(ctx context.Context, tracks []models.Track, genre models.Genre) (string, error)
}

// ExecutorOpts contains the collaborators of an [Executor].
type ExecutorOpts struct {
	Credentials CredentialWriter
	Location    auth.Location
	History     HistoryFetcher
	Stories     StoryWriter
	Logger      *log.Logger
}

// Executor performs effects. It is safe for concurrent use when its collaborators are.
type Executor struct {
	creds    CredentialWriter
	location auth.Location
	history  HistoryFetcher
	stories  StoryWriter
	logger   *log.Logger
}

// NewExecutor creates an [Executor]. Collaborators left nil make the matching effects fail
// with [shared.ErrServiceUnavailable].
func NewExecutor(opts ExecutorOpts) *Executor {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Executor{
		creds:    opts.Credentials,
		location: opts.Location,
		history:  opts.History,
		stories:  opts.Stories,
		logger:   opts.Logger,
	}
}

// Run performs eff and returns the follow-up event, or nil when there is none.
func (x *Executor) Run(ctx context.Context, eff Effect) Event {
	logger := shared.WithLogger(x.logger, "effect", eff.Name(), "request", shared.GenerateID())
	start := time.Now()

	switch eff := eff.(type) {
	case SaveClientID:
		if x.creds == nil {
			return x.unavailable(logger, eff)
		}
		return x.failed(logger, eff, x.creds.SaveClientID(eff.ID))

	case SaveToken:
		if x.creds == nil {
			return x.unavailable(logger, eff)
		}
		return x.failed(logger, eff, x.creds.SaveToken(eff.Token))

	case ClearToken:
		if x.creds == nil {
			return x.unavailable(logger, eff)
		}
		return x.failed(logger, eff, x.creds.ClearToken())

	case ClearFragment:
		if x.location == nil {
			return nil
		}
		return x.failed(logger, eff, x.location.ClearFragment())

	case Navigate:
		if x.location == nil {
			return x.unavailable(logger, eff)
		}
		logger.Info("opening authorization page")
		return x.failed(logger, eff, x.location.Navigate(ctx, eff.URL))

	case FetchHistory:
		if x.history == nil {
			return HistoryLoaded{Epoch: eff.Epoch, Err: fmt.Errorf("%w: no history service", shared.ErrServiceUnavailable)}
		}
		tracks, err := x.history.FetchRecentlyPlayed(ctx, eff.Token)
		switch {
		case errors.Is(err, shared.ErrExpiredToken):
			logger.Warn("access token rejected, logging out", "error", err)
		case err != nil:
			logger.Error("failed to fetch listening history", "error", err)
		default:
			logger.Info("listening history loaded", "tracks", len(tracks), "duration", time.Since(start))
		}
		return HistoryLoaded{Epoch: eff.Epoch, Tracks: tracks, Err: err}

	case GenerateStory:
		if x.stories == nil {
			return StoryGenerated{Epoch: eff.Epoch, Err: fmt.Errorf("%w: no story generator", shared.ErrServiceUnavailable)}
		}
		logger.Info("generating story", "genre", eff.Genre, "tracks", len(eff.Tracks))
		text, err := x.stories.Generate(ctx, eff.Tracks, eff.Genre)
		if err == nil {
			logger.Info("story generated", "chars", len(text), "duration", time.Since(start))
		}
		return StoryGenerated{Epoch: eff.Epoch, Text: text, Err: err}
	}

	logger.Warn("unknown effect")
	return nil
}

func (x *Executor) failed(logger *log.Logger, eff Effect, err error) Event {
	if err == nil {
		logger.Debug("effect done")
		return nil
	}
	logger.Error("effect failed", "error", err)
	return EffectFailed{Effect: eff, Err: err}
}

func (x *Executor) unavailable(logger *log.Logger, eff Effect) Event {
	return x.failed(logger, eff, shared.ErrServiceUnavailable)
}
