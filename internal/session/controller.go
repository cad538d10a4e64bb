package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sonorous/internal/auth"
	"github.com/desertthunder/sonorous/internal/models"
	"github.com/desertthunder/sonorous/internal/shared"
)

// Controller drives [Update] synchronously: each dispatch runs its effects, and the effects of
// their follow-up events, to completion before returning.
type Controller struct {
	mu     sync.Mutex
	state  State
	exec   *Executor
	logger *log.Logger

	generating atomic.Bool
}

// NewController starts from [NewState].
func NewController(exec *Executor, logger *log.Logger) *Controller {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Controller{state: NewState(), exec: exec, logger: logger}
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dispatch applies ev and every follow-up event. Failed effects are returned joined.
func (c *Controller) Dispatch(ctx context.Context, ev Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	queue := []Event{ev}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		before := c.state.Phase()
		var effects []Effect
		c.state, effects = Update(c.state, next)
		if after := c.state.Phase(); after != before {
			c.logger.Debug("session transition", "from", before, "to", after)
		}

		for _, eff := range effects {
			follow := c.exec.Run(ctx, eff)
			if follow == nil {
				continue
			}
			if failed, ok := follow.(EffectFailed); ok {
				errs = append(errs, fmt.Errorf("%s: %w", failed.Effect.Name(), failed.Err))
			}
			queue = append(queue, follow)
		}
	}
	return errors.Join(errs...)
}

// Start loads credentials and consumes fragment, fetching history when logged in.
func (c *Controller) Start(ctx context.Context, creds models.Credentials, fragment string) error {
	return c.Dispatch(ctx, Started{Credentials: creds, Fragment: fragment})
}

// Restore adopts stored credentials without loading history. It is for one-shot commands that
// only change credentials.
func (c *Controller) Restore(creds models.Credentials) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state, _ = Update(c.state, Started{Credentials: models.Credentials{ClientID: creds.ClientID}})
	c.state.Token = creds.Token
}

// Resume starts from stored credentials and reports how the initial history fetch ended.
// Without a token it returns [shared.ErrNotAuthenticated].
func (c *Controller) Resume(ctx context.Context, creds models.Credentials) error {
	if err := c.Start(ctx, creds, ""); err != nil {
		return err
	}
	if creds.Token == "" {
		return shared.ErrNotAuthenticated
	}
	return c.historyOutcome()
}

// SubmitClientID stores id and closes the settings view.
func (c *Controller) SubmitClientID(ctx context.Context, id string) error {
	return c.Dispatch(ctx, ClientIDSubmitted{ID: id})
}

// Login navigates to the authorization page. Without a client id nothing is opened and
// [shared.ErrMissingClientID] is returned.
func (c *Controller) Login(ctx context.Context, redirectURI, authURL string) error {
	if c.State().ClientID == "" {
		_ = c.Dispatch(ctx, LoginRequested{RedirectURI: redirectURI, AuthURL: authURL})
		return shared.ErrMissingClientID
	}
	return c.Dispatch(ctx, LoginRequested{RedirectURI: redirectURI, AuthURL: authURL})
}

// HandleCallback consumes the fragment of an authorization redirect.
func (c *Controller) HandleCallback(ctx context.Context, fragment string) error {
	if _, ok := auth.ExtractToken(fragment); !ok {
		_ = c.Dispatch(ctx, CallbackReceived{Fragment: fragment})
		if code := auth.CallbackError(fragment); code != "" {
			return fmt.Errorf("%w: %s", shared.ErrNotAuthenticated, code)
		}
		return fmt.Errorf("%w: no access token in callback", shared.ErrNotAuthenticated)
	}
	if err := c.Dispatch(ctx, CallbackReceived{Fragment: fragment}); err != nil {
		return err
	}
	return c.historyOutcome()
}

// Refresh reloads the history. A rejected token logs the session out and returns
// [shared.ErrExpiredToken].
func (c *Controller) Refresh(ctx context.Context) error {
	if !c.State().LoggedIn() {
		return shared.ErrNotAuthenticated
	}
	if err := c.Dispatch(ctx, RefreshRequested{}); err != nil {
		return err
	}
	return c.historyOutcome()
}

// historyOutcome reports how the last synchronous fetch ended.
func (c *Controller) historyOutcome() error {
	s := c.State()
	switch {
	case !s.LoggedIn():
		return shared.ErrExpiredToken
	case s.FetchErr != nil:
		return s.FetchErr
	default:
		return nil
	}
}

// SelectGenre changes the genre for the next story.
func (c *Controller) SelectGenre(ctx context.Context, g models.Genre) error {
	if !g.Valid() {
		return fmt.Errorf("%w: unknown genre %q", shared.ErrInvalidArgument, g)
	}
	return c.Dispatch(ctx, GenreSelected{Genre: g})
}

// Generate writes a story from the loaded tracks. A call made while another is running
// returns [shared.ErrGenerationInFlight] without reaching the generator.
func (c *Controller) Generate(ctx context.Context) (string, error) {
	if !c.generating.CompareAndSwap(false, true) {
		return "", shared.ErrGenerationInFlight
	}
	defer c.generating.Store(false)

	s := c.State()
	switch {
	case !s.LoggedIn():
		return "", shared.ErrNotAuthenticated
	case s.Generation == InProgress:
		return "", shared.ErrGenerationInFlight
	case len(s.Tracks) == 0:
		return "", shared.ErrNoTracks
	}

	if err := c.Dispatch(ctx, GenerateRequested{}); err != nil {
		return "", err
	}

	s = c.State()
	if s.Generation == Errored {
		return "", s.StoryErr
	}
	return s.Story, nil
}

// Logout clears the token and drops tracks and story. The client id is kept.
func (c *Controller) Logout(ctx context.Context) error {
	if !c.State().LoggedIn() {
		return shared.ErrNotAuthenticated
	}
	return c.Dispatch(ctx, LogoutRequested{})
}
