package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/sonorous/internal/auth"
	"github.com/desertthunder/sonorous/internal/models"
	"github.com/desertthunder/sonorous/internal/server"
	"github.com/desertthunder/sonorous/internal/session"
	"github.com/desertthunder/sonorous/internal/shared"
	"github.com/urfave/cli/v3"
)

// Settings stores a new client id with --client-id, otherwise prints the current settings.
func (r *Runner) Settings(ctx context.Context, cmd *cli.Command) error {
	store, creds, err := r.loadCredentials()
	if err != nil {
		return err
	}

	if cmd.IsSet("client-id") {
		ctrl, err := r.controller(ctx, controllerOpts{store: store})
		if err != nil {
			return err
		}
		if err := ctrl.Start(ctx, creds, ""); err != nil {
			return err
		}

		id := strings.TrimSpace(cmd.String("client-id"))
		if err := ctrl.SubmitClientID(ctx, id); err != nil {
			return fmt.Errorf("failed to save client id: %w", err)
		}
		r.logger.Info("client id saved")
		r.writePlain("✓ Client ID saved\n")
		if !cmd.Bool("show") {
			return nil
		}
		creds.ClientID = id
	}

	config := r.cfg()
	r.writePlainHeader("Settings")
	r.writePlain("Client ID:    %s\n", valueOr(creds.ClientID, "(not set)"))
	r.writePlain("Logged in:    %s\n", yesNo(creds.LoggedIn()))
	r.writePlain("Redirect URI: %s\n", config.Spotify.RedirectURI)
	r.writePlain("Gemini model: %s\n", config.Gemini.Model)
	r.writePlain("Gemini key:   %s\n", yesNo(config.Gemini.APIKey != ""))
	if r.envClient != "" {
		r.writePlain("\nClient ID taken from %s\n", shared.EnvClientID)
	}
	return nil
}

// Login runs the implicit grant. By default it opens the browser and waits for the loopback
// callback; --manual and --callback-url cover machines without a local browser.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	store, creds, err := r.loadCredentials()
	if err != nil {
		return err
	}
	if creds.ClientID == "" {
		return fmt.Errorf("%w: run 'sonorous settings --client-id <id>' first", shared.ErrMissingClientID)
	}

	if callbackURL := cmd.String("callback-url"); callbackURL != "" {
		ctrl, err := r.controller(ctx, controllerOpts{store: store})
		if err != nil {
			return err
		}
		if err := ctrl.Start(ctx, models.Credentials{ClientID: creds.ClientID}, ""); err != nil {
			return err
		}
		return r.finishLogin(ctx, ctrl, auth.FragmentOf(callbackURL))
	}

	config := r.cfg()
	timeout := cmd.Duration("timeout")
	if timeout <= 0 {
		timeout = config.Server.CallbackTimeout
	}

	var (
		location  auth.Location
		callbacks <-chan server.Callback
	)
	switch {
	case r.location != nil:
		location = r.location
	case cmd.Bool("manual"):
		location = &auth.BrowserLocation{Open: func(url string) error {
			return r.writePlain("Open this URL in your browser:\n%s\n\n", url)
		}}
	default:
		loopback := server.NewLoopback(server.LoopbackOpts{
			RedirectURI: config.Spotify.RedirectURI,
			Timeout:     timeout,
			Logger:      r.logger,
			OnFailed: func(url string, err error) {
				r.logger.Warn("failed to open browser automatically", "error", err)
				r.writePlainln("⚠ Could not open browser automatically.")
				r.writePlain("Please open this URL in your browser:\n%s\n\n", url)
			},
		})
		location = loopback
		callbacks = loopback.Callbacks()
	}

	ctrl, err := r.controller(ctx, controllerOpts{store: store, location: location})
	if err != nil {
		return err
	}
	if err := ctrl.Start(ctx, models.Credentials{ClientID: creds.ClientID}, ""); err != nil {
		return err
	}

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := ctrl.Login(ctx, config.Spotify.RedirectURI, config.Spotify.AuthURL); err != nil {
		return fmt.Errorf("failed to start login: %w", err)
	}

	if callbacks == nil {
		fragment, err := r.readCallback()
		if err != nil {
			return err
		}
		return r.finishLogin(ctx, ctrl, fragment)
	}

	r.writePlain("→ Waiting for authorization (%s timeout)...\n", timeout.Round(time.Second))
	select {
	case cb := <-callbacks:
		if cb.Err != nil {
			return fmt.Errorf("authorization failed: %w", cb.Err)
		}
		return r.finishLogin(ctx, ctrl, cb.Fragment)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// readCallback asks for the URL the browser was redirected to and returns its fragment.
func (r *Runner) readCallback() (string, error) {
	r.writePlain("Paste the URL you were redirected to: ")

	line, err := bufio.NewReader(r.input).ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		if err != nil {
			return "", fmt.Errorf("%w: no callback URL read: %v", shared.ErrMissingArgument, err)
		}
		return "", fmt.Errorf("%w: empty callback URL", shared.ErrMissingArgument)
	}
	return auth.FragmentOf(line), nil
}

func (r *Runner) finishLogin(ctx context.Context, ctrl *session.Controller, fragment string) error {
	if err := ctrl.HandleCallback(ctx, fragment); err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	r.logger.Info("spotify login complete")
	r.writePlainln("✓ Authorization successful")
	r.writePlain("Found %d recently played tracks.\n", len(ctrl.State().Tracks))
	r.writePlain("You can now use: sonorous story --genre %s\n", ctrl.State().Genre)
	return nil
}

// Logout clears the stored token. The client id is kept.
func (r *Runner) Logout(ctx context.Context, cmd *cli.Command) error {
	store, creds, err := r.loadCredentials()
	if err != nil {
		return err
	}

	ctrl, err := r.controller(ctx, controllerOpts{store: store})
	if err != nil {
		return err
	}
	ctrl.Restore(creds)

	if err := ctrl.Logout(ctx); err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			return r.writePlain("Not logged in.\n")
		}
		return fmt.Errorf("failed to clear token: %w", err)
	}
	r.logger.Info("logged out")
	return r.writePlain("✓ Logged out\n")
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
