package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/sonorous/internal/formatter"
	"github.com/desertthunder/sonorous/internal/models"
	"github.com/desertthunder/sonorous/internal/session"
	"github.com/desertthunder/sonorous/internal/shared"
	"github.com/urfave/cli/v3"
)

// History fetches the recently played tracks and prints or exports them.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	ctrl, err := r.resume(ctx, false)
	if err != nil {
		return err
	}
	tracks := ctrl.State().Tracks

	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	data, err := formatter.ExportHistory(tracks, format)
	if err != nil {
		return err
	}

	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteFile(path, data); err != nil {
			return err
		}
		r.logger.Info("history exported", "path", path, "format", format, "tracks", len(tracks))
		return r.writePlain("✓ Exported %d tracks to %s\n", len(tracks), path)
	}
	return r.writePlain("%s", data)
}

// Genres lists the story genres, marking the default.
func (r *Runner) Genres(ctx context.Context, cmd *cli.Command) error {
	for _, g := range models.Genres() {
		if g == models.DefaultGenre {
			r.writePlain("%s (default)\n", g)
			continue
		}
		r.writePlain("%s\n", g)
	}
	return nil
}

// Story fetches the history and asks the generator for a story in the chosen genre.
func (r *Runner) Story(ctx context.Context, cmd *cli.Command) error {
	genre, err := models.ParseGenre(cmd.String("genre"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	ctrl, err := r.resume(ctx, true)
	if err != nil {
		return err
	}
	if err := ctrl.SelectGenre(ctx, genre); err != nil {
		return err
	}

	state := ctrl.State()
	r.logger.Info("weaving story", "genre", genre, "tracks", len(state.Tracks))

	text, err := ctrl.Generate(ctx)
	if errors.Is(err, shared.ErrNoTracks) {
		return fmt.Errorf("%w: play some music on Spotify first", err)
	} else if err != nil {
		return err
	}

	doc := formatter.StoryToMarkdown(text, genre)
	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteFile(path, doc); err != nil {
			return err
		}
		return r.writePlain("✓ Story saved to %s\n", path)
	}
	return r.writePlain("%s", doc)
}

// resume loads the stored session and its history. An expired token is cleared by the
// session before the error is returned.
func (r *Runner) resume(ctx context.Context, stories bool) (*session.Controller, error) {
	store, creds, err := r.loadCredentials()
	if err != nil {
		return nil, err
	}

	ctrl, err := r.controller(ctx, controllerOpts{store: store, stories: stories})
	if err != nil {
		return nil, err
	}

	switch err := ctrl.Resume(ctx, creds); {
	case errors.Is(err, shared.ErrNotAuthenticated):
		return nil, fmt.Errorf("%w: run 'sonorous login' first", err)
	case errors.Is(err, shared.ErrExpiredToken):
		return nil, fmt.Errorf("%w: run 'sonorous login' again", err)
	case err != nil:
		return nil, err
	}
	return ctrl, nil
}
