package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/sonorous/internal/server"
	"github.com/desertthunder/sonorous/internal/shared"
	"github.com/desertthunder/sonorous/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	config := r.cfg()

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLogLevel(config.Log.Level))
	r.SetLogger(fileLogger)

	store, creds, err := r.loadCredentials()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loopback := server.NewLoopback(server.LoopbackOpts{
		RedirectURI: config.Spotify.RedirectURI,
		Timeout:     config.Server.CallbackTimeout,
		Logger:      r.logger,
	})

	opts := controllerOpts{store: store, location: loopback, stories: true}
	exec, err := r.executor(ctx, opts)
	if err != nil {
		r.logger.Warn("story generation disabled", "error", err)
		opts.stories = false
		if exec, err = r.executor(ctx, opts); err != nil {
			return err
		}
	}

	model := ui.NewModel(ctx, ui.Options{
		Executor:    exec,
		Credentials: creds,
		RedirectURI: config.Spotify.RedirectURI,
		AuthURL:     config.Spotify.AuthURL,
		Callbacks:   loopback.Callbacks(),
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
