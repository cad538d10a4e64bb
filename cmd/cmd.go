// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/sonorous/internal/formatter"
	"github.com/desertthunder/sonorous/internal/models"
	"github.com/urfave/cli/v3"
)

// setupCommand creates the config file and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml and initialize the database",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "Roll back the most recent migration instead",
			},
		},
		Action: r.Setup,
	}
}

// settingsCommand shows or updates the stored Spotify client id.
func settingsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Show or update the Spotify client id",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "client-id",
				Usage: "Spotify application client id to store",
			},
			&cli.BoolFlag{
				Name:  "show",
				Usage: "Print the current settings",
			},
		},
		Action: r.Settings,
	}
}

// loginCommand runs the implicit grant in the browser.
func loginCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Connect your Spotify account",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "callback-url",
				Usage: "Complete login with the URL Spotify redirected to",
			},
			&cli.BoolFlag{
				Name:  "manual",
				Usage: "Print the authorization URL and read the redirect URL from stdin",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "How long to wait for the browser callback (defaults to server.callback_timeout)",
			},
		},
		Action: r.Login,
	}
}

func logoutCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Forget the Spotify access token",
		Action: r.Logout,
	}
}

// historyCommand prints the recently played tracks.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "history",
		Aliases: []string{"recent"},
		Usage:   "List your recently played tracks",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format (text, csv, markdown)",
				Value:   string(formatter.Text),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the export to a file instead of stdout",
			},
		},
		Action: r.History,
	}
}

func genresCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "genres",
		Usage:  "List story genres",
		Action: r.Genres,
	}
}

// storyCommand writes a story from the recent history.
func storyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "story",
		Usage: "Weave your recent listening into a story",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "genre",
				Aliases: []string{"g"},
				Usage:   "Story genre (see 'sonorous genres')",
				Value:   string(models.DefaultGenre),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the story as Markdown to a file",
			},
		},
		Action: r.Story,
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive terminal UI",
		Action:  r.TUI,
	}
}
