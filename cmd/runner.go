package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sonorous/internal/auth"
	"github.com/desertthunder/sonorous/internal/models"
	"github.com/desertthunder/sonorous/internal/repositories"
	"github.com/desertthunder/sonorous/internal/services"
	"github.com/desertthunder/sonorous/internal/session"
	"github.com/desertthunder/sonorous/internal/shared"
	"github.com/desertthunder/sonorous/internal/story"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	envClient  string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	input      io.Reader
	db         *sql.DB
	store      models.KeyValueStore
	history    services.HistoryService
	completer  services.CompletionService
	location   auth.Location
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Store, History, Completer and Location are built from the config when left nil.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
	Store      models.KeyValueStore
	History    services.HistoryService
	Completer  services.CompletionService
	Location   auth.Location
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
		store:      opts.Store,
		history:    opts.History,
		completer:  opts.Completer,
		location:   opts.Location,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, settingsCommand, loginCommand, logoutCommand, historyCommand, genresCommand, storyCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the config named by --config, applies environment overrides and sets the log level.
//
// A missing config file falls back to the embedded defaults.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}

	if r.config == nil {
		r.config = shared.DefaultConfig()
		if _, err := os.Stat(r.configPath); err == nil {
			config, err := shared.LoadConfig(r.configPath)
			if err != nil {
				return ctx, err
			}
			r.config = config
		} else {
			r.logger.Debug("config file not found, using defaults", "path", r.configPath)
		}
	}

	r.envClient = r.config.ApplyEnv(os.LookupEnv)
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(r.config.Log.Level))

	if cmd.Bool("ephemeral") && r.store == nil {
		r.logger.Debug("using in-memory credential store")
		r.store = repositories.NewMemoryStore()
	}
	return ctx, nil
}

// After closes the database opened by a command, if any.
func (r *Runner) After(ctx context.Context, cmd *cli.Command) error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// SetLogger replaces the logger used by commands and the services they build.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) cfg() *shared.Config {
	if r.config == nil {
		r.config = shared.DefaultConfig()
	}
	return r.config
}

// credentials opens the credential store, creating the database on first use.
func (r *Runner) credentials() (*repositories.CredentialStore, error) {
	if r.store == nil {
		db, err := shared.OpenDatabase(r.cfg().Database)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		r.db = db
		r.store = repositories.NewSettingsRepository(db)
	}
	return repositories.NewCredentialStore(r.store), nil
}

// loadCredentials reads stored credentials. A client id from the environment wins over the stored one.
func (r *Runner) loadCredentials() (*repositories.CredentialStore, models.Credentials, error) {
	store, err := r.credentials()
	if err != nil {
		return nil, models.Credentials{}, err
	}

	creds, err := store.Load()
	if err != nil {
		return nil, models.Credentials{}, err
	}
	if r.envClient != "" {
		creds.ClientID = r.envClient
	}
	return store, creds, nil
}

func (r *Runner) historyService() services.HistoryService {
	if r.history == nil {
		r.history = services.NewSpotifyService(r.cfg().Spotify.APIURL, r.httpClient)
	}
	return r.history
}

func (r *Runner) completionService(ctx context.Context) (services.CompletionService, error) {
	if r.completer != nil {
		return r.completer, nil
	}

	gemini := r.cfg().Gemini
	svc, err := services.NewGeminiService(ctx, services.GeminiOpts{
		APIKey:     gemini.APIKey,
		Model:      gemini.Model,
		BaseURL:    gemini.BaseURL,
		HTTPClient: r.httpClient,
	})
	if errors.Is(err, shared.ErrMissingAPIKey) {
		return nil, fmt.Errorf("%w: set gemini.api_key or %s", err, shared.EnvGeminiAPIKey)
	} else if err != nil {
		return nil, err
	}
	r.completer = svc
	return svc, nil
}

// controllerOpts selects the optional collaborators of a session controller.
type controllerOpts struct {
	store    *repositories.CredentialStore
	location auth.Location
	stories  bool
}

// executor wires the session executor. The story generator is only built when requested so
// commands that never generate do not need an API key.
func (r *Runner) executor(ctx context.Context, opts controllerOpts) (*session.Executor, error) {
	exec := session.ExecutorOpts{
		Credentials: opts.store,
		Location:    opts.location,
		History:     r.historyService(),
		Logger:      r.logger,
	}

	if opts.stories {
		completer, err := r.completionService(ctx)
		if err != nil {
			return nil, err
		}
		exec.Stories = story.NewGenerator(completer, r.cfg().Gemini.Model, r.logger)
	}
	return session.NewExecutor(exec), nil
}

func (r *Runner) controller(ctx context.Context, opts controllerOpts) (*session.Controller, error) {
	exec, err := r.executor(ctx, opts)
	if err != nil {
		return nil, err
	}
	return session.NewController(exec, r.logger), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
