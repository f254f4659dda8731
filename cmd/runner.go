package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotify-etl/internal/services"
	"github.com/desertthunder/spotify-etl/internal/shared"
	"github.com/desertthunder/spotify-etl/internal/storage"
	"github.com/desertthunder/spotify-etl/internal/tasks"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Provider and store are built per extraction unless fixed in [RunnerOpts], so invocations share no session.
type Runner struct {
	config     *shared.Config
	configPath string
	provider   services.Provider
	store      storage.ObjectStore
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	clock      func() time.Time

	startLambda func(ctx context.Context, handler any)
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Provider   services.Provider
	Store      storage.ObjectStore
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Clock      func() time.Time

	// StartLambda hands a handler to the Lambda runtime. Defaults to [lambda.StartWithOptions].
	StartLambda func(ctx context.Context, handler any)
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.StartLambda == nil {
		opts.StartLambda = func(ctx context.Context, handler any) {
			lambda.StartWithOptions(handler, lambda.WithContext(ctx))
		}
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		provider:   opts.Provider,
		store:      opts.Store,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		clock:      opts.Clock,

		startLambda: opts.StartLambda,
	}
}

// App builds the root command. Run without a subcommand it serves Lambda invocations when the runtime API is
// present and prints help otherwise.
func (r *Runner) App() *cli.Command {
	return &cli.Command{
		Name:     "spotify-etl",
		Usage:    "Extract Spotify playlist tracks to object storage",
		Version:  "0.1.0",
		Writer:   r.output,
		Flags:    r.flags(),
		Before:   r.LoadConfig,
		Action:   r.Default,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		runCommand, lambdaCommand, playlistIDCommand, keyCommand, configCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file (default: $" + shared.EnvConfigPath + " or " + defaultConfigPath + ")",
		},
	}
}

// LoadConfig resolves the configuration before any command runs. A config passed in [RunnerOpts] is kept.
func (r *Runner) LoadConfig(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if r.config != nil {
		return ctx, nil
	}

	path := cmd.String("config")
	if path == "" {
		path = r.configPath
	}
	if path == "" && os.Getenv(shared.EnvConfigPath) == "" {
		path = defaultConfigPath
	}

	config, err := shared.ResolveConfig(path)
	if err != nil {
		return ctx, err
	}

	r.config = config
	r.configPath = path
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(config.Log.Level))
	return ctx, nil
}

func (r *Runner) settings() *shared.Config {
	if r.config == nil {
		r.config = shared.DefaultConfig()
	}
	return r.config
}

// newProvider returns the fixed provider, or a fresh Spotify client for this invocation.
func (r *Runner) newProvider() (services.Provider, error) {
	if r.provider != nil {
		return r.provider, nil
	}
	return services.NewSpotifyService(r.settings().Spotify, r.httpClient)
}

// newStore returns the fixed store, or a fresh client for the configured driver.
func (r *Runner) newStore(ctx context.Context) (storage.ObjectStore, error) {
	if r.store != nil {
		return r.store, nil
	}
	return storage.New(ctx, r.settings().Storage)
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

// extract runs one extraction with freshly built dependencies.
func (r *Runner) extract(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*tasks.RunResult, error) {
	config := r.settings()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	provider, err := r.newProvider()
	if err != nil {
		return nil, err
	}

	store, err := r.newStore(ctx)
	if err != nil {
		return nil, err
	}

	extractor, err := tasks.NewExtractorFromConfig(provider, store, config, r.logger)
	if err != nil {
		return nil, err
	}

	return extractor.WithClock(r.clock).Run(ctx, progress)
}
