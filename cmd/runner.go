package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/bcx/internal/connection"
	"github.com/desertthunder/bcx/internal/httpcache"
	"github.com/desertthunder/bcx/internal/repositories"
	"github.com/desertthunder/bcx/internal/server"
	"github.com/desertthunder/bcx/internal/shared"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	conn       connection.Connection
	cache      *httpcache.BoltStorage
	db         *sql.DB
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	metricsSrv *server.Server
}

// RunnerOpts contains configuration options for creating a Runner.
//
// A nil Config is loaded from ConfigPath when the root command starts.
// A nil Conn is built from the loaded config on first use.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Conn       connection.Connection
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
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

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		conn:       opts.Conn,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, playlistCommand, videoCommand, cacheCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Before loads configuration and applies the global flags.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}
	if r.config == nil {
		r.config = r.loadConfig()
	}

	level := r.config.Log.Level
	if lvl := cmd.String("log-level"); lvl != "" {
		level = lvl
	}
	if level != "" {
		if err := shared.SetLogLevel(r.logger, level); err != nil {
			return ctx, err
		}
	}

	addr := r.config.Metrics.Addr
	if a := cmd.String("metrics-addr"); a != "" {
		addr = a
	}
	if addr != "" {
		r.serveMetrics(addr)
	}
	return ctx, nil
}

// After releases whatever the command opened.
func (r *Runner) After(ctx context.Context, cmd *cli.Command) error {
	return r.Close()
}

// Close shuts down the metrics listener and closes the cache and database.
func (r *Runner) Close() error {
	var errs []error
	if r.metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		errs = append(errs, r.metricsSrv.Shutdown(shutdownCtx))
		r.metricsSrv = nil
	}
	if r.cache != nil {
		errs = append(errs, r.cache.Close())
		r.cache = nil
	}
	if r.db != nil {
		errs = append(errs, r.db.Close())
		r.db = nil
	}
	return errors.Join(errs...)
}

func (r *Runner) loadConfig() *shared.Config {
	if r.configPath == "" {
		return shared.DefaultConfig()
	}
	if _, err := os.Stat(r.configPath); err != nil {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
		return shared.DefaultConfig()
	}
	config, err := shared.LoadConfig(r.configPath)
	if err != nil {
		r.logger.Warn("failed to load config, using defaults", "path", r.configPath, "error", err)
		return shared.DefaultConfig()
	}
	return config
}

func (r *Runner) serveMetrics(addr string) {
	r.metricsSrv = server.New(addr, shared.WithLogger(r.logger, "component", "metrics"))
	r.metricsSrv.Start()
}

// connection returns the Media API connection, building it from config on first use.
func (r *Runner) connection() (connection.Connection, error) {
	if r.conn != nil {
		return r.conn, nil
	}
	if r.config == nil {
		r.config = r.loadConfig()
	}

	bc := r.config.Brightcove
	if bc.ReadToken == "" && bc.WriteToken == "" && !bc.UsesOAuth() {
		return nil, fmt.Errorf("%w: set brightcove.read_token or client credentials in %s",
			shared.ErrMissingCredentials, r.configPath)
	}

	opts := connection.OptionsFromConfig(bc)
	opts.HTTPClient = r.httpClient
	opts.Logger = shared.WithLogger(r.logger, "component", "connection")

	if path := r.config.Cache.Path; path != "" {
		storage, err := httpcache.Open(path)
		if err != nil {
			r.logger.Warn("response cache unavailable", "path", path, "error", err)
		} else {
			r.cache = storage
			opts.Cache = storage
			opts.CacheTTL = r.config.Cache.TTL()
		}
	}

	r.conn = connection.New(opts)
	return r.conn, nil
}

// repository opens the migrated playlist cache database on first use.
func (r *Runner) repository() (*repositories.PlaylistRepository, error) {
	if r.db == nil {
		if r.config == nil {
			r.config = r.loadConfig()
		}
		db, err := shared.OpenDatabase(r.config.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		r.db = db
	}
	return repositories.NewPlaylistRepository(r.db), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

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
