package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"keibacli/internal/config"
	"keibacli/internal/history"
	"keibacli/internal/infrastructure"
	"keibacli/internal/operations"
)

type globalFlags struct {
	config   string
	logLevel string
	strict   bool
	output   string
	json     bool
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	paths      *config.Paths
	configErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

// ensureConfig loads the configuration once and applies the command-line
// overrides on top of file and environment values
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if c.flags.logLevel != "" {
			cfg.Logging.Level = c.flags.logLevel
		}
		if c.flags.strict {
			cfg.Pipeline.Strict = true
		}
		if c.flags.output != "" {
			cfg.Paths.OutputDir = c.flags.output
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}

		paths, err := cfg.ResolvePaths("")
		if err != nil {
			c.configErr = err
			return
		}
		if err := paths.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.paths = paths
	})
	return c.config, c.configErr
}

// session holds what one command needs at run time: logger, telemetry and
// the resolved configuration
type session struct {
	cfg       *config.Config
	paths     *config.Paths
	logger    *slog.Logger
	providers *infrastructure.OTelProviders
	tracer    *operations.OperationTracer
	runtime   *infrastructure.RuntimeMetrics
	started   time.Time
	json      bool
}

// startSession initializes logging and telemetry for cmd. Callers must
// close the session to flush metrics.
func (c *commandContext) startSession(cmd *cobra.Command) (*session, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	logger = infrastructure.WithComponent(logger, cmd.Name())
	c.paths.LogPathResolution(logger)

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("initialize telemetry: %w", err)
	}
	tracer, err := operations.NewOperationTracer(providers)
	if err != nil {
		_ = providers.Shutdown(context.Background())
		return nil, err
	}
	runtime, err := infrastructure.NewRuntimeMetrics(providers.Meter)
	if err != nil {
		_ = providers.Shutdown(context.Background())
		return nil, fmt.Errorf("create runtime metrics: %w", err)
	}

	return &session{
		cfg:       cfg,
		paths:     c.paths,
		logger:    logger,
		providers: providers,
		tracer:    tracer,
		runtime:   runtime,
		started:   time.Now(),
		json:      c.flags.json,
	}, nil
}

// close samples the runtime gauges, writes the metrics textfile when one is
// configured and shuts the providers down
func (s *session) close(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	stats := s.runtime.Collect(ctx, s.started)
	s.logger.Debug("command finished",
		slog.Duration("uptime", stats.ProcessUptime),
		slog.Int64("goroutines", stats.GoRoutines),
		slog.Int64("heap_inuse", stats.HeapInUse))

	var errs []error
	if s.cfg.Telemetry.MetricsFile != "" {
		if err := s.providers.WriteMetrics(s.cfg.Telemetry.MetricsFile); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.providers.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// withSession wraps a command body so that the session is always closed,
// including when the body fails
func (c *commandContext) withSession(fn func(cmd *cobra.Command, args []string, s *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		s, err := c.startSession(cmd)
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, s.close(cmd.Context()))
		}()
		return fn(cmd, args, s)
	}
}

// openHistory opens the run history store, or returns nil when history is
// disabled by an empty history_db path
func (s *session) openHistory() (*history.Store, error) {
	if s.paths.HistoryDB == "" {
		return nil, nil
	}
	return history.Open(s.paths.HistoryDB)
}
