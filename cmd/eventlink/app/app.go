// Package app provides the application context and dependency management
// for the eventlink CLI: configuration, logging and the effective rules.
package app

import (
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/eventlink/cmd/application"
	"github.com/agentstation/eventlink/pkg/config"
	"github.com/agentstation/eventlink/pkg/constants"
	"github.com/agentstation/eventlink/pkg/logging"
)

// App represents the eventlink application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Rules (lazy-initialized, singleton)
	mu    sync.RWMutex
	rules *config.Rules
}

// Ensure App implements application.Application at compile time.
var _ application.Application = (*App)(nil)

// New creates a new App instance with the given version information.
// The app is initialized with default configuration that can be
// customized using functional options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	cfg, err := LoadConfig("")
	if err != nil {
		return nil, err
	}
	app.config = cfg

	logger := NewLogger(cfg)
	app.logger = &logger
	// Library code reached without a context logger follows the CLI flags too.
	logging.SetDefault(logger)

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// MetricsFile returns the configured metrics textfile path.
func (a *App) MetricsFile() string {
	return a.config.MetricsFile
}

// Rules returns the effective rules, loading them once.
// This is thread-safe and ensures the rules file is read only once.
func (a *App) Rules() (*config.Rules, error) {
	a.mu.RLock()
	if a.rules != nil {
		rules := a.rules
		a.mu.RUnlock()
		return rules, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.rules != nil {
		return a.rules, nil
	}

	rules, err := loadRules(a.config.RulesFile)
	if err != nil {
		return nil, err
	}
	a.logger.Debug().Str("path", a.config.RulesFile).Msg("Rules loaded")

	a.rules = rules
	return rules, nil
}

// loadRules reads path, or the rules file in the working directory when
// present, or falls back to the built-in rules.
func loadRules(path string) (*config.Rules, error) {
	if path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat(constants.DefaultRulesFile); err == nil {
		return config.Load(constants.DefaultRulesFile)
	}
	return config.Default(), nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		logger := NewLogger(config)
		a.logger = &logger
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithRules sets the rules instead of loading them (useful for testing).
func WithRules(rules *config.Rules) Option {
	return func(a *App) error {
		a.rules = rules
		return nil
	}
}
