// Package application provides the application interface for eventlink commands.
//
// The Application interface defines the contract between the application layer and
// command implementations, enabling dependency injection and testability.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            rules, err := app.Rules()
//	            if err != nil {
//	                return err
//	            }
//	            // ... reconcile with rules
//	            return nil
//	        },
//	    }
//	}
//
// Testing with Mocks:
//
//	mock := &application.Mock{
//	    RulesFunc: func() (*config.Rules, error) {
//	        return config.Default(), nil
//	    },
//	}
//	cmd := NewCommand(mock)
package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/eventlink/pkg/config"
)

// Application provides the application interface that commands need.
// The App struct from cmd/eventlink/app implements this interface.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Rules returns the effective reconciliation rules: the built-in
	// defaults overlaid with the configured rules file, if any. Callers
	// must not modify the returned value.
	Rules() (*config.Rules, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml, csv).
	// An empty string means auto-detect.
	OutputFormat() string

	// MetricsFile returns the configured Prometheus textfile path, or "".
	MetricsFile() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
