package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/eventlink/cmd/eventlink/cmd/rules"
	"github.com/agentstation/eventlink/cmd/eventlink/cmd/run"
	"github.com/agentstation/eventlink/cmd/eventlink/cmd/validate"
	"github.com/agentstation/eventlink/pkg/constants"
)

// Flags holds the global flags bound on the root command.
type Flags struct {
	ConfigFile string
	RulesFile  string
	Verbose    bool
	Quiet      bool
	NoColor    bool
	Format     string
	LogLevel   string

	changed func(name string) bool
}

// Changed reports whether the user set the named flag.
func (f Flags) Changed(name string) bool {
	return f.changed != nil && f.changed(name)
}

// Execute runs the eventlink CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	flags := &Flags{}

	rootCmd := &cobra.Command{
		Use:     "eventlink",
		Short:   "Reconcile staff outreach with program events",
		Version: a.version,
		Long: `eventlink matches outreach records to the program events of the same
school when the event falls within a tolerance window of the outreach date,
then links every row to membership application tables by member name.

Every outreach record and every event appears in the output at least once,
so unmatched work on either side stays visible.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			flags.changed = cmd.Flags().Changed
			return a.setupCommand(*flags)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands:",
	})

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.ConfigFile, "config", "", "config file (default is $HOME/"+constants.DefaultConfigName+".yaml)")
	pf.StringVar(&flags.RulesFile, "rules", "", "rules file (default is ./"+constants.DefaultRulesFile+" or the built-in rules)")
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	pf.BoolVarP(&flags.Quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	pf.BoolVar(&flags.NoColor, "no-color", false, "disable colored output")
	pf.StringVarP(&flags.Format, "format", "o", "", "output format: table, json, yaml, csv (default table on a terminal, csv otherwise)")
	pf.StringVar(&flags.LogLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	rootCmd.SetVersionTemplate("eventlink {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(flags Flags) error {
	if flags.Changed("config") {
		cfg, err := LoadConfig(flags.ConfigFile)
		if err != nil {
			return err
		}
		a.config = cfg
	}

	a.config.UpdateFromFlags(flags)

	// Reinitialize logger with updated config
	logger := NewLogger(a.config)
	a.logger = &logger

	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(run.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(validate.NewCommand(a))
	rootCmd.AddCommand(rules.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(a.newVersionCommand())
}

// newVersionCommand creates the version command.
func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("eventlink %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		//nolint:errcheck // Ignoring write error since we're exiting anyway
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
