// Package rules implements the rules command.
package rules

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/eventlink/cmd/application"
	"github.com/agentstation/eventlink/internal/cmd/output"
	"github.com/agentstation/eventlink/internal/cmd/table"
	"github.com/agentstation/eventlink/pkg/config"
)

// NewCommand creates the rules command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var builtin bool

	cmd := &cobra.Command{
		Use:     "rules",
		GroupID: "management",
		Short:   "Print the effective reconciliation rules",
		Long: `Print the rules a run would use: the built-in defaults overlaid with the
rules file (--rules, EVENTLINK_RULES_FILE or ./eventlink.rules.yaml).

The YAML form is a complete rules file. Save it, edit it and pass it back
with --rules to change the window, the school list or the officer aliases.`,
		Example: `  eventlink rules --default > eventlink.rules.yaml
  eventlink rules --format table`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rules := config.Default()
			if !builtin {
				var err error
				if rules, err = app.Rules(); err != nil {
					return err
				}
			}

			format, err := output.ParseFormat(app.OutputFormat())
			if err != nil {
				return err
			}
			if format == "" {
				format = output.FormatYAML
			}
			return output.Render(cmd.OutOrStdout(), format, table.RulesToTableData(rules), rules)
		},
	}

	cmd.Flags().BoolVar(&builtin, "default", false, "Print the built-in rules, ignoring any rules file")

	return cmd
}
