// Package validate implements the validate command.
package validate

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/eventlink/cmd/application"
	"github.com/agentstation/eventlink/internal/cmd/alerts"
	"github.com/agentstation/eventlink/internal/cmd/cmdutil"
	"github.com/agentstation/eventlink/internal/cmd/output"
	"github.com/agentstation/eventlink/internal/cmd/table"
	"github.com/agentstation/eventlink/pkg/errors"
	"github.com/agentstation/eventlink/pkg/reconciler"
)

// NewCommand creates the validate command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var (
		inputs *cmdutil.InputFlags
		rules  *cmdutil.RuleFlags
	)

	cmd := &cobra.Command{
		Use:     "validate",
		GroupID: "management",
		Short:   "Check rules and input files without reconciling",
		Long: `Validate checks the effective rules and, when input files are given,
reports what a run would reject:

  - lookup tables missing the join column (the run would fail)
  - duplicate record IDs inside a group (the group would fail)
  - unreadable dates (the record would be excluded)
  - group keys that name no configured group (the record would be ungrouped)

The command exits non-zero when there are errors. Warnings alone pass.`,
		Example: `  eventlink validate
  eventlink validate --outreach UCLA=ucla.csv --events events.csv --lookup approved=approved.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			base, err := app.Rules()
			if err != nil {
				return err
			}
			effective := rules.Apply(cmd, base)
			if err := effective.Validate(); err != nil {
				return err
			}

			w := alerts.NewFormatWriter(cmd.ErrOrStderr(), output.FormatTable)
			if inputs.Empty() {
				return w.WriteAlert(alerts.Success("Rules are valid"))
			}

			input, err := inputs.Load()
			if err != nil {
				return err
			}
			r, err := effective.Reconciler()
			if err != nil {
				return err
			}
			result := r.Validate(input)

			if err := printFindings(cmd, app, result); err != nil {
				return err
			}
			return finish(w, result)
		},
	}

	inputs = cmdutil.AddInputFlags(cmd)
	rules = cmdutil.AddRuleFlags(cmd)

	return cmd
}

func printFindings(cmd *cobra.Command, app application.Application, result *reconciler.ValidationResult) error {
	if len(result.Errors) == 0 && len(result.Warnings) == 0 {
		return nil
	}
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}
	if format == "" {
		format = output.DetectFormat("")
	}
	return output.Render(cmd.OutOrStdout(), format, table.ValidationToTableData(result), result)
}

func finish(w alerts.Writer, result *reconciler.ValidationResult) error {
	if !result.IsValid() {
		if err := w.WriteAlert(alerts.Error(result.String())); err != nil {
			return err
		}
		return &errors.ValidationError{Message: result.String()}
	}
	if result.HasWarnings() {
		return w.WriteAlert(alerts.Warning(result.String()))
	}
	return w.WriteAlert(alerts.Success(result.String()))
}
