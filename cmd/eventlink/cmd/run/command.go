// Package run implements the run command.
package run

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/eventlink/cmd/application"
	"github.com/agentstation/eventlink/internal/cmd/cmdutil"
	"github.com/agentstation/eventlink/pkg/constants"
)

// Flags holds the run-specific flags.
type Flags struct {
	Out         string
	Excluded    string
	MetricsFile string
	Timeout     time.Duration
}

// NewCommand creates the run command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}
	var (
		inputs *cmdutil.InputFlags
		rules  *cmdutil.RuleFlags
	)

	cmd := &cobra.Command{
		Use:     "run",
		GroupID: "core",
		Short:   "Reconcile outreach records with program events",
		Long: `Run matches every outreach record to the events of its group that fall
inside the tolerance window, lays the result out as a full outer join and
links each row to the lookup tables by member name.

Outreach files are usually one sheet per school; prefix the path with the
school code to attach it to every row. Without a prefix the file needs a
"Select Your School" column.

The reconciled table is printed to stdout, or written as CSV with --out.
A summary goes to stderr. The command exits non-zero when any group failed,
after writing the rows of the groups that succeeded.`,
		Example: `  eventlink run --outreach UCLA=ucla.csv --outreach LMU=lmu.csv --events events.csv
  eventlink run --outreach all.csv --events events.csv \
    --lookup approved=approved.csv --lookup submitted=submitted.csv --require approved \
    --out reconciled.csv --excluded excluded.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return execute(cmd, app, inputs, rules, flags)
		},
	}

	inputs = cmdutil.AddInputFlags(cmd)
	rules = cmdutil.AddRuleFlags(cmd)

	cmd.Flags().StringVar(&flags.Out, "out", "",
		"Write the reconciled table to this CSV file instead of stdout")
	cmd.Flags().StringVar(&flags.Excluded, "excluded", "",
		"Write records with unreadable dates to this CSV file")
	cmd.Flags().StringVar(&flags.MetricsFile, "metrics-file", "",
		"Write run metrics in Prometheus text format to this file")
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", constants.CommandTimeout,
		"Abort groups that have not started after this long")

	return cmd
}
