package run

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/eventlink"
	"github.com/agentstation/eventlink/cmd/application"
	"github.com/agentstation/eventlink/internal/cmd/alerts"
	"github.com/agentstation/eventlink/internal/cmd/cmdutil"
	"github.com/agentstation/eventlink/internal/cmd/output"
	"github.com/agentstation/eventlink/internal/cmd/table"
	"github.com/agentstation/eventlink/internal/metrics"
	"github.com/agentstation/eventlink/pkg/errors"
	"github.com/agentstation/eventlink/pkg/logging"
	"github.com/agentstation/eventlink/pkg/reconciler"
	"github.com/agentstation/eventlink/pkg/records"
	"github.com/agentstation/eventlink/pkg/tabular"
)

// Report is the structured form of a run for json and yaml output.
type Report struct {
	RunID    string                   `json:"run_id" yaml:"run_id"`
	Strategy string                   `json:"strategy" yaml:"strategy"`
	Summary  string                   `json:"summary" yaml:"summary"`
	Groups   []reconciler.GroupStats  `json:"groups" yaml:"groups"`
	Columns  []string                 `json:"columns" yaml:"columns"`
	Rows     [][]string               `json:"rows" yaml:"rows"`
	Excluded []records.ExcludedRecord `json:"excluded,omitempty" yaml:"excluded,omitempty"`
	Failures []string                 `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// NewReport builds the structured form of a result.
func NewReport(result *reconciler.Result) Report {
	r := Report{
		RunID:    result.Metadata.RunID,
		Strategy: result.Metadata.Strategy.String(),
		Summary:  result.Summary(),
		Groups:   result.Groups,
		Columns:  result.Table.Columns,
		Rows:     result.Table.Rows,
		Excluded: result.Excluded,
	}
	for _, f := range result.Failures {
		r.Failures = append(r.Failures, f.Error())
	}
	return r
}

func execute(cmd *cobra.Command, app application.Application, inputs *cmdutil.InputFlags, ruleFlags *cmdutil.RuleFlags, flags *Flags) error {
	logger := app.Logger()

	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}
	if format == "" {
		format = output.DetectFormat("")
	}

	if len(inputs.Outreach) == 0 && len(inputs.Events) == 0 {
		return errors.NewValidationError("outreach", nil, "at least one --outreach or --events file is required")
	}

	base, err := app.Rules()
	if err != nil {
		return err
	}
	rules := ruleFlags.Apply(cmd, base)

	input, err := inputs.Load()
	if err != nil {
		return err
	}
	logger.Debug().
		Str("inputs", inputs.Describe()).
		Int("outreach_rows", len(input.Outreach)).
		Int("event_rows", len(input.Events)).
		Msg("Inputs loaded")

	ctx, cancel := context.WithTimeout(cmd.Context(), flags.Timeout)
	defer cancel()
	ctx = logging.WithLogger(ctx, logger)

	result, err := eventlink.Reconcile(ctx, input, rules)
	if err != nil {
		return err
	}

	var written []string
	if err := writeTable(cmd, format, flags.Out, result); err != nil {
		return err
	}
	if flags.Out != "" && flags.Out != "-" {
		written = append(written, flags.Out)
	}
	if flags.Excluded != "" {
		if err := tabular.WriteTableFile(flags.Excluded, tabular.ExcludedTable(result.Excluded)); err != nil {
			return err
		}
		written = append(written, flags.Excluded)
	}

	metricsFile := flags.MetricsFile
	if metricsFile == "" {
		metricsFile = app.MetricsFile()
	}
	if metricsFile != "" {
		rec := metrics.New()
		rec.Observe(result)
		if err := rec.WriteFile(metricsFile); err != nil {
			return err
		}
		logger.Debug().Str("path", metricsFile).Msg("Metrics written")
	}

	w := alerts.NewFormatWriter(cmd.ErrOrStderr(), output.FormatTable)
	if err := Summarize(w, result); err != nil {
		logger.Warn().Err(err).Msg("Failed to write run summary")
	}
	for _, path := range written {
		if err := w.WriteAlert(alerts.Info("Wrote " + path)); err != nil {
			logger.Warn().Err(err).Msg("Failed to write run summary")
		}
	}

	return result.Err()
}

func writeTable(cmd *cobra.Command, format output.Format, path string, result *reconciler.Result) error {
	if path != "" && path != "-" {
		return tabular.WriteTableFile(path, result.Table)
	}
	view := table.FromRecords(result.Table)
	return output.Render(cmd.OutOrStdout(), format, view, NewReport(result))
}

// Summarize writes the outcome of a run as alerts: one summary line, then
// warnings for set-aside records and one error per failed group.
func Summarize(w alerts.Writer, result *reconciler.Result) error {
	if err := w.WriteAlert(alerts.Outcome(result.IsSuccess(), result.Summary())); err != nil {
		return err
	}

	if n := len(result.Excluded); n > 0 {
		lines := make([]string, 0, n)
		for _, x := range result.Excluded {
			lines = append(lines, fmt.Sprintf("%s %s: %s", x.Side, x.ID, x.Reason))
		}
		alert := alerts.Warning(fmt.Sprintf("%d records excluded for unreadable dates", n)).
			WithRecords(alerts.DefaultLimit, lines...)
		if err := w.WriteAlert(alert); err != nil {
			return err
		}
	}

	if n := result.Ungrouped.Len(); n > 0 {
		lines := make([]string, 0, n)
		for _, o := range result.Ungrouped.Outreach {
			lines = append(lines, fmt.Sprintf("outreach %s: %q", o.ID, o.GroupKey))
		}
		for _, e := range result.Ungrouped.Events {
			lines = append(lines, fmt.Sprintf("event %s: %q", e.ID, e.GroupKey))
		}
		alert := alerts.Warning(fmt.Sprintf("%d records name no configured group", n)).
			WithRecords(alerts.DefaultLimit, lines...)
		if err := w.WriteAlert(alert); err != nil {
			return err
		}
	}

	for _, f := range result.Failures {
		if err := w.WriteAlert(alerts.GroupFailed(f.Group, f.Err)); err != nil {
			return err
		}
	}
	return nil
}
