// Package cmdutil provides shared flags for eventlink commands.
package cmdutil

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/eventlink/pkg/config"
	"github.com/agentstation/eventlink/pkg/errors"
	"github.com/agentstation/eventlink/pkg/reconciler"
	"github.com/agentstation/eventlink/pkg/tabular"
)

// InputFlags holds the input file flags shared by run and validate.
type InputFlags struct {
	Outreach []string
	Events   []string
	Lookups  []string
}

// AddInputFlags adds input file flags to a command.
func AddInputFlags(cmd *cobra.Command) *InputFlags {
	flags := &InputFlags{}

	cmd.Flags().StringArrayVar(&flags.Outreach, "outreach", nil,
		"Outreach CSV as [GROUP=]path; GROUP applies to every row of the file (repeatable)")
	cmd.Flags().StringArrayVar(&flags.Events, "events", nil,
		"Events CSV path (repeatable)")
	cmd.Flags().StringArrayVar(&flags.Lookups, "lookup", nil,
		"Lookup table as name=path, e.g. approved=approved.csv (repeatable)")

	return flags
}

// Source is one parsed [KEY=]path argument.
type Source struct {
	Key  string
	Path string
}

// ParseSource splits "KEY=path" into its parts. Without "=" the key is empty.
func ParseSource(arg string) (Source, error) {
	key, path, found := strings.Cut(arg, "=")
	if !found {
		key, path = "", arg
	}
	key = strings.TrimSpace(key)
	path = strings.TrimSpace(path)
	if path == "" {
		return Source{}, errors.NewValidationError("path", arg, "path is empty")
	}
	if found && key == "" {
		return Source{}, errors.NewValidationError("key", arg, "key before '=' is empty")
	}
	return Source{Key: key, Path: path}, nil
}

// Load reads every file named by the flags.
func (f *InputFlags) Load() (reconciler.Input, error) {
	var input reconciler.Input

	for _, arg := range f.Outreach {
		src, err := ParseSource(arg)
		if err != nil {
			return input, err
		}
		rows, err := tabular.ReadOutreachFile(src.Path, src.Key)
		if err != nil {
			return input, err
		}
		input.Outreach = append(input.Outreach, rows...)
	}

	for _, path := range f.Events {
		rows, err := tabular.ReadEventsFile(path)
		if err != nil {
			return input, err
		}
		input.Events = append(input.Events, rows...)
	}

	for _, arg := range f.Lookups {
		src, err := ParseSource(arg)
		if err != nil {
			return input, err
		}
		if src.Key == "" {
			return input, errors.NewValidationError("lookup", arg, "lookup must be given as name=path")
		}
		table, err := tabular.ReadTableFile(src.Key, src.Path)
		if err != nil {
			return input, err
		}
		input.Lookups = append(input.Lookups, table)
	}

	return input, nil
}

// Empty reports whether no input file was named.
func (f *InputFlags) Empty() bool {
	return len(f.Outreach) == 0 && len(f.Events) == 0 && len(f.Lookups) == 0
}

// RuleFlags holds per-run overrides of the rules file.
type RuleFlags struct {
	ToleranceDays   int
	Window          string
	MatchMode       string
	DuplicatePolicy string
	Require         []string
	Workers         int
}

// AddRuleFlags adds rule override flags to a command.
func AddRuleFlags(cmd *cobra.Command) *RuleFlags {
	flags := &RuleFlags{}

	cmd.Flags().IntVar(&flags.ToleranceDays, "tolerance-days", 0,
		"Match window in days (overrides rules)")
	cmd.Flags().StringVar(&flags.Window, "window", "",
		"Window mode: backward, symmetric (overrides rules)")
	cmd.Flags().StringVar(&flags.MatchMode, "match-mode", "",
		"Match mode: aggregate-all, nearest-only (overrides rules)")
	cmd.Flags().StringVar(&flags.DuplicatePolicy, "duplicate-policy", "",
		"Lookup duplicates: cross-product, first-match (overrides rules)")
	cmd.Flags().StringSliceVar(&flags.Require, "require", nil,
		"Keep only rows found in these lookup tables")
	cmd.Flags().IntVar(&flags.Workers, "workers", 0,
		"Groups reconciled in parallel, 0 = one per CPU (overrides rules)")

	return flags
}

// Apply returns a copy of rules with the flags the user set.
func (f *RuleFlags) Apply(cmd *cobra.Command, rules *config.Rules) *config.Rules {
	out := *rules
	changed := cmd.Flags().Changed

	if changed("tolerance-days") {
		out.ToleranceDays = f.ToleranceDays
	}
	if changed("window") {
		out.WindowMode = f.Window
	}
	if changed("match-mode") {
		out.MatchMode = f.MatchMode
	}
	if changed("duplicate-policy") {
		out.DuplicatePolicy = f.DuplicatePolicy
	}
	if changed("workers") {
		out.Workers = f.Workers
	}
	if len(f.Require) > 0 {
		required := slices.Clone(rules.RequiredLookups)
		for _, name := range f.Require {
			if !slices.Contains(required, name) {
				required = append(required, name)
			}
		}
		out.RequiredLookups = required
	}
	return &out
}

// Describe lists the input files for log lines.
func (f *InputFlags) Describe() string {
	return fmt.Sprintf("%d outreach, %d events, %d lookups", len(f.Outreach), len(f.Events), len(f.Lookups))
}

