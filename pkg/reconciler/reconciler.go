// Package reconciler runs the full pipeline: it normalizes raw rows,
// partitions them by group, matches each group concurrently, lays out the
// outer join and links the result to lookup tables.
package reconciler

import (
	"context"

	"github.com/sourcegraph/conc/iter"

	"github.com/agentstation/eventlink/pkg/errors"
	"github.com/agentstation/eventlink/pkg/grouping"
	"github.com/agentstation/eventlink/pkg/linker"
	"github.com/agentstation/eventlink/pkg/logging"
	"github.com/agentstation/eventlink/pkg/matcher"
	"github.com/agentstation/eventlink/pkg/normalize"
)

// Reconciler is the main interface for reconciling outreach with events.
type Reconciler interface {
	// Reconcile runs one batch. Lookup schema problems fail the whole run;
	// problems inside one group are reported in Result.Failures instead.
	Reconcile(ctx context.Context, input Input) (*Result, error)

	// Validate reports what Reconcile would reject without matching.
	Validate(input Input) *ValidationResult

	// Strategy describes the configured matching and linking.
	Strategy() Strategy
}

// Input is one batch of raw rows.
type Input struct {
	Outreach []normalize.RawOutreach
	Events   []normalize.RawEvent
	Lookups  []linker.Table
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	opts       *options
	index      *grouping.Index
	normalizer *normalize.Normalizer
	strategy   Strategy
	match      matchFunc
}

// New creates a new Reconciler with options. Groups are required.
func New(opts ...Option) (Reconciler, error) {
	// Create options with defaults
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	if err := options.match.Validate(); err != nil {
		return nil, err
	}
	if len(options.groups) == 0 {
		return nil, &errors.ValidationError{
			Field:   "groups",
			Message: "at least one group is required",
		}
	}

	index, err := grouping.NewIndex(options.groups)
	if err != nil {
		return nil, err
	}

	return &reconciler{
		opts:       options,
		index:      index,
		normalizer: normalize.New(options.aliases),
		strategy:   newStrategy(options),
		match:      matcher.Match,
	}, nil
}

// Strategy describes the configured matching and linking.
func (r *reconciler) Strategy() Strategy {
	return r.strategy
}

// Reconcile performs the run with clean step-by-step flow.
func (r *reconciler) Reconcile(ctx context.Context, input Input) (*Result, error) {
	result := NewResult()
	result.Metadata.Strategy = r.strategy
	result.Metadata.Workers = r.opts.workers
	result.Metadata.RunID = fingerprint(input, r.opts, r.strategy, r.index.Groups())

	ctx = logging.WithRun(ctx, result.Metadata.RunID)
	logger := logging.FromContext(ctx)

	// Step 1: Check lookup schemas before doing any work
	link, err := linker.New(input.Lookups, r.opts.link)
	if err != nil {
		return nil, err
	}

	// Step 2: Normalize raw rows
	outreach, excludedOutreach := r.normalizer.Outreach(input.Outreach)
	events, excludedEvents := r.normalizer.Events(input.Events)
	result.Excluded = append(excludedOutreach, excludedEvents...)
	if len(result.Excluded) > 0 {
		logging.FromContext(logging.WithStage(ctx, "normalize")).Warn().
			Int("excluded", len(result.Excluded)).
			Msg("Excluded records with unparseable timestamps")
	}

	// Step 3: Partition by group
	buckets, ungrouped := r.index.Partition(outreach, events)
	result.Ungrouped = ungrouped
	if ungrouped.Len() > 0 {
		logging.FromContext(logging.WithStage(ctx, "partition")).Warn().
			Int("outreach", len(ungrouped.Outreach)).
			Int("events", len(ungrouped.Events)).
			Msg("Records with unknown group keys were not matched")
	}

	// Step 4: Match groups concurrently; results keep group order
	groupResults := r.reconcileGroups(ctx, buckets)

	// Step 5: Concatenate group rows
	c := newCollector(logger)
	for _, res := range groupResults {
		c.add(res)
	}

	// Step 6: Link to lookup tables
	out := link.Link(c.rows)
	logging.FromContext(logging.WithStage(ctx, "link")).Debug().
		Int("rows_in", len(c.rows)).
		Int("rows_out", len(out.Rows)).
		Int("filtered", out.Filtered).
		Int("duplicates", out.Duplicates).
		Msg("Linked rows to lookup tables")

	// Step 7: Build result
	result.Rows = out.Rows
	result.Table = out.Table
	result.Groups = c.groups
	result.Failures = c.failures

	stats := c.stats
	stats.OutreachRecords = len(input.Outreach)
	stats.EventRecords = len(input.Events)
	stats.Excluded = len(result.Excluded)
	stats.Ungrouped = ungrouped.Len()
	stats.LinkedRows = len(out.Rows)
	stats.Filtered = out.Filtered
	stats.Duplicates = out.Duplicates
	result.Metadata.Stats = stats

	result.Finalize()

	logger.Info().
		Int("rows", stats.LinkedRows).
		Int("groups", stats.Groups).
		Int("failed_groups", stats.FailedGroups).
		Dur("duration", result.Metadata.Duration).
		Msg("Reconciliation complete")

	return result, nil
}

// reconcileGroups fans groups out to at most workers goroutines.
func (r *reconciler) reconcileGroups(ctx context.Context, buckets []grouping.Bucket) []GroupResult {
	mapper := iter.Mapper[grouping.Bucket, GroupResult]{MaxGoroutines: r.opts.workers}
	return mapper.Map(buckets, func(b *grouping.Bucket) GroupResult {
		return r.reconcileGroup(ctx, *b)
	})
}
