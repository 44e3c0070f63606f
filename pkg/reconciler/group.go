package reconciler

import (
	"context"
	"fmt"

	"github.com/agentstation/eventlink/pkg/aggregate"
	"github.com/agentstation/eventlink/pkg/errors"
	"github.com/agentstation/eventlink/pkg/grouping"
	"github.com/agentstation/eventlink/pkg/logging"
	"github.com/agentstation/eventlink/pkg/matcher"
	"github.com/agentstation/eventlink/pkg/records"
)

// GroupResult is the outcome of reconciling one group: either a GroupSuccess
// or a GroupFailure.
type GroupResult interface {
	GroupLabel() string
	groupResult()
}

// GroupSuccess carries the rows of a reconciled group.
type GroupSuccess struct {
	Group string
	Rows  []records.MatchedRow
	Stats GroupStats
}

// GroupFailure records a group that could not be reconciled. Its records
// produce no rows; other groups are unaffected.
type GroupFailure struct {
	Group string
	Err   error
}

// GroupStats counts the rows of one group.
type GroupStats struct {
	Group             string `json:"group" yaml:"group"`
	Outreach          int    `json:"outreach" yaml:"outreach"`
	Events            int    `json:"events" yaml:"events"`
	Matched           int    `json:"matched" yaml:"matched"`
	UnmatchedOutreach int    `json:"unmatched_outreach" yaml:"unmatched_outreach"`
	UnmatchedEvents   int    `json:"unmatched_events" yaml:"unmatched_events"`
	DroppedEmpty      int    `json:"dropped_empty" yaml:"dropped_empty"`
	Failed            bool   `json:"failed,omitempty" yaml:"failed,omitempty"`
}

// GroupLabel returns the group label.
func (s GroupSuccess) GroupLabel() string { return s.Group }

// GroupLabel returns the group label.
func (f GroupFailure) GroupLabel() string { return f.Group }

// Error implements the error interface.
func (f GroupFailure) Error() string { return f.Err.Error() }

// Unwrap returns the underlying error.
func (f GroupFailure) Unwrap() error { return f.Err }

func (GroupSuccess) groupResult() {}
func (GroupFailure) groupResult() {}

// matchFunc is the signature shared by matcher.Match and matcher.MatchNaive.
type matchFunc func([]records.OutreachRecord, []records.EventRecord, matcher.Options) (matcher.Result, error)

// reconcileGroup matches one bucket and builds its outer-join rows. Panics
// and cancellation are converted to a GroupFailure.
func (r *reconciler) reconcileGroup(ctx context.Context, b grouping.Bucket) (res GroupResult) {
	label := b.Group.Label
	defer func() {
		if p := recover(); p != nil {
			res = GroupFailure{Group: label, Err: errors.NewGroupError(label, fmt.Errorf("panic: %v", p))}
		}
	}()

	if err := ctx.Err(); err != nil {
		return GroupFailure{Group: label, Err: errors.NewGroupError(label, err)}
	}

	logger := logging.FromContext(logging.WithGroup(ctx, label))

	matched, err := r.match(b.Outreach, b.Events, r.opts.match)
	if err != nil {
		return GroupFailure{Group: label, Err: errors.NewGroupError(label, err)}
	}

	rows := outerJoin(label, matched)
	kept, dropped := dropEmpty(rows)

	stats := GroupStats{
		Group:           label,
		Outreach:        len(b.Outreach),
		Events:          len(b.Events),
		Matched:         matched.MatchedCount(),
		UnmatchedEvents: len(matched.Unmatched),
		DroppedEmpty:    dropped,
	}
	stats.UnmatchedOutreach = stats.Outreach - stats.Matched

	logger.Debug().
		Int("outreach", stats.Outreach).
		Int("events", stats.Events).
		Int("matched", stats.Matched).
		Int("unmatched_events", stats.UnmatchedEvents).
		Int("dropped_empty", dropped).
		Msg("Reconciled group")

	return GroupSuccess{Group: label, Rows: kept, Stats: stats}
}

// outerJoin lays out a group's rows: one row per outreach record in
// outreach order, then one row per unconsumed event in event order.
func outerJoin(label string, m matcher.Result) []records.MatchedRow {
	rows := make([]records.MatchedRow, 0, len(m.Assignments)+len(m.Unmatched))

	for _, a := range m.Assignments {
		o := a.Outreach
		row := records.MatchedRow{
			Kind:     records.KindUnmatchedOutreach,
			Group:    label,
			Outreach: &o,
		}
		if a.Matched() {
			row.Kind = records.KindMatched
			row.Events = a.Events
			row.Composite = aggregate.Compose(label, a.Events)
		}
		rows = append(rows, row)
	}

	for _, e := range m.Unmatched {
		events := []records.EventRecord{e}
		rows = append(rows, records.MatchedRow{
			Kind:      records.KindUnmatchedEvent,
			Group:     label,
			Events:    events,
			Composite: aggregate.Compose(label, events),
		})
	}

	return rows
}
