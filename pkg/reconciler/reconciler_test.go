package reconciler_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/eventlink/pkg/constants"
	"github.com/agentstation/eventlink/pkg/errors"
	"github.com/agentstation/eventlink/pkg/grouping"
	"github.com/agentstation/eventlink/pkg/linker"
	"github.com/agentstation/eventlink/pkg/logging"
	"github.com/agentstation/eventlink/pkg/matcher"
	"github.com/agentstation/eventlink/pkg/normalize"
	"github.com/agentstation/eventlink/pkg/reconciler"
	"github.com/agentstation/eventlink/pkg/records"
)

var schools = []grouping.Group{
	{Code: "UCLA", Label: "UCLA"},
	{Code: "LMU", Label: "LMU"},
	{Code: "UTA", Label: "UT ARLINGTON"},
}

func newReconciler(t *testing.T, opts ...reconciler.Option) reconciler.Reconciler {
	t.Helper()
	aliases := normalize.MustAliasTable(map[string]string{"VN": "Veronica Nims", "vn": "Veronica Nims"}, true)
	opts = append([]reconciler.Option{reconciler.WithGroups(schools...), reconciler.WithAliases(aliases)}, opts...)
	r, err := reconciler.New(opts...)
	require.NoError(t, err)
	return r
}

func TestReconcile_Example(t *testing.T) {
	r := newReconciler(t)

	result, err := r.Reconcile(context.Background(), reconciler.Input{
		Outreach: []normalize.RawOutreach{
			{Timestamp: "2024-03-05", GroupKey: "UCLA", OfficerLabel: "VN", SubjectName: "Jane Doe"},
		},
		Events: []normalize.RawEvent{
			{Timestamp: "2024-03-01", GroupKey: "UCLA", EventName: "Info Session"},
		},
	})
	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	require.Len(t, result.Rows, 1)

	row := result.Rows[0]
	assert.Equal(t, records.KindMatched, row.Kind)
	assert.Equal(t, "Veronica Nims", row.Outreach.Officer)
	assert.Equal(t, "Info Session", row.Composite.Names)

	assert.Equal(t, records.BaseColumns, result.Table.Columns)
	assert.Equal(t, []string{"Veronica Nims"}, result.Table.Column(constants.ColumnOfficer))
	assert.Equal(t, []string{"Info Session"}, result.Table.Column(constants.ColumnEventName))
	assert.Equal(t, []string{"2024-03-01"}, result.Table.Column(constants.ColumnEventDate))
	assert.Equal(t, []string{"matched"}, result.Table.Column(constants.ColumnMatchStatus))
}

func TestReconcile_OuterJoinLayout(t *testing.T) {
	r := newReconciler(t)

	result, err := r.Reconcile(context.Background(), reconciler.Input{
		Outreach: []normalize.RawOutreach{
			{ID: "o1", Timestamp: "2024-03-20", GroupKey: "LMU", SubjectName: "Ann"},
			{ID: "o2", Timestamp: "2024-03-20", GroupKey: "UCLA", SubjectName: "Ben"},
			{ID: "o3", Timestamp: "2024-01-01", GroupKey: "UCLA", SubjectName: "Cal"},
		},
		Events: []normalize.RawEvent{
			{ID: "e1", Timestamp: "2024-03-30", GroupKey: "UCLA", EventName: "Late"},
			{ID: "e2", Timestamp: "2024-03-15", GroupKey: "UCLA", EventName: "Fair"},
			{ID: "e3", Timestamp: "2024-03-12", GroupKey: "UCLA", EventName: "Gala"},
			{ID: "e4", Timestamp: "2024-02-01", GroupKey: "UT ARLINGTON", EventName: "Mixer"},
		},
	})
	require.NoError(t, err)

	// UCLA first (declaration order), then LMU, then UT ARLINGTON.
	assert.Equal(t, []string{"o2", "o3", "", "o1", ""}, result.Table.Column(constants.ColumnOutreachID))
	assert.Equal(t, []string{"e2/e3", "", "e1", "", "e4"}, result.Table.Column(constants.ColumnEventIDs))
	assert.Equal(t, []string{"Fair/Gala", "", "Late", "", "Mixer"}, result.Table.Column(constants.ColumnEventName))
	assert.Equal(t, []string{"UCLA", "UCLA", "UCLA", "LMU", "UT ARLINGTON"}, result.Table.Column(constants.ColumnSchool))
	assert.Equal(t, []string{"matched", "unmatched_outreach", "unmatched_event", "unmatched_outreach", "unmatched_event"},
		result.Table.Column(constants.ColumnMatchStatus))

	stats := result.Metadata.Stats
	assert.Equal(t, 1, stats.Matched)
	assert.Equal(t, 2, stats.UnmatchedOutreach)
	assert.Equal(t, 2, stats.UnmatchedEvents)
	assert.Equal(t, 3, stats.Groups)
	require.Len(t, result.Groups, 3)
	assert.Equal(t, reconciler.GroupStats{Group: "UCLA", Outreach: 2, Events: 3, Matched: 1, UnmatchedOutreach: 1, UnmatchedEvents: 1}, result.Groups[0])
}

func TestReconcile_EmptyEventGroup(t *testing.T) {
	r := newReconciler(t)

	result, err := r.Reconcile(context.Background(), reconciler.Input{
		Outreach: []normalize.RawOutreach{
			{Timestamp: "2024-03-05", GroupKey: "LMU", SubjectName: "Ann"},
			{Timestamp: "2024-03-06", GroupKey: "LMU", SubjectName: "Ben"},
		},
	})
	require.NoError(t, err)
	assert.True(t, result.IsSuccess())
	assert.Equal(t, []string{"unmatched_outreach", "unmatched_outreach"}, result.Table.Column(constants.ColumnMatchStatus))
}

func TestReconcile_PartialFailure(t *testing.T) {
	logger := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), logger.Logger)
	r := newReconciler(t)

	result, err := r.Reconcile(ctx, reconciler.Input{
		Outreach: []normalize.RawOutreach{
			{ID: "dup", Timestamp: "2024-03-05", GroupKey: "UCLA", SubjectName: "Ann"},
			{ID: "dup", Timestamp: "2024-03-06", GroupKey: "UCLA", SubjectName: "Ben"},
			{ID: "ok", Timestamp: "2024-03-06", GroupKey: "LMU", SubjectName: "Cal"},
		},
	})
	require.NoError(t, err)
	assert.False(t, result.IsSuccess())

	require.Len(t, result.Failures, 1)
	assert.Equal(t, "UCLA", result.Failures[0].Group)
	assert.ErrorIs(t, result.Failures[0].Err, errors.ErrDuplicateID)
	assert.True(t, errors.IsGroupFailure(result.Err()))

	assert.Equal(t, []string{"ok"}, result.Table.Column(constants.ColumnOutreachID))
	assert.True(t, result.Groups[0].Failed)
	assert.Equal(t, 1, result.Metadata.Stats.FailedGroups)
	assert.Contains(t, result.Summary(), "1 of 3 groups failed")

	logger.AssertContains(t, "Failed to reconcile group")
	logger.AssertContains(t, result.Metadata.RunID)
}

func TestReconcile_ExcludedAndUngrouped(t *testing.T) {
	r := newReconciler(t)

	result, err := r.Reconcile(context.Background(), reconciler.Input{
		Outreach: []normalize.RawOutreach{
			{ID: "bad-date", Timestamp: "tomorrow", GroupKey: "UCLA", SubjectName: "Ann"},
			{ID: "lost", Timestamp: "2024-03-05", GroupKey: "Stanford", SubjectName: "Ben"},
		},
		Events: []normalize.RawEvent{
			{ID: "lost-event", Timestamp: "2024-03-05", GroupKey: "USC", EventName: "Fair"},
		},
	})
	require.NoError(t, err)

	require.Len(t, result.Excluded, 1)
	assert.Equal(t, "bad-date", result.Excluded[0].ID)
	assert.Equal(t, 2, result.Ungrouped.Len())
	assert.Empty(t, result.Rows)
	assert.Equal(t, 1, result.Metadata.Stats.Excluded)
	assert.Equal(t, 2, result.Metadata.Stats.Ungrouped)
	assert.Contains(t, result.Summary(), "1 excluded, 2 ungrouped")
}

func TestReconcile_DropsEmptyRows(t *testing.T) {
	r := newReconciler(t)

	result, err := r.Reconcile(context.Background(), reconciler.Input{
		Outreach: []normalize.RawOutreach{
			{Timestamp: "2024-03-05", GroupKey: "UCLA"},
			{Timestamp: "2024-03-05", GroupKey: "UCLA", SubjectName: "Ann"},
		},
		Events: []normalize.RawEvent{
			{Timestamp: "2024-06-01", GroupKey: "UCLA"},
		},
	})
	require.NoError(t, err)
	assert.Len(t, result.Rows, 1)
	assert.Equal(t, 2, result.Metadata.Stats.DroppedEmpty)
}

func TestReconcile_SchemaErrorFailsFast(t *testing.T) {
	r := newReconciler(t)

	_, err := r.Reconcile(context.Background(), reconciler.Input{
		Outreach: []normalize.RawOutreach{{Timestamp: "2024-03-05", GroupKey: "UCLA", SubjectName: "Ann"}},
		Lookups:  []linker.Table{{Name: "approved", Columns: []string{"Name"}}},
	})
	require.Error(t, err)
	assert.True(t, errors.IsSchemaError(err))
}

func TestReconcile_Lookups(t *testing.T) {
	r := newReconciler(t, reconciler.WithLinkOptions(linker.Options{
		JoinKey:  "memberName",
		Policy:   linker.PolicyFirstMatch,
		Required: []string{"approved"},
	}))

	result, err := r.Reconcile(context.Background(), reconciler.Input{
		Outreach: []normalize.RawOutreach{
			{Timestamp: "2024-03-05", GroupKey: "UCLA", SubjectName: "Jane Doe"},
			{Timestamp: "2024-03-05", GroupKey: "UCLA", SubjectName: "John Roe"},
		},
		Lookups: []linker.Table{{
			Name:    "approved",
			Columns: []string{"memberName", "chapter"},
			Rows:    [][]string{{"Jane Doe", "West"}, {"Jane Doe", "East"}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"West"}, result.Table.Column("chapter"))
	assert.Equal(t, 1, result.Metadata.Stats.Filtered)
}

func TestReconcile_Canceled(t *testing.T) {
	r := newReconciler(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := r.Reconcile(ctx, reconciler.Input{
		Outreach: []normalize.RawOutreach{{Timestamp: "2024-03-05", GroupKey: "UCLA", SubjectName: "Ann"}},
	})
	require.NoError(t, err)
	require.Len(t, result.Failures, len(schools))
	for _, f := range result.Failures {
		assert.True(t, errors.IsCanceled(f.Err))
	}
	assert.Empty(t, result.Rows)
}

func TestReconcile_Workers(t *testing.T) {
	var outreach []normalize.RawOutreach
	var events []normalize.RawEvent
	for i := 0; i < 60; i++ {
		group := schools[i%len(schools)].Code
		outreach = append(outreach, normalize.RawOutreach{Timestamp: fmt.Sprintf("2024-03-%02d", i%28+1), GroupKey: group, SubjectName: fmt.Sprintf("member %d", i)})
		events = append(events, normalize.RawEvent{Timestamp: fmt.Sprintf("2024-03-%02d", (i*7)%28+1), GroupKey: schools[i%len(schools)].Label, EventName: fmt.Sprintf("event %d", i)})
	}
	input := reconciler.Input{Outreach: outreach, Events: events}

	serial, err := newReconciler(t, reconciler.WithWorkers(1)).Reconcile(context.Background(), input)
	require.NoError(t, err)
	parallel, err := newReconciler(t, reconciler.WithWorkers(8)).Reconcile(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, serial.Table, parallel.Table)
	assert.Equal(t, serial.Metadata.RunID, parallel.Metadata.RunID)
}

func TestReconcile_Validate(t *testing.T) {
	r := newReconciler(t)

	v := r.Validate(reconciler.Input{
		Outreach: []normalize.RawOutreach{
			{ID: "a", Timestamp: "2024-03-05", GroupKey: "UCLA"},
			{ID: "a", Timestamp: "2024-03-06", GroupKey: "UCLA"},
			{ID: "b", Timestamp: "soon", GroupKey: "UCLA"},
			{ID: "c", Timestamp: "2024-03-06", GroupKey: "Nowhere"},
		},
		Lookups: []linker.Table{{Name: "approved", Columns: []string{"name"}}},
	})
	assert.False(t, v.IsValid())
	require.Len(t, v.Errors, 2)
	assert.Equal(t, "a", v.Errors[1].RecordID)
	assert.Len(t, v.Warnings, 2)
	assert.Equal(t, "Validation failed with 2 errors", v.String())

	v = r.Validate(reconciler.Input{})
	assert.True(t, v.IsValid())
	assert.Equal(t, "Validation passed", v.String())
}

func TestNew_Options(t *testing.T) {
	_, err := reconciler.New()
	assert.True(t, errors.IsValidationError(err))

	_, err = reconciler.New(reconciler.WithGroups(schools...), reconciler.WithToleranceDays(-1))
	assert.True(t, errors.IsValidationError(err))

	_, err = reconciler.New(reconciler.WithGroups(schools...), reconciler.WithWindowMode("forward"))
	assert.True(t, errors.IsValidationError(err))

	_, err = reconciler.New(reconciler.WithGroups(schools...), reconciler.WithWorkers(-2))
	assert.True(t, errors.IsValidationError(err))

	r, err := reconciler.New(
		reconciler.WithGroups(schools...),
		reconciler.WithToleranceDays(3),
		reconciler.WithWindowMode(matcher.WindowSymmetric),
		reconciler.WithMatchMode(matcher.ModeNearestOnly),
	)
	require.NoError(t, err)

	s := r.Strategy()
	assert.Equal(t, reconciler.StrategyType("symmetric-nearest-only"), s.Type())
	assert.Equal(t, "Symmetric Nearest Only", s.Type().Name())
	assert.Equal(t, "events within 3 days of each outreach, nearest event only; lookup duplicates: cross-product", s.Description())
}
