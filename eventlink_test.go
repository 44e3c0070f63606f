package eventlink_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/eventlink"
	"github.com/agentstation/eventlink/pkg/config"
	"github.com/agentstation/eventlink/pkg/constants"
	"github.com/agentstation/eventlink/pkg/errors"
	"github.com/agentstation/eventlink/pkg/linker"
	"github.com/agentstation/eventlink/pkg/normalize"
	"github.com/agentstation/eventlink/pkg/reconciler"
)

func TestReconcile(t *testing.T) {
	input := reconciler.Input{
		Outreach: []normalize.RawOutreach{
			{Timestamp: "2024-03-05", GroupKey: "UCLA", OfficerLabel: "VN", SubjectName: "Jane Doe"},
			{Timestamp: "2024-03-05", GroupKey: "Irvine", OfficerLabel: "Mo", SubjectName: "John Roe"},
		},
		Events: []normalize.RawEvent{
			{Timestamp: "2024-03-01", GroupKey: "UCLA", EventName: "Info Session"},
			{Timestamp: "2024-02-01", GroupKey: "UC IRVINE", EventName: "Fair"},
		},
		Lookups: []linker.Table{{
			Name:    "approved",
			Columns: []string{"memberName", "approvedOn"},
			Rows:    [][]string{{"Jane Doe", "2024-03-10"}},
		}},
	}

	result, err := eventlink.Reconcile(context.Background(), input, nil)
	require.NoError(t, err)
	require.True(t, result.IsSuccess())

	table := result.Table
	assert.Equal(t, []string{"Veronica Nims", "Monisha Donaldson", ""}, table.Column(constants.ColumnOfficer))
	assert.Equal(t, []string{"UCLA", "UC IRVINE", "UC IRVINE"}, table.Column(constants.ColumnSchool))
	assert.Equal(t, []string{"2024-03-10", "", ""}, table.Column("approvedOn"))
}

func TestReconcile_SameIDAcrossGroups(t *testing.T) {
	input := reconciler.Input{
		Outreach: []normalize.RawOutreach{
			{ID: "1", Timestamp: "2024-03-05", GroupKey: "UCLA", OfficerLabel: "VN", SubjectName: "Jane Doe"},
			{ID: "1", Timestamp: "2024-03-05", GroupKey: "LMU", OfficerLabel: "VN", SubjectName: "Jane Doe"},
		},
	}

	result, err := eventlink.Reconcile(context.Background(), input, nil)
	require.NoError(t, err)
	require.True(t, result.IsSuccess())

	assert.Equal(t, 0, result.Metadata.Stats.Duplicates)
	assert.Equal(t, []string{"1", "1"}, result.Table.Column(constants.ColumnOutreachID))
	assert.Equal(t, []string{"UCLA", "LMU"}, result.Table.Column(constants.ColumnSchool))
}

func TestReconcile_InvalidRules(t *testing.T) {
	rules := config.Default()
	rules.ToleranceDays = -3

	_, err := eventlink.Reconcile(context.Background(), reconciler.Input{}, rules)
	assert.True(t, errors.IsValidationError(err))
}
