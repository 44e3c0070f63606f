package aggregate_test

import (
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/eventlink/pkg/aggregate"
	"github.com/agentstation/eventlink/pkg/records"
)

func TestCompose(t *testing.T) {
	events := []records.EventRecord{
		{ID: "e2", Timestamp: utc.New(time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)), EventName: "Gala", Location: "Royce Hall", HostOfficer: "Megan Sterling", Audience: "Students"},
		{ID: "e1", Timestamp: utc.New(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)), EventName: "Fair", Location: "Royce Hall", Audience: "Alumni", RequestType: "Table"},
		{ID: "e3", Timestamp: utc.New(time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)), EventName: "Gala"},
	}

	got := aggregate.Compose("UCLA", events)
	require.NotNil(t, got)
	assert.Equal(t, records.Composite{
		EventIDs:     "e1/e2/e3",
		Dates:        "2024-03-10/2024-03-12",
		Names:        "Fair/Gala",
		Locations:    "Royce Hall",
		Hosts:        "Megan Sterling",
		Audiences:    "Alumni/Students",
		RequestTypes: "Table",
		Groups:       "UCLA",
	}, *got)
}

func TestCompose_OrderIndependent(t *testing.T) {
	a := records.EventRecord{ID: "a", EventName: "Gala"}
	b := records.EventRecord{ID: "b", EventName: "Fair"}

	assert.Equal(t, aggregate.Compose("LMU", []records.EventRecord{a, b}), aggregate.Compose("LMU", []records.EventRecord{b, a}))
	assert.Equal(t, "Fair/Gala", aggregate.Compose("LMU", []records.EventRecord{a, b}).Names)
}

func TestCompose_Empty(t *testing.T) {
	assert.Nil(t, aggregate.Compose("UCLA", nil))
}

func TestJoin(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"nil", nil, ""},
		{"blank values dropped", []string{"", "  ", "Mixer"}, "Mixer"},
		{"duplicates collapse", []string{"Gala", "Fair", "Gala", " Fair "}, "Fair/Gala"},
		{"byte order", []string{"b", "B", "a"}, "B/a/b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, aggregate.Join(tt.values))
		})
	}
}
