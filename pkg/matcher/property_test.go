package matcher_test

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/agentstation/eventlink/pkg/matcher"
	"github.com/agentstation/eventlink/pkg/records"
)

// Offsets are in half days so that window boundaries and equal timestamps
// come up often.
func halfDays(offsets []int) []time.Time {
	ts := make([]time.Time, len(offsets))
	for i, h := range offsets {
		ts[i] = base.Add(time.Duration(h) * 12 * time.Hour)
	}
	return ts
}

func buildGroup(outreachOffsets, eventOffsets []int) ([]records.OutreachRecord, []records.EventRecord) {
	outreach := make([]records.OutreachRecord, len(outreachOffsets))
	for i, ts := range halfDays(outreachOffsets) {
		outreach[i] = records.OutreachRecord{ID: fmt.Sprintf("o%d", i), Index: i, Timestamp: utc.New(ts)}
	}
	events := make([]records.EventRecord, len(eventOffsets))
	for i, ts := range halfDays(eventOffsets) {
		events[i] = records.EventRecord{ID: fmt.Sprintf("e%d", i), Index: i, Timestamp: utc.New(ts)}
	}
	return outreach, events
}

func TestProperty_SweepEqualsNaive(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	offsets := gen.SliceOf(gen.IntRange(-60, 60))

	for _, opts := range []matcher.Options{
		matcher.DefaultOptions(),
		{Tolerance: matcher.ToleranceDays(3), Window: matcher.WindowSymmetric, Mode: matcher.ModeAggregateAll},
		{Tolerance: matcher.ToleranceDays(10), Window: matcher.WindowBackward, Mode: matcher.ModeNearestOnly},
		{Tolerance: matcher.ToleranceDays(2), Window: matcher.WindowSymmetric, Mode: matcher.ModeNearestOnly},
		{Tolerance: 0, Window: matcher.WindowBackward, Mode: matcher.ModeAggregateAll},
	} {
		properties.Property("sweep equals naive "+opts.String(), prop.ForAll(
			func(o, e []int) bool {
				outreach, events := buildGroup(o, e)
				sweep, err := matcher.Match(outreach, events, opts)
				if err != nil {
					return false
				}
				naive, err := matcher.MatchNaive(outreach, events, opts)
				if err != nil {
					return false
				}
				return reflect.DeepEqual(sweep, naive)
			},
			offsets, offsets,
		))
	}

	properties.Property("every event is assigned or unmatched, never both", prop.ForAll(
		func(o, e []int) bool {
			outreach, events := buildGroup(o, e)
			res, err := matcher.Match(outreach, events, matcher.DefaultOptions())
			if err != nil || len(res.Assignments) != len(outreach) {
				return false
			}
			assigned := make(map[string]bool)
			for _, a := range res.Assignments {
				for _, ev := range a.Events {
					assigned[ev.ID] = true
				}
			}
			for _, ev := range res.Unmatched {
				if assigned[ev.ID] {
					return false
				}
				assigned[ev.ID] = true
			}
			return len(assigned) == len(events)
		},
		offsets, offsets,
	))

	properties.TestingRun(t)
}
