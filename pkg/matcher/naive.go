package matcher

import (
	"github.com/agentstation/eventlink/pkg/records"
)

// MatchNaive compares every outreach record with every event.
// It is quadratic and kept as the reference the sweep join is tested against.
func MatchNaive(outreach []records.OutreachRecord, events []records.EventRecord, opts Options) (Result, error) {
	if err := prepare(outreach, events, opts); err != nil {
		return Result{}, err
	}

	taken := make([]bool, len(events))
	assignments := make([]Assignment, len(outreach))

	for i, o := range outreach {
		assignments[i].Outreach = o
		from, to := opts.Bounds(o.Timestamp.Time)

		best := -1
		for j, e := range events {
			ts := e.Timestamp.Time
			if ts.Before(from) || ts.After(to) {
				continue
			}
			if opts.mode() == ModeNearestOnly {
				if best < 0 || closer(ts, j, events[best].Timestamp.Time, best, o.Timestamp.Time) {
					best = j
				}
				continue
			}
			assignments[i].Events = append(assignments[i].Events, e)
			taken[j] = true
		}
		if best >= 0 {
			assignments[i].Events = []records.EventRecord{events[best]}
			taken[best] = true
		}
	}

	var unmatched []records.EventRecord
	for j, e := range events {
		if !taken[j] {
			unmatched = append(unmatched, e)
		}
	}

	return Result{Assignments: assignments, Unmatched: unmatched}, nil
}
