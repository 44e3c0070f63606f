// Package matcher pairs outreach records with the events of the same group
// whose timestamps fall inside a tolerance window.
//
// Match is a sort-and-sweep join. MatchNaive compares every pair and exists
// as a reference for tests; both return identical results for any input.
package matcher

import (
	"slices"
	"sort"
	"time"

	"github.com/agentstation/eventlink/pkg/errors"
	"github.com/agentstation/eventlink/pkg/records"
)

// Assignment is one outreach record and the events it matched, in event
// input order. Events is nil when nothing fell inside the window.
type Assignment struct {
	Outreach records.OutreachRecord
	Events   []records.EventRecord
}

// Matched reports whether at least one event was assigned.
func (a Assignment) Matched() bool {
	return len(a.Events) > 0
}

// Result is the outcome of matching one group.
type Result struct {
	// Assignments has one entry per outreach record, in outreach input order.
	Assignments []Assignment
	// Unmatched holds the events no outreach record took, in event input order.
	Unmatched []records.EventRecord
}

// MatchedCount returns the number of outreach records with at least one event.
func (r Result) MatchedCount() int {
	n := 0
	for _, a := range r.Assignments {
		if a.Matched() {
			n++
		}
	}
	return n
}

// Match joins the outreach and event records of one group.
//
// Event positions are sorted once by (timestamp, input position). Each
// outreach record finds its window with two binary searches; taken events
// are marked on a difference array over sorted positions and resolved in
// one prefix pass.
func Match(outreach []records.OutreachRecord, events []records.EventRecord, opts Options) (Result, error) {
	if err := prepare(outreach, events, opts); err != nil {
		return Result{}, err
	}

	order := make([]int, len(events))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		if c := events[a].Timestamp.Time.Compare(events[b].Timestamp.Time); c != 0 {
			return c
		}
		return a - b
	})
	at := func(p int) time.Time { return events[order[p]].Timestamp.Time }

	// first sorted position at or after t (inclusive) or strictly after t
	search := func(t time.Time, inclusive bool) int {
		return sort.Search(len(order), func(p int) bool {
			if inclusive {
				return !at(p).Before(t)
			}
			return at(p).After(t)
		})
	}

	diff := make([]int, len(order)+1)
	assignments := make([]Assignment, len(outreach))

	for i, o := range outreach {
		assignments[i].Outreach = o
		from, to := opts.Bounds(o.Timestamp.Time)
		lo, hi := search(from, true), search(to, false)
		if lo >= hi {
			continue
		}

		if opts.mode() == ModeNearestOnly {
			p := nearest(order, lo, hi, o.Timestamp.Time, at, search)
			assignments[i].Events = []records.EventRecord{events[order[p]]}
			diff[p]++
			diff[p+1]--
			continue
		}

		window := make([]int, hi-lo)
		copy(window, order[lo:hi])
		slices.Sort(window)
		assignments[i].Events = make([]records.EventRecord, len(window))
		for k, j := range window {
			assignments[i].Events[k] = events[j]
		}
		diff[lo]++
		diff[hi]--
	}

	taken := make([]bool, len(events))
	depth := 0
	for p, j := range order {
		depth += diff[p]
		taken[j] = depth > 0
	}

	var unmatched []records.EventRecord
	for j, e := range events {
		if !taken[j] {
			unmatched = append(unmatched, e)
		}
	}

	return Result{Assignments: assignments, Unmatched: unmatched}, nil
}

// nearest picks the sorted position in [lo, hi) closest to target. Ties go
// to the earlier input position.
func nearest(order []int, lo, hi int, target time.Time, at func(int) time.Time, search func(time.Time, bool) int) int {
	// split is the first sorted position strictly after target
	split := search(target, false)
	best := -1

	if before := split - 1; before >= lo && before < hi {
		// earliest input position among events sharing that timestamp
		best = max(search(at(before), true), lo)
	}
	if split >= lo && split < hi {
		if best < 0 || closer(at(split), order[split], at(best), order[best], target) {
			best = split
		}
	}
	return best
}

// closer reports whether the event at (ta, pa) beats the one at (tb, pb)
// as nearest to target.
func closer(ta time.Time, pa int, tb time.Time, pb int, target time.Time) bool {
	da, db := distance(ta, target), distance(tb, target)
	if da != db {
		return da < db
	}
	return pa < pb
}

func distance(a, b time.Time) time.Duration {
	d := a.Sub(b)
	if d < 0 {
		return -d
	}
	return d
}

// prepare validates options and rejects duplicate record IDs within the group.
func prepare(outreach []records.OutreachRecord, events []records.EventRecord, opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(outreach))
	for _, o := range outreach {
		if _, dup := seen[o.ID]; dup {
			return &errors.DuplicateIDError{Kind: string(records.SideOutreach), ID: o.ID}
		}
		seen[o.ID] = struct{}{}
	}
	clear(seen)
	for _, e := range events {
		if _, dup := seen[e.ID]; dup {
			return &errors.DuplicateIDError{Kind: string(records.SideEvent), ID: e.ID}
		}
		seen[e.ID] = struct{}{}
	}
	return nil
}
