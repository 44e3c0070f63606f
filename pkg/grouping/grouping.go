// Package grouping resolves record group keys against the configured groups
// and partitions records into per-group buckets.
package grouping

import (
	"fmt"

	"github.com/agentstation/eventlink/pkg/errors"
	"github.com/agentstation/eventlink/pkg/normalize"
	"github.com/agentstation/eventlink/pkg/records"
)

// Group is one organizational unit (a school or site). Outreach sheets
// usually name it by Code and event forms by Label.
type Group struct {
	Code  string `json:"code" yaml:"code" validate:"required"`
	Label string `json:"label" yaml:"label" validate:"required"`
}

// String returns the display label.
func (g Group) String() string {
	return g.Label
}

// Index resolves raw keys to groups. It is immutable after construction.
type Index struct {
	groups []Group
	keys   map[string]int
}

// NewIndex builds an index over groups in declaration order. Keys compare
// after whitespace trim and case folding. A key that would resolve to two
// different groups is a configuration error.
func NewIndex(groups []Group) (*Index, error) {
	idx := &Index{
		groups: make([]Group, len(groups)),
		keys:   make(map[string]int, len(groups)*2),
	}
	copy(idx.groups, groups)

	for i, g := range groups {
		if normalize.Key(g.Label) == "" {
			return nil, errors.NewValidationError("groups", g, "group label cannot be empty")
		}
		for _, raw := range []string{g.Code, g.Label} {
			key := normalize.Key(raw)
			if key == "" {
				continue
			}
			if prev, ok := idx.keys[key]; ok && prev != i {
				return nil, errors.NewConfigError("groups",
					fmt.Sprintf("key %q names both %s and %s", raw, groups[prev].Label, g.Label), nil)
			}
			idx.keys[key] = i
		}
	}
	return idx, nil
}

// Groups returns the groups in declaration order.
func (idx *Index) Groups() []Group {
	out := make([]Group, len(idx.groups))
	copy(out, idx.groups)
	return out
}

// Len returns the number of groups.
func (idx *Index) Len() int {
	return len(idx.groups)
}

// Resolve returns the position and group a raw key names.
func (idx *Index) Resolve(key string) (int, Group, bool) {
	i, ok := idx.keys[normalize.Key(key)]
	if !ok {
		return -1, Group{}, false
	}
	return i, idx.groups[i], true
}

// Bucket holds the records of one group, each side in input order.
type Bucket struct {
	Group    Group
	Outreach []records.OutreachRecord
	Events   []records.EventRecord
}

// Partition splits records into one bucket per group in declaration order.
// Records whose key does not resolve are returned as Ungrouped.
func (idx *Index) Partition(outreach []records.OutreachRecord, events []records.EventRecord) ([]Bucket, records.Ungrouped) {
	buckets := make([]Bucket, len(idx.groups))
	for i, g := range idx.groups {
		buckets[i].Group = g
	}

	var ungrouped records.Ungrouped
	for _, o := range outreach {
		i, _, ok := idx.Resolve(o.GroupKey)
		if !ok {
			ungrouped.Outreach = append(ungrouped.Outreach, o)
			continue
		}
		buckets[i].Outreach = append(buckets[i].Outreach, o)
	}
	for _, e := range events {
		i, _, ok := idx.Resolve(e.GroupKey)
		if !ok {
			ungrouped.Events = append(ungrouped.Events, e)
			continue
		}
		buckets[i].Events = append(buckets[i].Events, e)
	}

	return buckets, ungrouped
}
