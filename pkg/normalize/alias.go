package normalize

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/agentstation/eventlink/pkg/errors"
)

// Fold returns the case-folded form of s for case-insensitive comparison.
// A fresh Caser is used per call because Casers are not safe for concurrent use.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// Key trims surrounding whitespace and case-folds s.
func Key(s string) string {
	return Fold(strings.TrimSpace(s))
}

// AliasTable maps raw officer labels to one canonical display name.
// It is immutable after construction and safe for concurrent reads.
type AliasTable struct {
	entries       map[string]string
	caseSensitive bool
}

// NewAliasTable builds an alias table with a declared case policy.
//
// With caseSensitive=false, keys are compared after case folding; two keys
// that fold together must agree on the canonical name. Canonical names must
// be fixed points: a canonical name that is itself a key must map to itself.
func NewAliasTable(aliases map[string]string, caseSensitive bool) (*AliasTable, error) {
	t := &AliasTable{
		entries:       make(map[string]string, len(aliases)),
		caseSensitive: caseSensitive,
	}

	keys := make([]string, 0, len(aliases))
	for k := range aliases {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, raw := range keys {
		canonical := aliases[raw]
		if raw == "" {
			return nil, errors.NewValidationError("aliases", raw, "alias key cannot be empty")
		}
		if canonical == "" {
			return nil, errors.NewValidationError("aliases", raw, "canonical name cannot be empty")
		}
		key := t.key(raw)
		if existing, ok := t.entries[key]; ok && existing != canonical {
			return nil, errors.NewConfigError("aliases",
				fmt.Sprintf("alias %q maps to both %q and %q under case-insensitive lookup", raw, existing, canonical), nil)
		}
		t.entries[key] = canonical
	}

	for _, canonical := range t.entries {
		if mapped, ok := t.entries[t.key(canonical)]; ok && mapped != canonical {
			return nil, errors.NewConfigError("aliases",
				fmt.Sprintf("canonical name %q is also an alias for %q", canonical, mapped), nil)
		}
	}

	return t, nil
}

// MustAliasTable is NewAliasTable that panics on error. Intended for tests and literals.
func MustAliasTable(aliases map[string]string, caseSensitive bool) *AliasTable {
	t, err := NewAliasTable(aliases, caseSensitive)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *AliasTable) key(label string) string {
	if t.caseSensitive {
		return label
	}
	return Fold(label)
}

// Lookup returns the canonical name for label, if one is configured.
func (t *AliasTable) Lookup(label string) (string, bool) {
	if t == nil {
		return "", false
	}
	canonical, ok := t.entries[t.key(label)]
	return canonical, ok
}

// Canonical rewrites label through the table. Unmapped labels pass through unchanged.
func (t *AliasTable) Canonical(label string) string {
	if canonical, ok := t.Lookup(label); ok {
		return canonical
	}
	return label
}

// CaseSensitive reports the declared lookup policy.
func (t *AliasTable) CaseSensitive() bool {
	return t != nil && t.caseSensitive
}

// Len returns the number of distinct lookup keys.
func (t *AliasTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Entries yields lookup keys and canonical names in key order. Keys are
// folded when the table is case-insensitive.
func (t *AliasTable) Entries() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		if t == nil {
			return
		}
		for _, k := range slices.Sorted(maps.Keys(t.entries)) {
			if !yield(k, t.entries[k]) {
				return
			}
		}
	}
}
