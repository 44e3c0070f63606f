// Package linker left-joins reconciled rows to lookup tables by exact name.
package linker

import (
	"slices"

	"github.com/agentstation/eventlink/pkg/errors"
	"github.com/agentstation/eventlink/pkg/records"
)

// Table is a lookup table such as approved or submitted applications.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// index is a Table with its rows grouped by normalized join key.
type index struct {
	table Table
	keyed map[string][]int
}

// Linker joins rows against a fixed set of lookup tables. It is immutable
// after New and may be shared.
type Linker struct {
	opts     Options
	indexes  []index
	required []bool
	columns  []string
	widths   []int
}

// Output is the result of Link.
type Output struct {
	Rows  []records.LinkedRow
	Table records.Table
	// Filtered counts rows dropped for missing a required table.
	Filtered int
	// Duplicates counts rows dropped as exact copies of an earlier row.
	Duplicates int
}

// New validates the tables and builds their key indexes. A table without
// the join key column fails with a SchemaError.
func New(tables []Table, opts Options) (*Linker, error) {
	if _, err := ParseDuplicatePolicy(string(opts.Policy)); err != nil {
		return nil, err
	}

	l := &Linker{
		opts:     opts,
		indexes:  make([]index, 0, len(tables)),
		required: make([]bool, len(tables)),
		columns:  slices.Clone(records.BaseColumns),
		widths:   make([]int, 0, len(tables)),
	}

	names := make(map[string]int, len(tables))
	for i, t := range tables {
		if t.Name == "" {
			return nil, errors.NewValidationError("lookups", i, "lookup table name cannot be empty")
		}
		if _, dup := names[t.Name]; dup {
			return nil, errors.NewValidationError("lookups", t.Name, "lookup table names must be unique")
		}
		names[t.Name] = i

		col := slices.Index(t.Columns, opts.joinKey())
		if col < 0 {
			return nil, errors.NewSchemaError(t.Name, opts.joinKey())
		}

		idx := index{table: t, keyed: make(map[string][]int)}
		for r, row := range t.Rows {
			if col >= len(row) {
				continue
			}
			key, ok := opts.key(row[col])
			if !ok {
				continue
			}
			if opts.policy() == PolicyFirstMatch && len(idx.keyed[key]) > 0 {
				continue
			}
			idx.keyed[key] = append(idx.keyed[key], r)
		}
		l.indexes = append(l.indexes, idx)
		l.widths = append(l.widths, len(t.Columns))
		l.columns = appendColumns(l.columns, t)
	}

	for _, name := range opts.Required {
		i, ok := names[name]
		if !ok {
			return nil, errors.NewValidationError("required_lookups", name, "no lookup table with this name")
		}
		l.required[i] = true
	}

	return l, nil
}

// appendColumns adds a table's columns, qualifying a name that collides with
// an earlier column as "<table>.<column>".
func appendColumns(columns []string, t Table) []string {
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		seen[c] = true
	}
	for _, c := range t.Columns {
		name := c
		if seen[name] {
			name = t.Name + "." + c
		}
		seen[name] = true
		columns = append(columns, name)
	}
	return columns
}

// Columns returns the output column names.
func (l *Linker) Columns() []string {
	return slices.Clone(l.columns)
}

// Link joins each row to every lookup table. Rows keep their input order;
// the lookup choices of one row follow table order, then row order within
// each table.
func (l *Linker) Link(rows []records.MatchedRow) Output {
	var out Output
	seen := newRowSet()

	for _, row := range rows {
		choices, ok := l.choices(row)
		if !ok {
			out.Filtered++
			continue
		}
		product(choices, func(lookups []records.LookupMatch) {
			linked := records.LinkedRow{MatchedRow: row, Lookups: lookups}
			cells := linked.Cells(l.widths)
			if !seen.add(cells) {
				out.Duplicates++
				return
			}
			out.Rows = append(out.Rows, linked)
			out.Table.Rows = append(out.Table.Rows, texts(cells))
		})
	}

	out.Table.Columns = l.Columns()
	return out
}

// choices returns, per table, the candidate lookup rows for row. A table
// without a match contributes a single empty LookupMatch. ok is false when
// a required table has no match.
func (l *Linker) choices(row records.MatchedRow) ([][]records.LookupMatch, bool) {
	subject, hasSubject := row.Subject()
	key, valid := l.opts.key(subject)

	choices := make([][]records.LookupMatch, len(l.indexes))
	for i, idx := range l.indexes {
		var matches []int
		if hasSubject && valid {
			matches = idx.keyed[key]
		}
		if len(matches) == 0 {
			if l.required[i] {
				return nil, false
			}
			choices[i] = []records.LookupMatch{{Table: idx.table.Name}}
			continue
		}
		choices[i] = make([]records.LookupMatch, len(matches))
		for j, r := range matches {
			choices[i][j] = records.LookupMatch{Table: idx.table.Name, Values: idx.table.Rows[r]}
		}
	}
	return choices, true
}

// product calls fn once per combination of choices, iterating the last
// table fastest.
func product(choices [][]records.LookupMatch, fn func([]records.LookupMatch)) {
	pos := make([]int, len(choices))
	for {
		combo := make([]records.LookupMatch, len(choices))
		for i, p := range pos {
			combo[i] = choices[i][p]
		}
		fn(combo)

		i := len(pos) - 1
		for ; i >= 0; i-- {
			pos[i]++
			if pos[i] < len(choices[i]) {
				break
			}
			pos[i] = 0
		}
		if i < 0 {
			return
		}
	}
}

func texts(cells []records.Cell) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.String()
	}
	return out
}
