package records

// Cell is one output value; a null cell is distinct from an empty string.
type Cell struct {
	Value string `json:"value" yaml:"value"`
	Valid bool   `json:"valid" yaml:"valid"`
}

// Value returns a non-null cell.
func Value(s string) Cell {
	return Cell{Value: s, Valid: true}
}

// Null returns a null cell.
func Null() Cell {
	return Cell{}
}

// Nulls returns n null cells.
func Nulls(n int) []Cell {
	return make([]Cell, n)
}

// String renders null as the empty string.
func (c Cell) String() string {
	if !c.Valid {
		return ""
	}
	return c.Value
}

// LookupMatch is the row chosen from one lookup table for a LinkedRow.
// Values is nil when the table had no row for the subject.
type LookupMatch struct {
	Table  string   `json:"table" yaml:"table"`
	Values []string `json:"values,omitempty" yaml:"values,omitempty"`
}

// Found reports whether the lookup table contributed a row.
func (m LookupMatch) Found() bool {
	return m.Values != nil
}

// LinkedRow is a MatchedRow extended with one row (or null) per lookup table.
type LinkedRow struct {
	MatchedRow
	Lookups []LookupMatch `json:"lookups,omitempty" yaml:"lookups,omitempty"`
}

// Cells flattens the row: base columns, then each lookup table's columns.
// widths gives the column count of each lookup table so unmatched tables
// still occupy their slots.
func (r LinkedRow) Cells(widths []int) []Cell {
	cells := r.MatchedRow.Cells()
	for i, width := range widths {
		if i >= len(r.Lookups) || !r.Lookups[i].Found() {
			cells = append(cells, Nulls(width)...)
			continue
		}
		values := r.Lookups[i].Values
		for j := 0; j < width; j++ {
			if j < len(values) {
				cells = append(cells, Value(values[j]))
			} else {
				cells = append(cells, Null())
			}
		}
	}
	return cells
}

// Table is the final tabular output handed to export collaborators.
type Table struct {
	Columns []string   `json:"columns" yaml:"columns"`
	Rows    [][]string `json:"rows" yaml:"rows"`
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// Column returns the values of the named column, or nil when absent.
func (t Table) Column(name string) []string {
	idx := -1
	for i, c := range t.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values
}
