// Package table converts reconciliation values into rows for tabular output.
package table

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/eventlink/internal/cmd/emoji"
	"github.com/agentstation/eventlink/pkg/config"
	"github.com/agentstation/eventlink/pkg/reconciler"
	"github.com/agentstation/eventlink/pkg/records"
	"github.com/agentstation/eventlink/pkg/tabular"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// FromRecords converts a result table.
func FromRecords(t records.Table) Data {
	return Data{
		Headers: slices.Clone(t.Columns),
		Rows:    t.Rows,
	}
}

// Records converts back to a result table, for writers that take one.
func (d Data) Records() records.Table {
	return records.Table{Columns: d.Headers, Rows: d.Rows}
}

// GroupsToTableData lists per-group counts.
func GroupsToTableData(groups []reconciler.GroupStats) Data {
	headers := []string{"GROUP", "OUTREACH", "EVENTS", "MATCHED", "UNMATCHED OUTREACH", "UNMATCHED EVENTS", "DROPPED", "STATUS"}

	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		status := emoji.Success + " ok"
		if g.Failed {
			status = emoji.Error + " failed"
		}
		rows = append(rows, []string{
			g.Group,
			FormatNumber(g.Outreach),
			FormatNumber(g.Events),
			FormatNumber(g.Matched),
			FormatNumber(g.UnmatchedOutreach),
			FormatNumber(g.UnmatchedEvents),
			FormatNumber(g.DroppedEmpty),
			status,
		})
	}

	right := AlignRight
	return Data{
		Headers: headers,
		Rows:    rows,
		ColumnAlignment: []Align{
			AlignDefault, right, right, right, right, right, right, AlignDefault,
		},
	}
}

// ExcludedToTableData lists rows set aside for unreadable dates.
func ExcludedToTableData(excluded []records.ExcludedRecord) Data {
	data := FromRecords(tabular.ExcludedTable(excluded))
	for i := range data.Headers {
		data.Headers[i] = strings.ToUpper(data.Headers[i])
	}
	return data
}

// ValidationToTableData lists validation errors first, then warnings.
func ValidationToTableData(v *reconciler.ValidationResult) Data {
	headers := []string{"LEVEL", "SIDE", "RECORD", "GROUP", "MESSAGE"}

	rows := make([][]string, 0, len(v.Errors)+len(v.Warnings))
	for _, e := range v.Errors {
		rows = append(rows, []string{emoji.Error + " error", dash(string(e.Side)), dash(e.RecordID), dash(e.Group), e.Message})
	}
	for _, w := range v.Warnings {
		rows = append(rows, []string{emoji.Warning + " warning", dash(string(w.Side)), dash(w.RecordID), dash(w.Group), w.Message})
	}

	return Data{Headers: headers, Rows: rows}
}

// RulesToTableData shows the effective rules as key/value rows.
func RulesToTableData(r *config.Rules) Data {
	groups := make([]string, len(r.Groups))
	for i, g := range r.Groups {
		groups[i] = g.String()
	}

	aliases := make([]string, 0, len(r.Aliases))
	for _, from := range slices.Sorted(maps.Keys(r.Aliases)) {
		aliases = append(aliases, from+" -> "+r.Aliases[from])
	}

	workers := strconv.Itoa(r.Workers)
	if r.Workers == 0 {
		workers = "0 (one per CPU)"
	}

	settings := [][2]string{
		{"tolerance_days", strconv.Itoa(r.ToleranceDays)},
		{"window_mode", dash(r.WindowMode)},
		{"match_mode", dash(r.MatchMode)},
		{"groups", strings.Join(groups, "\n")},
		{"alias_case_sensitive", strconv.FormatBool(r.AliasCaseSensitive)},
		{"aliases", strings.Join(aliases, "\n")},
		{"join_key", r.JoinKey},
		{"key_trim", strconv.FormatBool(r.KeyTrim)},
		{"key_fold", strconv.FormatBool(r.KeyFold)},
		{"duplicate_policy", dash(r.DuplicatePolicy)},
		{"required_lookups", dash(strings.Join(r.RequiredLookups, ", "))},
		{"workers", workers},
	}
	rows := make([][]string, len(settings))
	for i, kv := range settings {
		rows[i] = []string{Title(kv[0]), kv[1]}
	}

	return Data{
		Headers: []string{"SETTING", "VALUE"},
		Rows:    rows,
	}
}

// FormatNumber formats an integer with thousands separators.
func FormatNumber(n int) string {
	str := strconv.Itoa(n)
	neg := strings.HasPrefix(str, "-")
	str = strings.TrimPrefix(str, "-")
	if len(str) <= 3 {
		if neg {
			return "-" + str
		}
		return str
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Title turns a snake_case key into a display header, "group_key" to
// "Group Key".
func Title(key string) string {
	caser := cases.Title(language.English)
	return caser.String(strings.ReplaceAll(key, "_", " "))
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Describe renders a one-line strategy for table footers.
func Describe(s reconciler.Strategy) string {
	return fmt.Sprintf("%s: %s", s.Type(), s.Description())
}
