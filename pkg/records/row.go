package records

import (
	"github.com/agentstation/eventlink/pkg/constants"
)

// Kind classifies a MatchedRow.
type Kind string

const (
	// KindMatched is an outreach record with at least one event in its window.
	KindMatched Kind = "matched"
	// KindUnmatchedOutreach is an outreach record with no event in its window.
	KindUnmatchedOutreach Kind = "unmatched_outreach"
	// KindUnmatchedEvent is an event that no outreach record consumed.
	KindUnmatchedEvent Kind = "unmatched_event"
)

// Composite is the aggregated view of one or more event records.
// Each field holds the sorted, de-duplicated, delimiter-joined values.
type Composite struct {
	EventIDs     string `json:"event_ids" yaml:"event_ids"`
	Dates        string `json:"dates" yaml:"dates"`
	Names        string `json:"names" yaml:"names"`
	Locations    string `json:"locations" yaml:"locations"`
	Hosts        string `json:"hosts" yaml:"hosts"`
	Audiences    string `json:"audiences" yaml:"audiences"`
	RequestTypes string `json:"request_types" yaml:"request_types"`
	Groups       string `json:"groups" yaml:"groups"`
}

// MatchedRow is the output unit of the temporal join.
type MatchedRow struct {
	Kind      Kind            `json:"kind" yaml:"kind"`
	Group     string          `json:"group" yaml:"group"`
	Outreach  *OutreachRecord `json:"outreach,omitempty" yaml:"outreach,omitempty"`
	Events    []EventRecord   `json:"events,omitempty" yaml:"events,omitempty"`
	Composite *Composite      `json:"composite,omitempty" yaml:"composite,omitempty"`
}

// Empty reports whether neither side of the row carries a substantive field.
func (r MatchedRow) Empty() bool {
	if r.Outreach != nil && !r.Outreach.Empty() {
		return false
	}
	for _, e := range r.Events {
		if !e.Empty() {
			return false
		}
	}
	return true
}

// Subject returns the outreach subject name used as the lookup join key.
func (r MatchedRow) Subject() (string, bool) {
	if r.Outreach == nil {
		return "", false
	}
	return r.Outreach.SubjectName, true
}

// BaseColumns are the output columns produced before any lookup columns.
var BaseColumns = []string{
	constants.ColumnOutreachID,
	constants.ColumnOutreachDate,
	constants.ColumnOfficer,
	constants.ColumnOutreachName,
	constants.ColumnOccupation,
	constants.ColumnEmail,
	constants.ColumnEventIDs,
	constants.ColumnEventDate,
	constants.ColumnEventLocation,
	constants.ColumnEventName,
	constants.ColumnEventOfficer,
	constants.ColumnSchool,
	constants.ColumnRequestType,
	constants.ColumnAudience,
	constants.ColumnMatchStatus,
}

// Cells flattens the row into BaseColumns order. Fields of an absent side
// are null, except the school column, which always carries the row's group.
func (r MatchedRow) Cells() []Cell {
	cells := make([]Cell, 0, len(BaseColumns))

	if o := r.Outreach; o != nil {
		cells = append(cells,
			Value(o.ID),
			Value(o.Timestamp.Time.Format(constants.DateLayout)),
			Value(o.Officer),
			Value(o.SubjectName),
			Value(o.Occupation),
			Value(o.Email),
		)
	} else {
		cells = append(cells, Nulls(6)...)
	}

	if c := r.Composite; c != nil {
		cells = append(cells,
			Value(c.EventIDs),
			Value(c.Dates),
			Value(c.Locations),
			Value(c.Names),
			Value(c.Hosts),
			Value(c.Groups),
			Value(c.RequestTypes),
			Value(c.Audiences),
		)
	} else {
		cells = append(cells, Nulls(5)...)
		cells = append(cells, r.groupCell())
		cells = append(cells, Nulls(2)...)
	}

	return append(cells, Value(string(r.Kind)))
}

func (r MatchedRow) groupCell() Cell {
	if r.Group == "" {
		return Null()
	}
	return Value(r.Group)
}
