package tabular

import (
	"strings"

	"github.com/agentstation/eventlink/pkg/constants"
	"github.com/agentstation/eventlink/pkg/normalize"
)

// field is a logical input column and the header spellings that name it.
type field struct {
	name     string
	headers  []string
	required bool
}

var outreachFields = []field{
	{name: "id", headers: []string{constants.ColumnOutreachID, "ID", "id"}},
	{name: "timestamp", headers: []string{"Date", constants.ColumnOutreachDate, "timestamp"}, required: true},
	{name: "group", headers: []string{constants.ColumnSchool, "School", "Group", "group"}},
	{name: "officer", headers: []string{constants.ColumnOfficer, "Officer", "officer"}},
	{name: "subject", headers: []string{"Name", constants.ColumnOutreachName, "Subject", "subject_name"}},
	{name: "occupation", headers: []string{constants.ColumnOccupation}},
	{name: "email", headers: []string{constants.ColumnEmail, "E-mail"}},
}

var eventFields = []field{
	{name: "id", headers: []string{"Event ID", "ID", "id"}},
	{name: "timestamp", headers: []string{constants.ColumnEventDate, "Event Date", "Date", "timestamp"}, required: true},
	{name: "group", headers: []string{constants.ColumnSchool, "School", "Group", "group"}, required: true},
	{name: "name", headers: []string{constants.ColumnEventName, "event_name"}},
	{name: "location", headers: []string{"Location", constants.ColumnEventLocation}},
	{name: "host", headers: []string{"Name", constants.ColumnEventOfficer, "Host", "host_officer"}},
	{name: "audience", headers: []string{constants.ColumnAudience}},
	{name: "request_type", headers: []string{constants.ColumnRequestType, "Request Type", "request_type"}},
}

// layout maps logical fields to column positions of one file.
type layout map[string]int

// resolve finds each field's column. Headers compare trimmed and
// case-folded; the first spelling present wins. It returns the first
// missing required field, if any.
func resolve(header []string, fields []field) (layout, string) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		key := normalize.Key(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := positions[key]; !dup {
			positions[key] = i
		}
	}

	l := make(layout, len(fields))
	for _, f := range fields {
		for _, h := range f.headers {
			if i, ok := positions[normalize.Key(h)]; ok {
				l[f.name] = i
				break
			}
		}
		if _, ok := l[f.name]; !ok && f.required {
			return nil, f.headers[0]
		}
	}
	return l, ""
}

// get returns the trimmed cell for a field, or "" when the column is absent
// or the row is short.
func (l layout) get(row []string, name string) string {
	i, ok := l[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (l layout) has(name string) bool {
	_, ok := l[name]
	return ok
}
