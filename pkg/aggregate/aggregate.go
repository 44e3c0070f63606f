// Package aggregate collapses the events matched to one outreach record into
// a single composite view.
package aggregate

import (
	"slices"
	"strings"

	"github.com/agentstation/eventlink/pkg/constants"
	"github.com/agentstation/eventlink/pkg/records"
)

// Compose builds the composite for a set of events. Every field is the
// sorted, de-duplicated set of non-empty values joined by "/". group is the
// display label recorded for each event; it replaces the raw group key so
// that rows keyed by code and by label read the same.
//
// Compose returns nil for an empty event set.
func Compose(group string, events []records.EventRecord) *records.Composite {
	if len(events) == 0 {
		return nil
	}

	var ids, dates, names, locations, hosts, audiences, requestTypes []string
	for _, e := range events {
		ids = append(ids, e.ID)
		dates = append(dates, e.Timestamp.Time.Format(constants.DateLayout))
		names = append(names, e.EventName)
		locations = append(locations, e.Location)
		hosts = append(hosts, e.HostOfficer)
		audiences = append(audiences, e.Audience)
		requestTypes = append(requestTypes, e.RequestType)
	}

	return &records.Composite{
		EventIDs:     Join(ids),
		Dates:        Join(dates),
		Names:        Join(names),
		Locations:    Join(locations),
		Hosts:        Join(hosts),
		Audiences:    Join(audiences),
		RequestTypes: Join(requestTypes),
		Groups:       Join([]string{group}),
	}
}

// Join returns the sorted distinct non-empty values joined by the value delimiter.
// Values are trimmed before comparison.
func Join(values []string) string {
	return strings.Join(Distinct(values), constants.ValueDelimiter)
}

// Distinct returns the sorted distinct non-empty trimmed values.
func Distinct(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
