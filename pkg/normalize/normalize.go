// Package normalize turns raw input rows into validated records: it parses
// timestamps, rewrites officer labels through an alias table, and sets aside
// rows whose dates cannot be read.
package normalize

import (
	"fmt"

	"github.com/agentstation/utc"

	"github.com/agentstation/eventlink/pkg/records"
)

// RawOutreach is an outreach row as handed over by an input collaborator.
type RawOutreach struct {
	ID           string `json:"id,omitempty" yaml:"id,omitempty"`
	Timestamp    string `json:"timestamp" yaml:"timestamp"`
	GroupKey     string `json:"group_key" yaml:"group_key"`
	OfficerLabel string `json:"officer" yaml:"officer"`
	SubjectName  string `json:"subject_name" yaml:"subject_name"`
	Occupation   string `json:"occupation,omitempty" yaml:"occupation,omitempty"`
	Email        string `json:"email,omitempty" yaml:"email,omitempty"`
}

// RawEvent is an event row as handed over by an input collaborator.
type RawEvent struct {
	ID          string `json:"id,omitempty" yaml:"id,omitempty"`
	Timestamp   string `json:"timestamp" yaml:"timestamp"`
	GroupKey    string `json:"group_key" yaml:"group_key"`
	EventName   string `json:"event_name" yaml:"event_name"`
	Location    string `json:"location,omitempty" yaml:"location,omitempty"`
	HostOfficer string `json:"host_officer,omitempty" yaml:"host_officer,omitempty"`
	Audience    string `json:"audience,omitempty" yaml:"audience,omitempty"`
	RequestType string `json:"request_type,omitempty" yaml:"request_type,omitempty"`
}

// Normalizer validates raw rows. It holds only read-only state.
type Normalizer struct {
	aliases *AliasTable
}

// New creates a Normalizer. A nil alias table leaves officer labels untouched.
func New(aliases *AliasTable) *Normalizer {
	return &Normalizer{aliases: aliases}
}

// Outreach normalizes outreach rows. Rows with unparseable timestamps are
// returned as excluded records instead of records.
func (n *Normalizer) Outreach(raw []RawOutreach) ([]records.OutreachRecord, []records.ExcludedRecord) {
	out := make([]records.OutreachRecord, 0, len(raw))
	var excluded []records.ExcludedRecord

	for i, r := range raw {
		id := r.ID
		if id == "" {
			id = fmt.Sprintf("outreach-%d", i+1)
		}
		ts, err := ParseTimestamp(r.Timestamp)
		if err != nil {
			excluded = append(excluded, records.ExcludedRecord{
				Side:     records.SideOutreach,
				ID:       id,
				Index:    i,
				GroupKey: r.GroupKey,
				Value:    r.Timestamp,
				Reason:   err.Error(),
			})
			continue
		}
		out = append(out, records.OutreachRecord{
			ID:          id,
			Index:       i,
			Timestamp:   utc.Time{Time: ts},
			GroupKey:    r.GroupKey,
			Officer:     n.aliases.Canonical(r.OfficerLabel),
			SubjectName: r.SubjectName,
			Occupation:  r.Occupation,
			Email:       r.Email,
		})
	}

	return out, excluded
}

// Events normalizes event rows the same way as Outreach.
func (n *Normalizer) Events(raw []RawEvent) ([]records.EventRecord, []records.ExcludedRecord) {
	out := make([]records.EventRecord, 0, len(raw))
	var excluded []records.ExcludedRecord

	for i, r := range raw {
		id := r.ID
		if id == "" {
			id = fmt.Sprintf("event-%d", i+1)
		}
		ts, err := ParseTimestamp(r.Timestamp)
		if err != nil {
			excluded = append(excluded, records.ExcludedRecord{
				Side:     records.SideEvent,
				ID:       id,
				Index:    i,
				GroupKey: r.GroupKey,
				Value:    r.Timestamp,
				Reason:   err.Error(),
			})
			continue
		}
		out = append(out, records.EventRecord{
			ID:          id,
			Index:       i,
			Timestamp:   utc.Time{Time: ts},
			GroupKey:    r.GroupKey,
			EventName:   r.EventName,
			Location:    r.Location,
			HostOfficer: r.HostOfficer,
			Audience:    r.Audience,
			RequestType: r.RequestType,
		})
	}

	return out, excluded
}
