// Package records defines the value types that flow through the reconciliation
// pipeline. Every value is created by exactly one stage and never mutated
// afterwards; later stages build new values instead.
package records

import (
	"strings"

	"github.com/agentstation/utc"
)

// Side identifies which input stream a record came from.
type Side string

const (
	// SideOutreach is the staff outreach stream.
	SideOutreach Side = "outreach"
	// SideEvent is the program event stream.
	SideEvent Side = "event"
)

// OutreachRecord is one outreach action performed by a staff member.
type OutreachRecord struct {
	ID          string   `json:"id" yaml:"id"`
	Index       int      `json:"index" yaml:"index"` // position in the input, used for stable ordering
	Timestamp   utc.Time `json:"timestamp" yaml:"timestamp"`
	GroupKey    string   `json:"group_key" yaml:"group_key"`
	Officer     string   `json:"officer" yaml:"officer"`
	SubjectName string   `json:"subject_name" yaml:"subject_name"`
	Occupation  string   `json:"occupation,omitempty" yaml:"occupation,omitempty"`
	Email       string   `json:"email,omitempty" yaml:"email,omitempty"`
}

// Empty reports whether the record carries no substantive field.
func (o OutreachRecord) Empty() bool {
	return blank(o.Officer, o.SubjectName, o.Occupation, o.Email)
}

// EventRecord is one program event hosted for a group.
type EventRecord struct {
	ID          string   `json:"id" yaml:"id"`
	Index       int      `json:"index" yaml:"index"`
	Timestamp   utc.Time `json:"timestamp" yaml:"timestamp"`
	GroupKey    string   `json:"group_key" yaml:"group_key"`
	EventName   string   `json:"event_name" yaml:"event_name"`
	Location    string   `json:"location,omitempty" yaml:"location,omitempty"`
	HostOfficer string   `json:"host_officer,omitempty" yaml:"host_officer,omitempty"`
	Audience    string   `json:"audience,omitempty" yaml:"audience,omitempty"`
	RequestType string   `json:"request_type,omitempty" yaml:"request_type,omitempty"`
}

// Empty reports whether the record carries no substantive field.
func (e EventRecord) Empty() bool {
	return blank(e.EventName, e.Location, e.HostOfficer, e.Audience, e.RequestType)
}

// ExcludedRecord is a raw input row that never reached the matcher.
type ExcludedRecord struct {
	Side     Side   `json:"side" yaml:"side"`
	ID       string `json:"id" yaml:"id"`
	Index    int    `json:"index" yaml:"index"`
	GroupKey string `json:"group_key" yaml:"group_key"`
	Value    string `json:"value" yaml:"value"` // the offending raw timestamp
	Reason   string `json:"reason" yaml:"reason"`
}

// Ungrouped holds records whose group key did not resolve to a configured group.
type Ungrouped struct {
	Outreach []OutreachRecord `json:"outreach" yaml:"outreach"`
	Events   []EventRecord    `json:"events" yaml:"events"`
}

// Len returns the total number of ungrouped records.
func (u Ungrouped) Len() int {
	return len(u.Outreach) + len(u.Events)
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
