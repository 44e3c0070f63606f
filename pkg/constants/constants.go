// Package constants provides shared constants used throughout the eventlink codebase.
// This includes matching defaults, timeouts, file permissions, and the column
// names of the reconciled output table.
package constants

import "time"

// Matching defaults
const (
	// DefaultToleranceDays is the width of the match window in days
	DefaultToleranceDays = 10

	// Day is the length of one tolerance day
	Day = 24 * time.Hour

	// ValueDelimiter joins the distinct values of an aggregated field
	ValueDelimiter = "/"

	// DefaultJoinKey is the lookup column compared against the outreach subject name
	DefaultJoinKey = "memberName"

	// DateLayout is the layout used when dates are rendered as text
	DateLayout = "2006-01-02"
)

// Timeout constants define various timeout durations used in the application
const (
	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 10 * time.Minute

	// ShutdownTimeout bounds cleanup after a failed command
	ShutdownTimeout = 5 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Output column names. They keep the headers the outreach team already uses.
const (
	ColumnOutreachID    = "Outreach ID"
	ColumnOutreachDate  = "Outreach Date"
	ColumnOfficer       = "Growth Officer"
	ColumnOutreachName  = "Outreach Name"
	ColumnOccupation    = "Occupation"
	ColumnEmail         = "Email"
	ColumnEventIDs      = "Event IDs"
	ColumnEventDate     = "Date of the Event"
	ColumnEventLocation = "Event Location"
	ColumnEventName     = "Event Name"
	ColumnEventOfficer  = "Event Officer"
	ColumnSchool        = "Select Your School"
	ColumnRequestType   = "Request type?"
	ColumnAudience      = "Audience"
	ColumnMatchStatus   = "Match Status"
)

// Path constants
const (
	// DefaultConfigName is the viper config file name searched in $HOME and the working directory
	DefaultConfigName = ".eventlink"

	// DefaultRulesFile is the rules file picked up from the working directory when present
	DefaultRulesFile = "eventlink.rules.yaml"
)
