// Package alerts reports run outcomes to the user: the summary line, records
// that were set aside and groups that failed.
package alerts

import (
	"fmt"
	"time"

	"github.com/agentstation/eventlink/pkg/errors"
)

// DefaultLimit is how many records one alert lists before it summarizes.
const DefaultLimit = 10

// Alert is one status line, optionally followed by the records it is about.
type Alert struct {
	Level   Level
	Message string
	// Group is set when the alert concerns a single group.
	Group string
	// Records are the set-aside records, already cut to the alert's limit.
	Records []string
	// Omitted counts records left out of Records.
	Omitted int
	Err     error
	Time    time.Time
}

func newAlert(level Level, message string) *Alert {
	return &Alert{Level: level, Message: message, Time: time.Now()}
}

// Error creates an error alert.
func Error(message string) *Alert { return newAlert(LevelError, message) }

// Warning creates a warning alert.
func Warning(message string) *Alert { return newAlert(LevelWarning, message) }

// Info creates an info alert.
func Info(message string) *Alert { return newAlert(LevelInfo, message) }

// Success creates a success alert.
func Success(message string) *Alert { return newAlert(LevelSuccess, message) }

// Outcome is a success alert when ok and an error alert otherwise.
func Outcome(ok bool, message string) *Alert {
	if ok {
		return Success(message)
	}
	return Error(message)
}

// GroupFailed reports a group whose rows are missing from the output.
// A GroupError is unwrapped so the group is named once.
func GroupFailed(group string, err error) *Alert {
	var gerr *errors.GroupError
	if errors.As(err, &gerr) {
		err = gerr.Err
	}
	a := Error(fmt.Sprintf("group %s failed", group))
	a.Group = group
	a.Err = err
	return a
}

// WithError attaches the cause printed after the message.
func (a *Alert) WithError(err error) *Alert {
	a.Err = err
	return a
}

// WithRecords lists the records the alert is about, keeping the first limit.
// A limit <= 0 keeps them all.
func (a *Alert) WithRecords(limit int, records ...string) *Alert {
	if limit > 0 && len(records) > limit {
		a.Omitted += len(records) - limit
		records = records[:limit]
	}
	a.Records = append(a.Records, records...)
	return a
}

// Lines returns the record lines printed under the message.
func (a *Alert) Lines() []string {
	lines := a.Records
	if a.Omitted > 0 {
		lines = append(lines[:len(lines):len(lines)], fmt.Sprintf("... and %d more", a.Omitted))
	}
	return lines
}

// String renders the icon, the message and the cause on one line.
func (a *Alert) String() string {
	s := a.Level.Icon() + " " + a.Message
	if a.Err != nil {
		s += ": " + a.Err.Error()
	}
	return s
}

// Writer prints alerts.
type Writer interface {
	WriteAlert(alert *Alert) error
}

// WriterFunc adapts a function to Writer.
type WriterFunc func(*Alert) error

// WriteAlert calls f.
func (f WriterFunc) WriteAlert(alert *Alert) error {
	return f(alert)
}

// DiscardWriter drops every alert.
var DiscardWriter Writer = WriterFunc(func(*Alert) error { return nil })
