package matcher

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentstation/eventlink/pkg/constants"
	"github.com/agentstation/eventlink/pkg/errors"
)

// WindowMode selects which side of an outreach timestamp the window covers.
type WindowMode string

const (
	// WindowBackward matches events in [o - W, o].
	WindowBackward WindowMode = "backward"
	// WindowSymmetric matches events in [o - W, o + W].
	WindowSymmetric WindowMode = "symmetric"
)

// String returns the mode name.
func (m WindowMode) String() string { return string(m) }

// ParseWindowMode parses a window mode name. The empty string is the default.
func ParseWindowMode(s string) (WindowMode, error) {
	switch WindowMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", WindowBackward:
		return WindowBackward, nil
	case WindowSymmetric:
		return WindowSymmetric, nil
	}
	return "", errors.NewValidationError("window_mode", s, "must be backward or symmetric")
}

// MatchMode selects how many in-window events an outreach record takes.
type MatchMode string

const (
	// ModeAggregateAll takes every event in the window.
	ModeAggregateAll MatchMode = "aggregate-all"
	// ModeNearestOnly takes the single event closest in time.
	ModeNearestOnly MatchMode = "nearest-only"
)

// String returns the mode name.
func (m MatchMode) String() string { return string(m) }

// ParseMatchMode parses a match mode name. The empty string is the default.
func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeAggregateAll:
		return ModeAggregateAll, nil
	case ModeNearestOnly:
		return ModeNearestOnly, nil
	}
	return "", errors.NewValidationError("match_mode", s, "must be aggregate-all or nearest-only")
}

// Options configures a match.
type Options struct {
	Tolerance time.Duration
	Window    WindowMode
	Mode      MatchMode
}

// DefaultOptions returns the 10-day backward aggregate-all configuration.
func DefaultOptions() Options {
	return Options{
		Tolerance: constants.DefaultToleranceDays * constants.Day,
		Window:    WindowBackward,
		Mode:      ModeAggregateAll,
	}
}

// ToleranceDays converts a whole-day tolerance to a duration.
func ToleranceDays(days int) time.Duration {
	return time.Duration(days) * constants.Day
}

// Validate checks the options.
func (o Options) Validate() error {
	if o.Tolerance < 0 {
		return errors.NewValidationError("tolerance", o.Tolerance, "must not be negative")
	}
	if _, err := ParseWindowMode(string(o.Window)); err != nil {
		return err
	}
	if _, err := ParseMatchMode(string(o.Mode)); err != nil {
		return err
	}
	return nil
}

// Bounds returns the inclusive window around an outreach timestamp.
func (o Options) Bounds(at time.Time) (from, to time.Time) {
	from = at.Add(-o.Tolerance)
	to = at
	if o.Window == WindowSymmetric {
		to = at.Add(o.Tolerance)
	}
	return from, to
}

// String describes the strategy, e.g. "backward/aggregate-all/240h0m0s".
func (o Options) String() string {
	return fmt.Sprintf("%s/%s/%s", o.window(), o.mode(), o.Tolerance)
}

func (o Options) window() WindowMode {
	if o.Window == "" {
		return WindowBackward
	}
	return o.Window
}

func (o Options) mode() MatchMode {
	if o.Mode == "" {
		return ModeAggregateAll
	}
	return o.Mode
}
