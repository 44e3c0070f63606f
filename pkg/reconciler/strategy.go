package reconciler

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentstation/eventlink/pkg/linker"
	"github.com/agentstation/eventlink/pkg/matcher"
)

// StrategyType names a window and match mode combination, e.g. "backward-aggregate-all".
type StrategyType string

// String returns the string representation of a strategy type.
func (s StrategyType) String() string {
	return string(s)
}

// Name returns the name of the strategy type.
func (s StrategyType) Name() string {
	// Replace hyphens with spaces and title case each word
	words := strings.Split(s.String(), "-")
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

// Strategy describes how a run matched and linked records.
type Strategy struct {
	Window    matcher.WindowMode     `json:"window_mode" yaml:"window_mode"`
	Mode      matcher.MatchMode      `json:"match_mode" yaml:"match_mode"`
	Tolerance time.Duration          `json:"tolerance" yaml:"tolerance"`
	Policy    linker.DuplicatePolicy `json:"duplicate_policy" yaml:"duplicate_policy"`
}

func newStrategy(o *options) Strategy {
	window, _ := matcher.ParseWindowMode(string(o.match.Window))
	mode, _ := matcher.ParseMatchMode(string(o.match.Mode))
	policy, _ := linker.ParseDuplicatePolicy(string(o.link.Policy))
	return Strategy{
		Window:    window,
		Mode:      mode,
		Tolerance: o.match.Tolerance,
		Policy:    policy,
	}
}

// Type returns the strategy type.
func (s Strategy) Type() StrategyType {
	return StrategyType(string(s.Window) + "-" + string(s.Mode))
}

// Description returns a human-readable description.
func (s Strategy) Description() string {
	var window string
	if s.Window == matcher.WindowSymmetric {
		window = fmt.Sprintf("events within %s of each outreach", days(s.Tolerance))
	} else {
		window = fmt.Sprintf("events up to %s before each outreach", days(s.Tolerance))
	}

	take := "all in-window events aggregated"
	if s.Mode == matcher.ModeNearestOnly {
		take = "nearest event only"
	}

	return fmt.Sprintf("%s, %s; lookup duplicates: %s", window, take, s.Policy)
}

// String returns the compact form used in logs and fingerprints.
func (s Strategy) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", s.Window, s.Mode, s.Tolerance, s.Policy)
}

func days(d time.Duration) string {
	n := d.Hours() / 24
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%g days", n)
}
