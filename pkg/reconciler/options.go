package reconciler

import (
	"time"

	"github.com/agentstation/eventlink/pkg/errors"
	"github.com/agentstation/eventlink/pkg/grouping"
	"github.com/agentstation/eventlink/pkg/linker"
	"github.com/agentstation/eventlink/pkg/matcher"
	"github.com/agentstation/eventlink/pkg/normalize"
)

// Options configures a reconciler.
type options struct {
	match   matcher.Options
	link    linker.Options
	aliases *normalize.AliasTable
	groups  []grouping.Group
	workers int // 0 means GOMAXPROCS
}

func defaultOptions() *options {
	return &options{
		match: matcher.DefaultOptions(),
		link:  linker.DefaultOptions(),
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (options *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithGroups sets the groups records are partitioned into, in output order.
func WithGroups(groups ...grouping.Group) Option {
	return func(o *options) error {
		if len(groups) == 0 {
			return &errors.ValidationError{
				Field:   "groups",
				Message: "at least one group is required",
			}
		}
		o.groups = groups
		return nil
	}
}

// WithAliases sets the officer alias table.
func WithAliases(aliases *normalize.AliasTable) Option {
	return func(o *options) error {
		o.aliases = aliases
		return nil
	}
}

// WithTolerance sets the match window width.
func WithTolerance(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return &errors.ValidationError{
				Field:   "tolerance",
				Value:   d,
				Message: "must not be negative",
			}
		}
		o.match.Tolerance = d
		return nil
	}
}

// WithToleranceDays sets the match window width in whole days.
func WithToleranceDays(days int) Option {
	return WithTolerance(matcher.ToleranceDays(days))
}

// WithWindowMode sets which side of the outreach timestamp the window covers.
func WithWindowMode(mode matcher.WindowMode) Option {
	return func(o *options) error {
		parsed, err := matcher.ParseWindowMode(string(mode))
		if err != nil {
			return err
		}
		o.match.Window = parsed
		return nil
	}
}

// WithMatchMode sets how many in-window events each outreach record takes.
func WithMatchMode(mode matcher.MatchMode) Option {
	return func(o *options) error {
		parsed, err := matcher.ParseMatchMode(string(mode))
		if err != nil {
			return err
		}
		o.match.Mode = parsed
		return nil
	}
}

// WithLinkOptions configures the lookup join.
func WithLinkOptions(link linker.Options) Option {
	return func(o *options) error {
		if _, err := linker.ParseDuplicatePolicy(string(link.Policy)); err != nil {
			return err
		}
		o.link = link
		return nil
	}
}

// WithWorkers bounds how many groups are matched at once. Zero uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return &errors.ValidationError{
				Field:   "workers",
				Value:   n,
				Message: "must not be negative",
			}
		}
		o.workers = n
		return nil
	}
}
