// Package eventlink reconciles staff outreach records with program events.
//
// Outreach and event rows are matched inside each group (school or site)
// when an event falls within a tolerance window of the outreach date. The
// result is a full outer join: every outreach record and every event shows
// up at least once. Rows are then left-joined to lookup tables, such as
// approved applications, by member name.
//
//	result, err := eventlink.Reconcile(ctx, reconciler.Input{
//		Outreach: outreach,
//		Events:   events,
//		Lookups:  []linker.Table{approved},
//	}, nil)
//
// Passing nil rules uses the built-in school list and officer aliases; see
// package config for the rules file format.
package eventlink

import (
	"context"

	"github.com/agentstation/eventlink/pkg/config"
	"github.com/agentstation/eventlink/pkg/reconciler"
)

// Reconcile validates rules, builds a reconciler and runs one batch.
func Reconcile(ctx context.Context, input reconciler.Input, rules *config.Rules) (*reconciler.Result, error) {
	if rules == nil {
		rules = config.Default()
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	r, err := rules.Reconciler()
	if err != nil {
		return nil, err
	}
	return r.Reconcile(ctx, input)
}
