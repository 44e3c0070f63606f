package reconciler

import (
	"fmt"

	"github.com/agentstation/eventlink/pkg/errors"
	"github.com/agentstation/eventlink/pkg/linker"
	"github.com/agentstation/eventlink/pkg/records"
)

// ValidationResult reports what a run over an input would reject, without
// matching anything.
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// ValidationError is a problem that fails the run or a whole group.
type ValidationError struct {
	Side     records.Side
	RecordID string
	Group    string
	Message  string
}

// ValidationWarning is a problem that sets individual records aside.
type ValidationWarning struct {
	Side     records.Side
	RecordID string
	Group    string
	Message  string
}

// IsValid returns true if validation passed.
func (v *ValidationResult) IsValid() bool {
	return v.Valid && len(v.Errors) == 0
}

// HasWarnings returns true if there are warnings.
func (v *ValidationResult) HasWarnings() bool {
	return len(v.Warnings) > 0
}

// String returns a string representation of the validation result.
func (v *ValidationResult) String() string {
	if v.IsValid() {
		if v.HasWarnings() {
			return fmt.Sprintf("Validation passed with %d warnings", len(v.Warnings))
		}
		return "Validation passed"
	}
	return fmt.Sprintf("Validation failed with %d errors", len(v.Errors))
}

// Validate checks lookup schemas, timestamps, group keys and record IDs.
func (r *reconciler) Validate(input Input) *ValidationResult {
	v := &ValidationResult{Valid: true}

	if _, err := linker.New(input.Lookups, r.opts.link); err != nil {
		v.Errors = append(v.Errors, ValidationError{Message: err.Error()})
	}

	outreach, excludedOutreach := r.normalizer.Outreach(input.Outreach)
	events, excludedEvents := r.normalizer.Events(input.Events)
	for _, x := range append(excludedOutreach, excludedEvents...) {
		v.Warnings = append(v.Warnings, ValidationWarning{
			Side:     x.Side,
			RecordID: x.ID,
			Group:    x.GroupKey,
			Message:  x.Reason,
		})
	}

	buckets, ungrouped := r.index.Partition(outreach, events)
	for _, o := range ungrouped.Outreach {
		v.Warnings = append(v.Warnings, ungroupedWarning(records.SideOutreach, o.ID, o.GroupKey))
	}
	for _, e := range ungrouped.Events {
		v.Warnings = append(v.Warnings, ungroupedWarning(records.SideEvent, e.ID, e.GroupKey))
	}

	for _, b := range buckets {
		if _, err := r.match(b.Outreach, nil, r.opts.match); err != nil {
			v.Errors = append(v.Errors, groupError(b.Group.Label, err))
		}
		if _, err := r.match(nil, b.Events, r.opts.match); err != nil {
			v.Errors = append(v.Errors, groupError(b.Group.Label, err))
		}
	}

	v.Valid = len(v.Errors) == 0
	return v
}

func ungroupedWarning(side records.Side, id, key string) ValidationWarning {
	return ValidationWarning{
		Side:     side,
		RecordID: id,
		Group:    key,
		Message:  fmt.Sprintf("group key %q does not name a configured group", key),
	}
}

func groupError(group string, err error) ValidationError {
	e := ValidationError{Group: group, Message: err.Error()}
	var dup *errors.DuplicateIDError
	if errors.As(err, &dup) {
		e.Side = records.Side(dup.Kind)
		e.RecordID = dup.ID
	}
	return e
}
