package reconciler

import (
	"fmt"
	"time"

	"github.com/agentstation/eventlink/pkg/errors"
	"github.com/agentstation/eventlink/pkg/records"
)

// Result represents the outcome of a reconciliation run.
type Result struct {
	// Core data
	Rows  []records.LinkedRow
	Table records.Table

	// Records set aside before matching
	Excluded  []records.ExcludedRecord
	Ungrouped records.Ungrouped

	// Per-group outcomes in group declaration order
	Groups   []GroupStats
	Failures []GroupFailure

	// Metadata
	Metadata ResultMetadata
}

// ResultMetadata contains metadata about the reconciliation run.
type ResultMetadata struct {
	// RunID is derived from the inputs and strategy; equal inputs give equal IDs
	RunID string

	// StartTime when reconciliation started
	StartTime time.Time

	// EndTime when reconciliation completed
	EndTime time.Time

	// Duration of the reconciliation
	Duration time.Duration

	// Strategy used for matching and linking
	Strategy Strategy

	// Workers is the group concurrency bound (0 = GOMAXPROCS)
	Workers int

	// Statistics about the run
	Stats ResultStatistics
}

// ResultStatistics contains statistics about the run.
type ResultStatistics struct {
	OutreachRecords   int
	EventRecords      int
	Excluded          int
	Ungrouped         int
	Groups            int
	FailedGroups      int
	Matched           int
	UnmatchedOutreach int
	UnmatchedEvents   int
	DroppedEmpty      int
	LinkedRows        int
	Filtered          int
	Duplicates        int
	TotalTimeMs       int64
}

// IsSuccess returns true if every group reconciled.
func (r *Result) IsSuccess() bool {
	return len(r.Failures) == 0
}

// Err joins the group failures, or returns nil.
func (r *Result) Err() error {
	if r.IsSuccess() {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f.Err
	}
	return errors.Join(errs...)
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	s := r.Metadata.Stats
	summary := fmt.Sprintf("Reconciled %d rows: %d matched, %d unmatched outreach, %d unmatched events",
		s.LinkedRows, s.Matched, s.UnmatchedOutreach, s.UnmatchedEvents)

	if s.Excluded > 0 || s.Ungrouped > 0 {
		summary += fmt.Sprintf(" (%d excluded, %d ungrouped)", s.Excluded, s.Ungrouped)
	}
	if !r.IsSuccess() {
		summary += fmt.Sprintf(". %d of %d groups failed", s.FailedGroups, s.Groups)
	}
	return summary
}

// NewResult creates a new result with defaults.
func NewResult() *Result {
	return &Result{
		Metadata: ResultMetadata{
			StartTime: time.Now(),
		},
	}
}

// Finalize calculates duration and marks completion.
func (r *Result) Finalize() {
	r.Metadata.EndTime = time.Now()
	r.Metadata.Duration = r.Metadata.EndTime.Sub(r.Metadata.StartTime)
	r.Metadata.Stats.TotalTimeMs = r.Metadata.Duration.Milliseconds()
}
