// Package emoji provides symbol constants for CLI output.
package emoji

// Status symbols shared by tables and alerts.
const (
	// Success marks a completed group or a passing check.
	Success = "✓"

	// Error marks a failed group or a validation error.
	Error = "✗"

	// Warning marks records that were set aside.
	Warning = "!"

	// Info marks informational lines.
	Info = "i"
)
