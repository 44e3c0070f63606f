// Package constants provides shared constants for CLI commands.
package constants

// Output format constants used throughout the CLI.
const (
	// FormatTable is the default output format on a terminal.
	FormatTable = "table"

	// FormatJSON outputs data as JSON.
	FormatJSON = "json"

	// FormatYAML outputs data as YAML.
	FormatYAML = "yaml"

	// FormatCSV outputs comma-separated values.
	FormatCSV = "csv"
)

// Formats lists the accepted --format values.
var Formats = []string{FormatTable, FormatJSON, FormatYAML, FormatCSV}
