package output

import "strings"

// OutputFormat specifies how structured results are printed.
type OutputFormat string

const (
	// FormatJSON outputs indented JSON.
	FormatJSON OutputFormat = "json"

	// FormatYAML outputs YAML.
	FormatYAML OutputFormat = "yaml"

	// FormatTable outputs a styled table.
	FormatTable OutputFormat = "table"
)

// String returns the string representation of the output format.
func (f OutputFormat) String() string {
	return string(f)
}

// Valid reports whether f is a known format.
func (f OutputFormat) Valid() bool {
	switch f {
	case FormatJSON, FormatYAML, FormatTable:
		return true
	default:
		return false
	}
}

// ParseOutputFormat parses s case-insensitively. The second result is false
// for unknown formats.
func ParseOutputFormat(s string) (OutputFormat, bool) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, true
	case "yaml", "yml":
		return FormatYAML, true
	case "table":
		return FormatTable, true
	default:
		return OutputFormat(s), false
	}
}

// ValidManifestFormats returns the formats accepted for manifest output.
func ValidManifestFormats() []string {
	return []string{"json", "yaml"}
}

// ValidListFormats returns the formats accepted by listing commands.
func ValidListFormats() []string {
	return []string{"table", "json", "yaml"}
}
