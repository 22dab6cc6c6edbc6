package distill

import "strings"

// OutputFormat selects how a Result is rendered.
type OutputFormat string

// Supported output formats.
const (
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
	FormatText OutputFormat = "text"
)

// ParseOutputFormat maps a case-insensitive format name to an OutputFormat.
// Unknown and empty names fall back to FormatYAML.
func ParseOutputFormat(s string) OutputFormat {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatText:
		return f
	default:
		return FormatYAML
	}
}

// Renderer converts a Result into text.
type Renderer interface {
	// Render encodes result. Returns EENCODE if encoding fails.
	Render(result Result) (string, error)
}

// FormatFirstValue returns the first property value of the first record of
// the first object, in its natural string form. Returns "" when any of
// those is missing.
func FormatFirstValue(result Result) string {
	if len(result) == 0 {
		return ""
	}
	records := result[0].Records
	if len(records) == 0 {
		return ""
	}
	v, ok := records[0].First()
	if !ok {
		return ""
	}
	return v.String()
}

// Ensure TextRenderer implements Renderer at compile time.
var _ Renderer = TextRenderer{}

// TextRenderer renders only the first value of a Result.
type TextRenderer struct{}

// Render returns FormatFirstValue(result).
func (TextRenderer) Render(result Result) (string, error) {
	return FormatFirstValue(result), nil
}
