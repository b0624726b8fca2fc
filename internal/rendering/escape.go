package rendering

import "strings"

// EscapeMarkdownCell makes text safe inside a Markdown table cell.
// Pipes and backslashes are escaped and line breaks collapse to spaces.
func EscapeMarkdownCell(text string) string {
	if text == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(text) + 8)

	for _, r := range text {
		switch r {
		case '\\':
			result.WriteString(`\\`)
		case '|':
			result.WriteString(`\|`)
		case '\r':
			// dropped; \n handles the break
		case '\n':
			result.WriteByte(' ')
		default:
			result.WriteRune(r)
		}
	}

	return result.String()
}
