package rendering

import (
	"strings"
	"unicode"

	"github.com/jonathan/resume-formatter/internal/types"
)

// DefaultBaseName is used when the record carries no usable name.
const DefaultBaseName = "resume"

// SafeFilename replaces characters that are unsafe in file names on common
// file systems and collapses runs of whitespace.
func SafeFilename(name string) string {
	if name == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(name))

	lastSpace := false
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' ||
			r == '"' || r == '<' || r == '>' || r == '|':
			result.WriteRune('_')
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				result.WriteRune(' ')
			}
			lastSpace = true
		case unicode.IsControl(r):
			// dropped
		default:
			result.WriteRune(r)
			lastSpace = false
		}
	}

	return strings.Trim(result.String(), " .")
}

// DocumentFilename returns "<name>.<ext>" for record, falling back to
// "resume.<ext>".
func DocumentFilename(record *types.ResumeRecord, format Format) string {
	base := ""
	if record != nil && record.Name.Available() {
		base = SafeFilename(record.Name.String())
	}
	if base == "" {
		base = DefaultBaseName
	}
	return base + "." + string(format)
}
