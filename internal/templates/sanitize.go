package templates

import "strings"

// Sanitize maps every character outside [A-Za-z0-9_-] to '_' so a user
// supplied value can only ever name a single path segment.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return '_'
	}, s)
}
