package core

import "strings"

// CleanString strips surrounding whitespace; pass true to also lowercase,
// for case-insensitive values like emails.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		s = strings.ToLower(s)
	}
	return s
}
