package core

import "strings"

// CleanString trims surrounding whitespace from s; pass lower=true to also
// fold the result to lower case (emails).
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		s = strings.ToLower(s)
	}
	return s
}
