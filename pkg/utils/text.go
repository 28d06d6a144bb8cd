// Package utils provides shared utilities for text, math, and logging.
package utils

// TruncateRunes returns s cut to at most maxRunes runes. Unlike a byte slice it never splits a
// multi-byte character. If maxRunes is 0 or negative, returns s unchanged.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 || len(s) <= maxRunes {
		return s
	}
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i]
		}
		n++
	}
	return s
}
