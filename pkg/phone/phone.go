// Package phone normalizes phone numbers to the digits-only canonical form
// stored on profiles.
package phone

import "strings"

// Canonical strips every non-digit character. "+55 (11) 98765-4321" becomes
// "5511987654321".
func Canonical(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Valid reports whether the canonical form has a plausible length for a
// Brazilian number with country code (10-13 digits).
func Valid(canonical string) bool {
	n := len(canonical)
	return n >= 10 && n <= 13
}
