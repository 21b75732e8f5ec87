package mood

import (
	"strings"
	"unicode"
)

// ParseRating parses form input the way a browser's parseInt does: optional
// leading whitespace and sign, then digits, ignoring anything after them. The
// result is clamped into [MinRating, MaxRating]. Input with no leading digits
// returns nil.
func ParseRating(s string) *int {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	n, digits := 0, 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		digits++
		// Anything past this is clamped to MaxRating anyway.
		if n < 1_000_000 {
			n = n*10 + int(r-'0')
		}
	}
	if digits == 0 {
		return nil
	}
	if neg {
		n = -n
	}
	n = clampRating(n)
	return &n
}

func clampRating(n int) int {
	return max(MinRating, min(MaxRating, n))
}

// normalizeNote trims a note and maps an empty result to nil.
func normalizeNote(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
