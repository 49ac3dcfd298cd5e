// Package normalize provides canonical text forms for address field values.
// This is part of the platform layer and contains no business logic.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

// Dutch postal codes: four digits followed by two letters, e.g. "1234AB".
var postcodePattern = regexp.MustCompile(`^[0-9]{4}[A-Z]{2}$`)

// Fold returns a comparable canonical form of a field value: leading and
// trailing whitespace removed, internal whitespace runs collapsed to a
// single space, and the result lower-cased.
func Fold(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !prevSpace {
				b.WriteByte(' ')
				prevSpace = true
			}
			continue
		}
		b.WriteRune(unicode.ToLower(r))
		prevSpace = false
	}

	return strings.TrimSpace(b.String())
}

// Postcode returns the canonical form of a postal code: all whitespace
// stripped and letters upper-cased, so "1234 ab" becomes "1234AB".
func Postcode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// ValidPostcode reports whether s normalizes to the Dutch postal code shape.
func ValidPostcode(s string) bool {
	return postcodePattern.MatchString(Postcode(s))
}
