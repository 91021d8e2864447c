// Package sanitizer normalizes user-supplied strings before validation and
// storage.
package sanitizer

import (
	"strings"
	"unicode"
)

// Trim removes surrounding whitespace and control characters.
func Trim(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	})
}

// SingleLine collapses all whitespace runs, including newlines, into one space.
func SingleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeEmail trims and lowercases an address. Emails are unique
// case-insensitively, so this is applied before every lookup and insert.
func NormalizeEmail(email string) string {
	return strings.ToLower(Trim(email))
}

// NormalizePhone keeps digits and a single leading "+".
func NormalizePhone(phone string) string {
	phone = Trim(phone)
	var b strings.Builder
	for i, r := range phone {
		if unicode.IsDigit(r) || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MaskEmail hides most of the local part, for logs: "annabel@x.com" -> "a*****l@x.com".
func MaskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		return strings.Repeat("*", len(email))
	}
	switch n := len(local); {
	case n <= 1:
		return "*@" + domain
	case n == 2:
		return local[:1] + "*@" + domain
	default:
		return local[:1] + strings.Repeat("*", n-2) + local[n-1:] + "@" + domain
	}
}
