package validator

import (
	"net/mail"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

func Required(field, value string) Rule {
	return newRule(field, "is required", func() bool {
		return strings.TrimSpace(value) != ""
	})
}

func MinLen(field, value string, n int) Rule {
	return newRule(field, fmtMsg("must be at least %d characters", n), func() bool {
		return utf8.RuneCountInString(value) >= n
	})
}

func MaxLen(field, value string, n int) Rule {
	return newRule(field, fmtMsg("must be at most %d characters", n), func() bool {
		return utf8.RuneCountInString(value) <= n
	})
}

// LenBetween checks an inclusive character range.
func LenBetween(field, value string, lo, hi int) Rule {
	return newRule(field, fmtMsg("must be between %d and %d characters", lo, hi), func() bool {
		n := utf8.RuneCountInString(value)
		return n >= lo && n <= hi
	})
}

// ValidEmail accepts a bare address only, not "Name <addr>".
func ValidEmail(field, value string) Rule {
	return newRule(field, "must be a valid email address", func() bool {
		addr, err := mail.ParseAddress(value)
		return err == nil && addr.Address == value && strings.Contains(value[strings.LastIndex(value, "@"):], ".")
	})
}

// Digits requires exactly n ASCII digits.
func Digits(field, value string, n int) Rule {
	return newRule(field, fmtMsg("must be %d digits", n), func() bool {
		if len(value) != n {
			return false
		}
		for _, c := range value {
			if c < '0' || c > '9' {
				return false
			}
		}
		return true
	})
}

// Phone allows digits with an optional leading "+".
func Phone(field, value string) Rule {
	return newRule(field, "must be a valid phone number", func() bool {
		v := strings.TrimPrefix(value, "+")
		if v == "" {
			return false
		}
		return strings.IndexFunc(v, func(r rune) bool { return !unicode.IsDigit(r) }) == -1
	})
}

func OneOf[T comparable](field string, value T, options ...T) Rule {
	return newRule(field, fmtMsg("must be one of %v", options), func() bool {
		return slices.Contains(options, value)
	})
}
