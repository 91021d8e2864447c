package validator_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edutrack/institute/pkg/validator"
)

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("all pass", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.Required("email", "a@x.com"),
			validator.ValidEmail("email", "a@x.com"),
			validator.LenBetween("password", "secret1", 6, 12),
		)
		assert.NoError(t, err)
	})

	t.Run("first failure per field only", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.Required("email", ""),
			validator.ValidEmail("email", ""),
			validator.LenBetween("password", "abc", 6, 12),
		)
		errs, ok := validator.Extract(err)
		require.True(t, ok)
		assert.Len(t, errs, 2)
		assert.Equal(t, map[string][]string{
			"email":    {"is required"},
			"password": {"must be between 6 and 12 characters"},
		}, errs.ByField())
	})

	t.Run("extract through wrapping", func(t *testing.T) {
		t.Parallel()
		err := fmt.Errorf("register: %w", validator.Apply(validator.Required("name", " ")))
		errs, ok := validator.Extract(err)
		require.True(t, ok)
		assert.True(t, errs.Has("name"))
	})

	t.Run("when skips optional field", func(t *testing.T) {
		t.Parallel()
		phone := ""
		assert.NoError(t, validator.Apply(validator.When(phone != "", validator.Phone("phone", phone))))
		phone = "12ab"
		assert.Error(t, validator.Apply(validator.When(phone != "", validator.Phone("phone", phone))))
	})
}

func TestRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rule validator.Rule
		ok   bool
	}{
		{"email ok", validator.ValidEmail("e", "ann@x.com"), true},
		{"email display name", validator.ValidEmail("e", "Ann <ann@x.com>"), false},
		{"email no tld", validator.ValidEmail("e", "ann@x"), false},
		{"max len ok", validator.MaxLen("e", "abc", 3), true},
		{"max len fail", validator.MaxLen("e", "abcd", 3), false},
		{"min len counts runes", validator.MinLen("n", "äöü", 3), true},
		{"digits ok", validator.Digits("otp", "012345", 6), true},
		{"digits short", validator.Digits("otp", "12345", 6), false},
		{"digits alpha", validator.Digits("otp", "12a456", 6), false},
		{"phone plus", validator.Phone("p", "+919876543210"), true},
		{"phone dash", validator.Phone("p", "98-76"), false},
		{"one of", validator.OneOf("g", "MALE", "MALE", "FEMALE", "OTHER"), true},
		{"not one of", validator.OneOf("g", "male", "MALE", "FEMALE", "OTHER"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.ok, tt.rule.Check())
		})
	}
}
