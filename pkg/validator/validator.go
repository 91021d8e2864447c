// Package validator composes field checks into a single error.
//
//	err := validator.Apply(
//		validator.Required("email", req.Email),
//		validator.MaxLen("email", req.Email, 30),
//		validator.ValidEmail("email", req.Email),
//	)
//
// Every failing rule contributes one FieldError; Apply returns nil when
// all rules pass.
package validator

import (
	"errors"
	"fmt"
	"strings"
)

// FieldError is one failed check.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is the error returned by Apply.
type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ByField groups messages by field name.
func (e Errors) ByField() map[string][]string {
	out := make(map[string][]string, len(e))
	for _, fe := range e {
		out[fe.Field] = append(out[fe.Field], fe.Message)
	}
	return out
}

func (e Errors) Has(field string) bool {
	for _, fe := range e {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Rule is a deferred check.
type Rule struct {
	Check func() bool
	Error FieldError
}

// Apply runs all rules. Only the first failure per field is reported so
// "required" does not cascade into length and format messages.
func Apply(rules ...Rule) error {
	var errs Errors
	for _, r := range rules {
		if errs.Has(r.Error.Field) {
			continue
		}
		if !r.Check() {
			errs = append(errs, r.Error)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Extract returns the Errors inside err, if any.
func Extract(err error) (Errors, bool) {
	var errs Errors
	if errors.As(err, &errs) {
		return errs, true
	}
	return nil, false
}

// When applies r only if cond holds. Used for optional fields.
func When(cond bool, r Rule) Rule {
	return Rule{
		Check: func() bool { return !cond || r.Check() },
		Error: r.Error,
	}
}

func newRule(field, msg string, check func() bool) Rule {
	return Rule{Check: check, Error: FieldError{Field: field, Message: msg}}
}

func fmtMsg(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
