// Package templates renders transactional email bodies. Components live in
// .templ files; regenerate the _templ.go output after editing them.
package templates

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.924 generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCase = cases.Title(language.Und)

// OTPParams feeds the one-time code templates.
type OTPParams struct {
	OrgName   string
	Name      string
	Code      string
	ValidMins int
}

// Greeting returns the recipient's display name in title case.
func (p OTPParams) Greeting() string {
	if strings.TrimSpace(p.Name) == "" {
		return "there"
	}
	return titleCase.String(strings.TrimSpace(p.Name))
}

// VerificationSubject is "Welcome to <org>, <Name>!".
func VerificationSubject(p OTPParams) string {
	return fmt.Sprintf("Welcome to %s, %s!", p.OrgName, p.Greeting())
}

// PasswordResetSubject is used for password_reset codes.
func PasswordResetSubject(p OTPParams) string {
	return fmt.Sprintf("%s password reset code", p.OrgName)
}

// Render writes a component into a string.
func Render(ctx context.Context, c templ.Component) (string, error) {
	var sb strings.Builder
	if err := c.Render(ctx, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}
