package account

import (
	v "github.com/edutrack/institute/pkg/validator"
	"github.com/edutrack/institute/svc/credential"
	"github.com/edutrack/institute/svc/otp"
)

const (
	maxEmailLen = 30
	minPassword = 6
	maxPassword = 12
	minName     = 3
	maxName     = 12
	minPhone    = 10
	maxPhone    = 13
)

func emailRules(value string) []v.Rule {
	return []v.Rule{
		v.Required("email", value),
		v.MaxLen("email", value, maxEmailLen),
		v.ValidEmail("email", value),
	}
}

func passwordRules(field, value string) []v.Rule {
	return []v.Rule{
		v.Required(field, value),
		v.LenBetween(field, value, minPassword, maxPassword),
	}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
	Gender   string `json:"gender,omitempty"`
}

func (r *RegisterRequest) Validate() error {
	rules := emailRules(r.Email)
	rules = append(rules, passwordRules("password", r.Password)...)
	rules = append(rules,
		v.Required("name", r.Name),
		v.LenBetween("name", r.Name, minName, maxName),
		v.When(r.Phone != "", v.LenBetween("phone", r.Phone, minPhone, maxPhone)),
		v.When(r.Phone != "", v.Phone("phone", r.Phone)),
		v.When(r.Gender != "", v.OneOf("gender", credential.Gender(r.Gender),
			credential.GenderMale, credential.GenderFemale, credential.GenderOther)),
	)
	return v.Apply(rules...)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	return v.Apply(append(emailRules(r.Email), v.Required("password", r.Password))...)
}

type VerifyOTPRequest struct {
	UserID string `json:"userId"`
	OTP    string `json:"otp"`
	Type   string `json:"type"`
}

func (r *VerifyOTPRequest) Validate() error {
	return v.Apply(
		v.Required("userId", r.UserID),
		v.Required("otp", r.OTP),
		v.Digits("otp", r.OTP, otp.CodeLength),
		v.Required("type", r.Type),
		v.OneOf("type", otp.Purpose(r.Type), otp.PurposeEmail, otp.PurposePhone, otp.PurposePasswordReset),
	)
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r *ForgotPasswordRequest) Validate() error {
	return v.Apply(emailRules(r.Email)...)
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

func (r *ResetPasswordRequest) Validate() error {
	rules := emailRules(r.Email)
	rules = append(rules,
		v.Required("otp", r.OTP),
		v.Digits("otp", r.OTP, otp.CodeLength),
	)
	rules = append(rules, passwordRules("newPassword", r.NewPassword)...)
	return v.Apply(rules...)
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (r *ChangePasswordRequest) Validate() error {
	return v.Apply(append(passwordRules("newPassword", r.NewPassword), v.Required("oldPassword", r.OldPassword))...)
}

// UpdateProfileRequest fields are optional; absent means unchanged.
type UpdateProfileRequest struct {
	Name   *string `json:"name,omitempty"`
	Phone  *string `json:"phone,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}

func (r *UpdateProfileRequest) Validate() error {
	return v.Apply(
		v.When(r.Name != nil, v.LenBetween("name", deref(r.Name), minName, maxName)),
		v.When(r.Phone != nil, v.LenBetween("phone", deref(r.Phone), minPhone, maxPhone)),
		v.When(r.Phone != nil, v.Phone("phone", deref(r.Phone))),
		v.When(r.Avatar != nil, v.MaxLen("avatar", deref(r.Avatar), 2048)),
	)
}

func (r *UpdateProfileRequest) update() credential.ProfileUpdate {
	return credential.ProfileUpdate{Name: r.Name, Phone: r.Phone, Avatar: r.Avatar}
}

type OAuthCallbackRequest struct {
	Code  string `query:"code"`
	State string `query:"state"`
	Error string `query:"error"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
