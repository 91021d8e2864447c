package auth

import (
	"net/http"

	"github.com/edutrack/institute/core"
)

var (
	ErrOTPNotFound    = core.NotFound("OTP not found")
	ErrInvalidOTP     = core.InvalidCredential("Invalid OTP")
	ErrOTPExpired     = core.Expired("OTP expired")
	ErrInvalidOTPType = core.ValidationFailed("Invalid OTP type")

	ErrInvalidLogin  = core.InvalidCredential("Invalid email or password")
	ErrAccountLocked = core.Locked("Account locked. Try again later.")
	ErrRefreshDenied = core.Forbidden("Unauthorized")
	ErrUserNotFound  = core.NotFound("User not found")
	ErrOldPassword   = core.ValidationFailed("Old password is incorrect")

	ErrEmailTaken = core.Conflict("User with this email already exists")
	ErrPhoneTaken = core.Conflict("User with this phone already exists")

	ErrRegistrationRolledBack = core.New(core.KindUpstream, http.StatusInternalServerError,
		"Failed to send OTP email. Registration was rolled back, please register again.")

	ErrUnknownProvider      = core.New(core.KindNotFound, http.StatusNotFound, "OAuth provider not supported")
	ErrOAuthState           = core.Unauthorized("Invalid OAuth state")
	ErrOAuthUpstream        = core.Upstream("OAuth provider request failed")
	ErrOAuthNoEmail         = core.ValidationFailed("OAuth account has no email address")
	ErrOAuthUnverifiedEmail = core.Conflict("Email is not verified by the OAuth provider")
	ErrFacebookDisabled     = core.NotImplemented("Facebook login is not implemented yet")
)

const (
	MsgOTPSent         = "OTP sent to your email"
	MsgPasswordUpdated = "Password updated successfully"
)
