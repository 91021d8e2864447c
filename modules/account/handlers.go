package account

import (
	"crypto/subtle"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/edutrack/institute/core"
	"github.com/edutrack/institute/handler"
	"github.com/edutrack/institute/pkg/logger"
	"github.com/edutrack/institute/svc/auth"
	"github.com/edutrack/institute/svc/credential"
	"github.com/edutrack/institute/svc/otp"
)

type sessionResponse struct {
	credential.PublicUser
	AccessToken string `json:"accessToken"`
}

type oauthResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Avatar      string `json:"avatar,omitempty"`
	AccessToken string `json:"accessToken"`
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
}

func (m *Module) register(ctx handler.Context, req RegisterRequest) handler.Response {
	u, err := m.svc.Register(ctx, auth.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
		Gender:   credential.Gender(req.Gender),
	})
	if err != nil {
		return handler.Error(err)
	}
	return handler.Created(u, "User registered successfully. "+auth.MsgOTPSent)
}

func (m *Module) login(ctx handler.Context, req LoginRequest) handler.Response {
	s, err := m.svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return handler.Error(err)
	}
	body := sessionResponse{PublicUser: s.User, AccessToken: s.Tokens.AccessToken}
	return handler.Before(handler.JSON(body, handler.WithMessage("Login successful")), func(w http.ResponseWriter) {
		m.setSession(w, s.Tokens)
	})
}

func (m *Module) logout(ctx handler.Context, _ struct{}) handler.Response {
	if c, err := ctx.Request().Cookie(RefreshCookie); err == nil {
		if err := m.svc.Logout(ctx, c.Value); err != nil {
			return handler.Error(err)
		}
	}
	return handler.Before(handler.Empty(), m.clearSession)
}

func (m *Module) refresh(ctx handler.Context, _ struct{}) handler.Response {
	c, err := ctx.Request().Cookie(RefreshCookie)
	if err != nil || c.Value == "" {
		return handler.Error(auth.ErrRefreshDenied)
	}
	pair, err := m.svc.Refresh(ctx, c.Value)
	if err != nil {
		return handler.Error(err)
	}
	return handler.Before(handler.JSON(tokenResponse{AccessToken: pair.AccessToken}), func(w http.ResponseWriter) {
		m.setSession(w, pair)
	})
}

func (m *Module) verifyOTP(ctx handler.Context, req VerifyOTPRequest) handler.Response {
	err := m.svc.VerifyOTP(ctx, auth.VerifyOTPInput{
		UserID:  req.UserID,
		Code:    req.OTP,
		Purpose: otp.Purpose(req.Type),
	})
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(map[string]bool{"success": true}, handler.WithMessage("OTP verified successfully"))
}

func (m *Module) forgotPassword(ctx handler.Context, req ForgotPasswordRequest) handler.Response {
	if err := m.svc.ForgotPassword(ctx, req.Email); err != nil {
		return handler.Error(err)
	}
	return handler.JSON(nil, handler.WithMessage(auth.MsgOTPSent))
}

func (m *Module) resetPassword(ctx handler.Context, req ResetPasswordRequest) handler.Response {
	err := m.svc.ResetPassword(ctx, auth.ResetPasswordInput{
		Email:       req.Email,
		Code:        req.OTP,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(nil, handler.WithMessage(auth.MsgPasswordUpdated))
}

func (m *Module) changePassword(ctx handler.Context, req ChangePasswordRequest) handler.Response {
	claims, ok := ClaimsFrom(ctx)
	if !ok {
		return handler.Error(core.ErrUnauthorized)
	}
	if err := m.svc.ChangePassword(ctx, claims.UID, req.OldPassword, req.NewPassword); err != nil {
		return handler.Error(err)
	}
	return handler.JSON(nil, handler.WithMessage(auth.MsgPasswordUpdated))
}

func (m *Module) profile(ctx handler.Context, _ struct{}) handler.Response {
	claims, ok := ClaimsFrom(ctx)
	if !ok {
		return handler.Error(core.ErrUnauthorized)
	}
	u, err := m.svc.Profile(ctx, claims.UID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(u)
}

func (m *Module) userByID(ctx handler.Context, _ struct{}) handler.Response {
	u, err := m.svc.Profile(ctx, chi.URLParam(ctx.Request(), "id"))
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(u)
}

// RoleInfo lists a role with its resolved permissions.
type RoleInfo struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

func (m *Module) roles(_ handler.Context, _ struct{}) handler.Response {
	names := m.authz.Roles()
	out := make([]RoleInfo, 0, len(names))
	for _, name := range names {
		out = append(out, RoleInfo{Name: name, Permissions: m.authz.Permissions(name)})
	}
	return handler.JSON(out)
}

func (m *Module) updateProfile(ctx handler.Context, req UpdateProfileRequest) handler.Response {
	claims, ok := ClaimsFrom(ctx)
	if !ok {
		return handler.Error(core.ErrUnauthorized)
	}
	u, err := m.svc.UpdateProfile(ctx, claims.UID, req.update())
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(u, handler.WithMessage("Profile updated successfully"))
}

func (m *Module) oauthStart(provider string) handler.HandlerFunc[handler.Context, struct{}] {
	return func(_ handler.Context, _ struct{}) handler.Response {
		state := uuid.NewString()
		target, err := m.svc.OAuthURL(provider, state)
		if err != nil {
			return handler.Error(err)
		}
		return handler.Before(handler.Redirect(target), func(w http.ResponseWriter) {
			m.setState(w, state)
		})
	}
}

func (m *Module) oauthCallback(provider string) handler.HandlerFunc[handler.Context, OAuthCallbackRequest] {
	return func(ctx handler.Context, req OAuthCallbackRequest) handler.Response {
		want, err := m.cookies.GetSigned(ctx.Request(), StateCookie)
		if err != nil || req.State == "" || subtle.ConstantTimeCompare([]byte(want), []byte(req.State)) != 1 {
			m.logger.WarnContext(ctx, "oauth state mismatch", logger.Provider(provider))
			return handler.Error(auth.ErrOAuthState)
		}
		if req.Error != "" || req.Code == "" {
			m.logger.InfoContext(ctx, "oauth consent not granted", logger.Provider(provider), logger.Event(req.Error))
			return handler.Error(auth.ErrOAuthState)
		}

		s, err := m.svc.OAuthCallback(ctx, provider, req.Code)
		if err != nil {
			return handler.Error(err)
		}
		body := oauthResponse{
			ID:          s.User.ID,
			Email:       s.User.Email,
			Name:        s.User.Name,
			Avatar:      s.User.Avatar,
			AccessToken: s.Tokens.AccessToken,
		}
		return handler.Before(handler.JSON(body, handler.WithMessage("Login successful")), func(w http.ResponseWriter) {
			m.clearState(w)
			m.setSession(w, s.Tokens)
		})
	}
}
