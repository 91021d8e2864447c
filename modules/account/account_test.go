package account_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edutrack/institute/core"
	"github.com/edutrack/institute/handler"
	"github.com/edutrack/institute/modules/account"
	"github.com/edutrack/institute/pkg/cookie"
	"github.com/edutrack/institute/pkg/ratelimiter"
	"github.com/edutrack/institute/pkg/rbac"
	"github.com/edutrack/institute/svc/auth"
	"github.com/edutrack/institute/svc/credential"
	"github.com/edutrack/institute/svc/otp"
	"github.com/edutrack/institute/svc/token"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Register(ctx context.Context, in auth.RegisterInput) (credential.PublicUser, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(credential.PublicUser), args.Error(1)
}

func (m *mockService) VerifyOTP(ctx context.Context, in auth.VerifyOTPInput) error {
	return m.Called(ctx, in).Error(0)
}

func (m *mockService) Login(ctx context.Context, email, password string) (auth.Session, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(auth.Session), args.Error(1)
}

func (m *mockService) Refresh(ctx context.Context, refresh string) (token.Pair, error) {
	args := m.Called(ctx, refresh)
	return args.Get(0).(token.Pair), args.Error(1)
}

func (m *mockService) Logout(ctx context.Context, refresh string) error {
	return m.Called(ctx, refresh).Error(0)
}

func (m *mockService) ForgotPassword(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockService) ResetPassword(ctx context.Context, in auth.ResetPasswordInput) error {
	return m.Called(ctx, in).Error(0)
}

func (m *mockService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	return m.Called(ctx, userID, oldPassword, newPassword).Error(0)
}

func (m *mockService) OAuthURL(provider, state string) (string, error) {
	args := m.Called(provider, state)
	return args.String(0), args.Error(1)
}

func (m *mockService) OAuthCallback(ctx context.Context, provider, code string) (auth.Session, error) {
	args := m.Called(ctx, provider, code)
	return args.Get(0).(auth.Session), args.Error(1)
}

func (m *mockService) Profile(ctx context.Context, userID string) (credential.PublicUser, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(credential.PublicUser), args.Error(1)
}

func (m *mockService) UpdateProfile(ctx context.Context, userID string, upd credential.ProfileUpdate) (credential.PublicUser, error) {
	args := m.Called(ctx, userID, upd)
	return args.Get(0).(credential.PublicUser), args.Error(1)
}

func (m *mockService) VerifyAccess(tok string) (*token.Claims, error) {
	args := m.Called(tok)
	c, _ := args.Get(0).(*token.Claims)
	return c, args.Error(1)
}

func (m *mockService) AccessTTL() time.Duration { return time.Hour }

func (m *mockService) RefreshTTL() time.Duration { return 480 * time.Hour }

var session = auth.Session{
	User:   credential.PublicUser{ID: "64b7f0c2a1b2c3d4e5f60718", Email: "ann@example.com", Name: "Ann"},
	Tokens: token.Pair{AccessToken: "access-1", RefreshToken: "refresh-1"},
}

func newServer(t *testing.T, opts ...account.Option) (*mockService, http.Handler) {
	t.Helper()
	svc := &mockService{}
	cookies, err := cookie.New([]string{"0123456789abcdef0123456789abcdef"}, cookie.WithSecure(true))
	require.NoError(t, err)
	return svc, account.New(svc, cookies, opts...).Routes()
}

func do(h http.Handler, method, target, body string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, fn := range mutate {
		fn(req)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func envelope(t *testing.T, rec *httptest.ResponseRecorder) handler.Envelope {
	t.Helper()
	var env handler.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("validation", func(t *testing.T) {
		t.Parallel()
		svc, h := newServer(t)

		rec := do(h, http.MethodPost, "/register", `{"email":"not-an-email","password":"123","name":"Al","gender":"ROBOT"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		env := envelope(t, rec)
		assert.Equal(t, "error", env.Status)
		assert.Equal(t, 400, env.StatusCode)
		fields, ok := env.Data.(map[string]any)
		require.True(t, ok)
		assert.Contains(t, fields, "email")
		assert.Contains(t, fields, "password")
		assert.Contains(t, fields, "name")
		assert.Contains(t, fields, "gender")
		svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})

	t.Run("email too long", func(t *testing.T) {
		t.Parallel()
		_, h := newServer(t)
		rec := do(h, http.MethodPost, "/register", `{"email":"a-very-long-local-part@example.com","password":"secret1","name":"Ann"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "email must be at most 30 characters", envelope(t, rec).Message)
	})

	t.Run("created", func(t *testing.T) {
		t.Parallel()
		svc, h := newServer(t)
		svc.On("Register", mock.Anything, auth.RegisterInput{
			Email:    "ann@example.com",
			Password: "secret1",
			Name:     "Ann",
			Gender:   credential.GenderFemale,
		}).Return(session.User, nil)

		rec := do(h, http.MethodPost, "/register", `{"email":"ann@example.com","password":"secret1","name":"Ann","gender":"FEMALE"}`)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "success", envelope(t, rec).Status)
	})

	t.Run("conflict", func(t *testing.T) {
		t.Parallel()
		svc, h := newServer(t)
		svc.On("Register", mock.Anything, mock.Anything).Return(credential.PublicUser{}, auth.ErrEmailTaken)

		rec := do(h, http.MethodPost, "/register", `{"email":"ann@example.com","password":"secret1","name":"Ann"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "User with this email already exists", envelope(t, rec).Message)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("sets session cookies", func(t *testing.T) {
		t.Parallel()
		svc, h := newServer(t)
		svc.On("Login", mock.Anything, "ann@example.com", "secret1").Return(session, nil)

		rec := do(h, http.MethodPost, "/login", `{"email":"ann@example.com","password":"secret1"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		data := envelope(t, rec).Data.(map[string]any)
		assert.Equal(t, "access-1", data["accessToken"])
		assert.Equal(t, "ann@example.com", data["email"])
		assert.NotContains(t, data, "password")
		assert.NotContains(t, data, "refreshToken")

		refresh := cookieNamed(rec, account.RefreshCookie)
		require.NotNil(t, refresh)
		assert.Equal(t, "refresh-1", refresh.Value)
		assert.True(t, refresh.HttpOnly)
		assert.True(t, refresh.Secure)
		assert.Equal(t, http.SameSiteStrictMode, refresh.SameSite)
		assert.Equal(t, int((480 * time.Hour).Seconds()), refresh.MaxAge)

		access := cookieNamed(rec, account.AccessCookie)
		require.NotNil(t, access)
		assert.Equal(t, 3600, access.MaxAge)
	})

	t.Run("locked", func(t *testing.T) {
		t.Parallel()
		svc, h := newServer(t)
		svc.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(auth.Session{}, auth.ErrAccountLocked)

		rec := do(h, http.MethodPost, "/login", `{"email":"ann@example.com","password":"secret1"}`)
		assert.Equal(t, http.StatusLocked, rec.Code)
		assert.Nil(t, cookieNamed(rec, account.RefreshCookie))
	})

	t.Run("unsupported media type", func(t *testing.T) {
		t.Parallel()
		_, h := newServer(t)
		rec := do(h, http.MethodPost, "/login", "", func(r *http.Request) {
			r.Body = http.NoBody
			r.Header.Set("Content-Type", "text/plain")
		})
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("rate limited", func(t *testing.T) {
		t.Parallel()
		bucket, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), ratelimiter.Config{
			Capacity:       1,
			RefillRate:     1,
			RefillInterval: time.Hour,
		})
		require.NoError(t, err)
		svc, h := newServer(t, account.WithRateLimiter(bucket))
		svc.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(auth.Session{}, auth.ErrInvalidLogin)

		body := `{"email":"ann@example.com","password":"wrong1"}`
		assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodPost, "/login", body).Code)

		rec := do(h, http.MethodPost, "/login", body)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, core.ErrRateLimited.Message, envelope(t, rec).Message)
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
		svc.AssertNumberOfCalls(t, "Login", 1)
	})
}

func withCookie(name, value string) func(*http.Request) {
	return func(r *http.Request) { r.AddCookie(&http.Cookie{Name: name, Value: value}) }
}

func TestRefreshAndLogout(t *testing.T) {
	t.Parallel()

	t.Run("refresh without cookie", func(t *testing.T) {
		t.Parallel()
		_, h := newServer(t)
		rec := do(h, http.MethodPost, "/refresh-token", "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Unauthorized", envelope(t, rec).Message)
	})

	t.Run("refresh rotates cookie", func(t *testing.T) {
		t.Parallel()
		svc, h := newServer(t)
		svc.On("Refresh", mock.Anything, "refresh-1").Return(token.Pair{AccessToken: "access-2", RefreshToken: "refresh-2"}, nil)

		rec := do(h, http.MethodPost, "/refresh-token", "", withCookie(account.RefreshCookie, "refresh-1"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "access-2", envelope(t, rec).Data.(map[string]any)["accessToken"])
		assert.Equal(t, "refresh-2", cookieNamed(rec, account.RefreshCookie).Value)
	})

	t.Run("logout clears cookies", func(t *testing.T) {
		t.Parallel()
		svc, h := newServer(t)
		svc.On("Logout", mock.Anything, "refresh-1").Return(nil)

		rec := do(h, http.MethodGet, "/logout", "", withCookie(account.RefreshCookie, "refresh-1"))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		for _, name := range []string{account.AccessCookie, account.RefreshCookie} {
			c := cookieNamed(rec, name)
			require.NotNil(t, c, name)
			assert.Negative(t, c.MaxAge)
		}
		svc.AssertExpectations(t)
	})

	t.Run("logout without cookie", func(t *testing.T) {
		t.Parallel()
		svc, h := newServer(t)
		assert.Equal(t, http.StatusNoContent, do(h, http.MethodGet, "/logout", "").Code)
		svc.AssertNotCalled(t, "Logout", mock.Anything, mock.Anything)
	})
}

func TestOTPAndPasswords(t *testing.T) {
	t.Parallel()

	t.Run("verify otp", func(t *testing.T) {
		t.Parallel()
		svc, h := newServer(t)
		svc.On("VerifyOTP", mock.Anything, auth.VerifyOTPInput{UserID: "u1", Code: "123456", Purpose: otp.PurposeEmail}).Return(nil)

		rec := do(h, http.MethodPost, "/verify-otp", `{"userId":"u1","otp":"123456","type":"email"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, map[string]any{"success": true}, envelope(t, rec).Data)
	})

	t.Run("verify otp expired", func(t *testing.T) {
		t.Parallel()
		svc, h := newServer(t)
		svc.On("VerifyOTP", mock.Anything, mock.Anything).Return(auth.ErrOTPExpired)

		rec := do(h, http.MethodPost, "/verify-otp", `{"userId":"u1","otp":"123456","type":"email"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "OTP expired", envelope(t, rec).Message)
	})

	t.Run("forgot password", func(t *testing.T) {
		t.Parallel()
		svc, h := newServer(t)
		svc.On("ForgotPassword", mock.Anything, "ann@example.com").Return(nil)

		rec := do(h, http.MethodPost, "/forgot-password", `{"email":"ann@example.com"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, auth.MsgOTPSent, envelope(t, rec).Message)
	})

	t.Run("reset password", func(t *testing.T) {
		t.Parallel()
		svc, h := newServer(t)
		svc.On("ResetPassword", mock.Anything, auth.ResetPasswordInput{Email: "ann@example.com", Code: "654321", NewPassword: "newpass1"}).Return(nil)

		rec := do(h, http.MethodPost, "/verify-password", `{"email":"ann@example.com","otp":"654321","newPassword":"newpass1"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, auth.MsgPasswordUpdated, envelope(t, rec).Message)
	})
}

func TestAuthenticatedRoutes(t *testing.T) {
	t.Parallel()

	claims := &token.Claims{UID: "64b7f0c2a1b2c3d4e5f60718", Email: "ann@example.com", Kind: token.KindAccess}

	t.Run("requires token", func(t *testing.T) {
		t.Parallel()
		_, h := newServer(t)
		rec := do(h, http.MethodGet, "/me", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Unauthorized", envelope(t, rec).Message)
	})

	t.Run("rejects invalid token", func(t *testing.T) {
		t.Parallel()
		svc, h := newServer(t)
		svc.On("VerifyAccess", "bad").Return(nil, token.ErrInvalidToken)
		rec := do(h, http.MethodGet, "/me", "", func(r *http.Request) { r.Header.Set("Authorization", "Bearer bad") })
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("profile via cookie", func(t *testing.T) {
		t.Parallel()
		svc, h := newServer(t)
		svc.On("VerifyAccess", "access-1").Return(claims, nil)
		svc.On("Profile", mock.Anything, claims.UID).Return(session.User, nil)

		rec := do(h, http.MethodGet, "/me", "", withCookie(account.AccessCookie, "access-1"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ann@example.com", envelope(t, rec).Data.(map[string]any)["email"])
	})

	t.Run("update profile", func(t *testing.T) {
		t.Parallel()
		svc, h := newServer(t)
		name := "Annie"
		svc.On("VerifyAccess", "access-1").Return(claims, nil)
		svc.On("UpdateProfile", mock.Anything, claims.UID, credential.ProfileUpdate{Name: &name}).Return(session.User, nil)

		rec := do(h, http.MethodPatch, "/me", `{"name":"Annie"}`, func(r *http.Request) { r.Header.Set("Authorization", "Bearer access-1") })
		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("change password", func(t *testing.T) {
		t.Parallel()
		svc, h := newServer(t)
		svc.On("VerifyAccess", "access-1").Return(claims, nil)
		svc.On("ChangePassword", mock.Anything, claims.UID, "secret1", "newpass1").Return(auth.ErrOldPassword)

		rec := do(h, http.MethodPost, "/change-password", `{"oldPassword":"secret1","newPassword":"newpass1"}`,
			func(r *http.Request) { r.Header.Set("Authorization", "Bearer access-1") })
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Old password is incorrect", envelope(t, rec).Message)
	})
}

func TestOAuth(t *testing.T) {
	t.Parallel()

	start := func(t *testing.T, h http.Handler, svc *mockService, provider string) *http.Cookie {
		t.Helper()
		svc.On("OAuthURL", provider, mock.AnythingOfType("string")).Return("https://accounts.example.com/o/oauth2/auth", nil)

		rec := do(h, http.MethodGet, "/"+provider, "")
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "https://accounts.example.com/o/oauth2/auth", rec.Header().Get("Location"))

		state := cookieNamed(rec, account.StateCookie)
		require.NotNil(t, state)
		assert.Equal(t, 600, state.MaxAge)
		assert.Equal(t, http.SameSiteLaxMode, state.SameSite)
		return state
	}

	stateOf := func(svc *mockService) string {
		for _, c := range svc.Calls {
			if c.Method == "OAuthURL" {
				return c.Arguments.String(1)
			}
		}
		return ""
	}

	t.Run("google round trip", func(t *testing.T) {
		t.Parallel()
		svc, h := newServer(t)
		stateCookie := start(t, h, svc, "google")
		state := stateOf(svc)
		svc.On("OAuthCallback", mock.Anything, "google", "code-1").Return(session, nil)

		rec := do(h, http.MethodGet, "/google/callback?"+url.Values{"code": {"code-1"}, "state": {state}}.Encode(), "",
			func(r *http.Request) { r.AddCookie(stateCookie) })
		require.Equal(t, http.StatusOK, rec.Code)

		data := envelope(t, rec).Data.(map[string]any)
		assert.Equal(t, session.User.ID, data["id"])
		assert.Equal(t, "access-1", data["accessToken"])
		assert.Equal(t, "refresh-1", cookieNamed(rec, account.RefreshCookie).Value)
	})

	t.Run("state mismatch", func(t *testing.T) {
		t.Parallel()
		svc, h := newServer(t)
		stateCookie := start(t, h, svc, "google")

		rec := do(h, http.MethodGet, "/google/callback?code=code-1&state=forged", "", func(r *http.Request) { r.AddCookie(stateCookie) })
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		svc.AssertNotCalled(t, "OAuthCallback", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing state cookie", func(t *testing.T) {
		t.Parallel()
		_, h := newServer(t)
		rec := do(h, http.MethodGet, "/google/callback?code=code-1&state=abc", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("facebook not implemented", func(t *testing.T) {
		t.Parallel()
		svc, h := newServer(t)
		stateCookie := start(t, h, svc, "facebook")
		state := stateOf(svc)
		svc.On("OAuthCallback", mock.Anything, "facebook", "code-1").Return(auth.Session{}, auth.ErrFacebookDisabled)

		rec := do(h, http.MethodGet, "/facebook/callback?code=code-1&state="+url.QueryEscape(state), "",
			func(r *http.Request) { r.AddCookie(stateCookie) })
		assert.Equal(t, http.StatusNotImplemented, rec.Code)
		assert.Equal(t, "error", envelope(t, rec).Status)
	})
}

func TestAccessControl(t *testing.T) {
	t.Parallel()

	const (
		ownerID = "64b7f0c2a1b2c3d4e5f60718"
		otherID = "64b7f0c2a1b2c3d4e5f60799"
	)
	client := &token.Claims{UID: ownerID, Email: "ann@example.com", Role: string(credential.RoleClient), Kind: token.KindAccess}
	vendor := &token.Claims{UID: otherID, Email: "vic@example.com", Role: string(credential.RoleVendor), Kind: token.KindAccess}
	admin := &token.Claims{UID: "64b7f0c2a1b2c3d4e5f60700", Email: "root@example.com", Role: string(credential.RoleAdmin), Kind: token.KindAccess}
	bearer := func(tok string) func(*http.Request) {
		return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }
	}

	t.Run("user by id requires token", func(t *testing.T) {
		t.Parallel()
		_, h := newServer(t)
		rec := do(h, http.MethodGet, "/users/"+ownerID, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Unauthorized", envelope(t, rec).Message)
	})

	t.Run("self may read own account", func(t *testing.T) {
		t.Parallel()
		svc, h := newServer(t)
		svc.On("VerifyAccess", "client").Return(client, nil)
		svc.On("Profile", mock.Anything, ownerID).Return(session.User, nil)

		rec := do(h, http.MethodGet, "/users/"+ownerID, "", bearer("client"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ann@example.com", envelope(t, rec).Data.(map[string]any)["email"])
	})

	t.Run("other non-admin is denied", func(t *testing.T) {
		t.Parallel()
		svc, h := newServer(t)
		svc.On("VerifyAccess", "vendor").Return(vendor, nil)

		rec := do(h, http.MethodGet, "/users/"+ownerID, "", bearer("vendor"))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, account.ErrNotOwner.Message, envelope(t, rec).Message)
		svc.AssertNotCalled(t, "Profile", mock.Anything, mock.Anything)
	})

	t.Run("admin may read any account", func(t *testing.T) {
		t.Parallel()
		svc, h := newServer(t)
		svc.On("VerifyAccess", "admin").Return(admin, nil)
		svc.On("Profile", mock.Anything, ownerID).Return(session.User, nil)

		rec := do(h, http.MethodGet, "/users/"+ownerID, "", bearer("admin"))
		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("admin sees not found", func(t *testing.T) {
		t.Parallel()
		svc, h := newServer(t)
		svc.On("VerifyAccess", "admin").Return(admin, nil)
		svc.On("Profile", mock.Anything, "nope").Return(credential.PublicUser{}, auth.ErrUserNotFound)

		rec := do(h, http.MethodGet, "/users/nope", "", bearer("admin"))
		assert.Equal(t, auth.ErrUserNotFound.Code, rec.Code)
	})

	t.Run("roles denied to non-admin", func(t *testing.T) {
		t.Parallel()
		svc, h := newServer(t)
		svc.On("VerifyAccess", "vendor").Return(vendor, nil)

		rec := do(h, http.MethodGet, "/roles", "", bearer("vendor"))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, account.ErrAdminRequired.Message, envelope(t, rec).Message)
	})

	t.Run("roles listed for admin", func(t *testing.T) {
		t.Parallel()
		svc, h := newServer(t)
		svc.On("VerifyAccess", "admin").Return(admin, nil)

		rec := do(h, http.MethodGet, "/roles", "", bearer("admin"))
		require.Equal(t, http.StatusOK, rec.Code)
		roles := envelope(t, rec).Data.([]any)
		require.Len(t, roles, 3)
		assert.Equal(t, "ADMIN", roles[0].(map[string]any)["name"])
	})

	t.Run("custom authorizer", func(t *testing.T) {
		t.Parallel()
		az, err := rbac.NewAuthorizer(map[string]rbac.Role{
			string(credential.RoleVendor): {Permissions: []string{account.PermUsersRead}},
		})
		require.NoError(t, err)
		svc, h := newServer(t, account.WithAuthorizer(az))
		svc.On("VerifyAccess", "vendor").Return(vendor, nil)
		svc.On("Profile", mock.Anything, ownerID).Return(session.User, nil)

		rec := do(h, http.MethodGet, "/users/"+ownerID, "", bearer("vendor"))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestDefaultRoles(t *testing.T) {
	t.Parallel()

	az, err := rbac.NewAuthorizer(account.DefaultRoles())
	require.NoError(t, err)

	assert.NoError(t, az.Can(string(credential.RoleVendor), account.PermProfileWrite))
	assert.NoError(t, az.Can(string(credential.RoleAdmin), account.PermUsersRead))
	assert.ErrorIs(t, az.Can(string(credential.RoleClient), account.PermUsersRead), rbac.ErrInsufficientPermissions)
	assert.ErrorIs(t, az.Can(string(credential.RoleVendor), account.PermUsersRead), rbac.ErrInsufficientPermissions)
}
