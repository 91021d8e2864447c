// Package account exposes the credential lifecycle over HTTP under /auth.
package account

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/edutrack/institute/core"
	"github.com/edutrack/institute/handler"
	"github.com/edutrack/institute/pkg/binder"
	"github.com/edutrack/institute/pkg/clientip"
	"github.com/edutrack/institute/pkg/cookie"
	"github.com/edutrack/institute/pkg/logger"
	"github.com/edutrack/institute/pkg/ratelimiter"
	"github.com/edutrack/institute/pkg/rbac"
	"github.com/edutrack/institute/svc/auth"
	"github.com/edutrack/institute/svc/credential"
	"github.com/edutrack/institute/svc/oauth"
	"github.com/edutrack/institute/svc/token"
)

// Service is the subset of *auth.Service the routes call.
type Service interface {
	Register(ctx context.Context, in auth.RegisterInput) (credential.PublicUser, error)
	VerifyOTP(ctx context.Context, in auth.VerifyOTPInput) error
	Login(ctx context.Context, email, password string) (auth.Session, error)
	Refresh(ctx context.Context, refresh string) (token.Pair, error)
	Logout(ctx context.Context, refresh string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, in auth.ResetPasswordInput) error
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	OAuthURL(provider, state string) (string, error)
	OAuthCallback(ctx context.Context, provider, code string) (auth.Session, error)
	Profile(ctx context.Context, userID string) (credential.PublicUser, error)
	UpdateProfile(ctx context.Context, userID string, upd credential.ProfileUpdate) (credential.PublicUser, error)
	VerifyAccess(tok string) (*token.Claims, error)
	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}

var _ Service = (*auth.Service)(nil)

type Module struct {
	svc      Service
	cookies  *cookie.Manager
	limiter  *ratelimiter.Bucket
	authz    *rbac.Authorizer
	onError  handler.ErrorHandler[handler.Context]
	logger   *slog.Logger
	stateTTL time.Duration
}

type Option func(*Module)

// WithRateLimiter throttles the credential-guessing endpoints per client IP.
func WithRateLimiter(b *ratelimiter.Bucket) Option {
	return func(m *Module) { m.limiter = b }
}

// WithAuthorizer replaces the DefaultRoles authorizer.
func WithAuthorizer(az *rbac.Authorizer) Option {
	return func(m *Module) {
		if az != nil {
			m.authz = az
		}
	}
}

func WithErrorHandler(h handler.ErrorHandler[handler.Context]) Option {
	return func(m *Module) {
		if h != nil {
			m.onError = h
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Module) {
		if l != nil {
			m.logger = l
		}
	}
}

func New(svc Service, cookies *cookie.Manager, opts ...Option) *Module {
	m := &Module{
		svc:      svc,
		cookies:  cookies,
		logger:   logger.Discard(),
		stateTTL: 10 * time.Minute,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.onError == nil {
		m.onError = handler.NewErrorHandler(m.logger)
	}
	if m.authz == nil {
		az, err := rbac.NewAuthorizer(DefaultRoles())
		if err != nil {
			panic(err)
		}
		m.authz = az
	}
	return m
}

// Routes returns the handler to mount at /auth.
func (m *Module) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(m.limit("register")).Post("/register", withBody(m, m.register))
	r.With(m.limit("login")).Post("/login", withBody(m, m.login))
	r.With(m.limit("verify_otp")).Post("/verify-otp", withBody(m, m.verifyOTP))
	r.With(m.limit("forgot_password")).Post("/forgot-password", withBody(m, m.forgotPassword))
	r.With(m.limit("reset_password")).Post("/verify-password", withBody(m, m.resetPassword))

	r.Get("/logout", noBody(m, m.logout))
	r.Post("/refresh-token", noBody(m, m.refresh))

	for _, p := range []string{oauth.ProviderGoogle, oauth.ProviderFacebook} {
		r.Get("/"+p, noBody(m, m.oauthStart(p)))
		r.Get("/"+p+"/callback", noBody(m, m.oauthCallback(p)))
	}

	r.Group(func(r chi.Router) {
		r.Use(RequireAccess(m.svc.VerifyAccess))
		r.Get("/me", noBody(m, m.profile))
		r.Patch("/me", withBody(m, m.updateProfile))
		r.Post("/change-password", withBody(m, m.changePassword))
		r.With(AdminOrSelf(m.authz, PermUsersRead, "id")).Get("/users/{id}", noBody(m, m.userByID))
		r.With(RequireRole(credential.RoleAdmin)).Get("/roles", noBody(m, m.roles))
	})

	return r
}

func (m *Module) limit(name string) func(http.Handler) http.Handler {
	if m.limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return ratelimiter.Middleware(m.limiter,
		ratelimiter.Composite(ratelimiter.Static(name), clientip.GetIP),
		ratelimiter.WithDeniedHandler(func(w http.ResponseWriter, r *http.Request, _ *ratelimiter.Result) {
			handler.WriteError(w, r, core.ErrRateLimited)
		}),
		ratelimiter.WithFailureHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			m.logger.ErrorContext(r.Context(), "rate limiter unavailable", logger.Error(err))
			handler.WriteError(w, r, err)
		}),
	)
}

// withBody binds a JSON body, then validates requests implementing
// binder.Validatable.
func withBody[R any](m *Module, h handler.HandlerFunc[handler.Context, R]) http.HandlerFunc {
	return handler.Wrap(h,
		handler.WithBinders[handler.Context, R](binder.JSON(), binder.Validate()),
		handler.WithErrorHandler[handler.Context, R](m.onError),
	)
}

// noBody binds query parameters only.
func noBody[R any](m *Module, h handler.HandlerFunc[handler.Context, R]) http.HandlerFunc {
	return handler.Wrap(h,
		handler.WithBinders[handler.Context, R](binder.Query(), binder.Validate()),
		handler.WithErrorHandler[handler.Context, R](m.onError),
	)
}
