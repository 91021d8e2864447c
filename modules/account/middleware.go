package account

import (
	"context"
	"net/http"

	"github.com/edutrack/institute/core"
	"github.com/edutrack/institute/handler"
	"github.com/edutrack/institute/pkg/jwt"
	"github.com/edutrack/institute/pkg/rbac"
	"github.com/edutrack/institute/svc/token"
)

// RequireAccess admits requests carrying a valid access token, read from
// the Bearer header or else the access cookie, and stores its claims and
// role.
func RequireAccess(verify func(string) (*token.Claims, error)) func(http.Handler) http.Handler {
	extract := jwt.FirstOf(jwt.FromBearer, jwt.FromCookie(AccessCookie))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := extract(r)
			if err != nil {
				handler.WriteError(w, r, core.ErrUnauthorized)
				return
			}
			claims, err := verify(raw)
			if err != nil {
				handler.WriteError(w, r, core.ErrUnauthorized)
				return
			}
			ctx := rbac.WithRole(jwt.WithClaims(r.Context(), claims), claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFrom returns the claims RequireAccess stored.
func ClaimsFrom(ctx context.Context) (*token.Claims, bool) {
	return jwt.ClaimsFrom[*token.Claims](ctx)
}
