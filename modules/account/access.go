package account

import (
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/edutrack/institute/core"
	"github.com/edutrack/institute/handler"
	"github.com/edutrack/institute/pkg/rbac"
	"github.com/edutrack/institute/svc/credential"
)

const (
	PermProfileRead  = "profile.read"
	PermProfileWrite = "profile.write"
	PermUsersRead    = "users.read"
)

var (
	ErrAdminRequired = core.Unauthorized("Admin permission is required to perform this operation.")
	ErrNotOwner      = core.Unauthorized("Access denied: You must be an admin or the owner of this resource.")
)

// DefaultRoles grants CLIENT its own profile, VENDOR course authoring on top
// of that, and ADMIN everything.
func DefaultRoles() map[string]rbac.Role {
	return map[string]rbac.Role{
		string(credential.RoleClient): {Permissions: []string{PermProfileRead, PermProfileWrite}},
		string(credential.RoleVendor): {Permissions: []string{"courses.*"}, Inherits: []string{string(credential.RoleClient)}},
		string(credential.RoleAdmin):  {Permissions: []string{"*"}, Inherits: []string{string(credential.RoleVendor)}},
	}
}

// RequireRole admits callers whose token role is one of roles. It must run
// after RequireAccess.
func RequireRole(roles ...credential.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r.Context())
			if !ok {
				handler.WriteError(w, r, core.ErrUnauthorized)
				return
			}
			if !slices.Contains(roles, credential.Role(claims.Role)) {
				handler.WriteError(w, r, ErrAdminRequired)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminOrSelf admits the owner of the account named by the URL parameter
// param, and any role granted perm.
func AdminOrSelf(az *rbac.Authorizer, perm, param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r.Context())
			if !ok {
				handler.WriteError(w, r, core.ErrUnauthorized)
				return
			}
			if claims.UID != chi.URLParam(r, param) && az.CanFromContext(r.Context(), perm) != nil {
				handler.WriteError(w, r, ErrNotOwner)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
