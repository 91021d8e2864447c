package rbac

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// MaxInheritanceDepth bounds role inheritance chains.
const MaxInheritanceDepth = 10

const (
	wildcard  = "*"
	delimiter = "."
)

var (
	ErrInvalidRole             = errors.New("rbac.invalid_role")
	ErrInsufficientPermissions = errors.New("rbac.insufficient_permissions")
	ErrRoleNotInContext        = errors.New("rbac.role_not_in_context")
	ErrCircularInheritance     = errors.New("rbac.circular_inheritance")
)

// Role is a set of permissions plus the roles it inherits from.
type Role struct {
	Permissions []string
	Inherits    []string
}

// Authorizer answers permission checks for a fixed set of roles. It is
// immutable after construction and safe for concurrent use.
type Authorizer struct {
	perms map[string][]string
	names []string
}

// NewAuthorizer resolves inheritance for every role. Circular or too deep
// inheritance is rejected.
func NewAuthorizer(roles map[string]Role) (*Authorizer, error) {
	a := &Authorizer{perms: make(map[string][]string, len(roles))}
	for name := range roles {
		perms, err := collect(name, roles, nil)
		if err != nil {
			return nil, err
		}
		slices.Sort(perms)
		a.perms[name] = slices.Compact(perms)
		a.names = append(a.names, name)
	}
	slices.Sort(a.names)
	return a, nil
}

func collect(name string, roles map[string]Role, path []string) ([]string, error) {
	if slices.Contains(path, name) {
		return nil, errors.Join(ErrCircularInheritance,
			fmt.Errorf("circular inheritance: %s -> %s", strings.Join(path, " -> "), name))
	}
	if len(path) > MaxInheritanceDepth {
		return nil, errors.Join(ErrCircularInheritance,
			fmt.Errorf("inheritance deeper than %d", MaxInheritanceDepth))
	}
	role, ok := roles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRole, name)
	}

	out := slices.Clone(role.Permissions)
	for _, parent := range role.Inherits {
		inherited, err := collect(parent, roles, append(path, name))
		if err != nil {
			return nil, err
		}
		out = append(out, inherited...)
	}
	return out, nil
}

// Can reports whether role holds permission, directly or inherited.
func (a *Authorizer) Can(role, permission string) error {
	perms, ok := a.perms[role]
	if !ok {
		return ErrInvalidRole
	}
	if !granted(perms, permission) {
		return ErrInsufficientPermissions
	}
	return nil
}

// CanAny reports whether role holds at least one of permissions.
func (a *Authorizer) CanAny(role string, permissions ...string) error {
	if len(permissions) == 0 {
		return nil
	}
	perms, ok := a.perms[role]
	if !ok {
		return ErrInvalidRole
	}
	for _, p := range permissions {
		if granted(perms, p) {
			return nil
		}
	}
	return ErrInsufficientPermissions
}

// CanFromContext checks the role stored by WithRole.
func (a *Authorizer) CanFromContext(ctx context.Context, permission string) error {
	role, ok := RoleFrom(ctx)
	if !ok {
		return errors.Join(ErrRoleNotInContext, ErrInsufficientPermissions)
	}
	return a.Can(role, permission)
}

// VerifyRole returns ErrInvalidRole for unknown roles.
func (a *Authorizer) VerifyRole(role string) error {
	if _, ok := a.perms[role]; !ok {
		return ErrInvalidRole
	}
	return nil
}

// Roles returns the role names in lexical order.
func (a *Authorizer) Roles() []string {
	return slices.Clone(a.names)
}

// Permissions returns the resolved permissions of role.
func (a *Authorizer) Permissions(role string) []string {
	return slices.Clone(a.perms[role])
}

func granted(perms []string, permission string) bool {
	if permission == "" {
		return false
	}
	for _, p := range perms {
		if matches(permission, p) {
			return true
		}
	}
	return false
}

func matches(permission, pattern string) bool {
	if permission == pattern || pattern == wildcard {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, delimiter+wildcard); ok {
		return strings.HasPrefix(permission, prefix+delimiter)
	}
	return false
}

type roleCtxKey struct{}

// WithRole stores the caller's role in ctx.
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleCtxKey{}, role)
}

func RoleFrom(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(roleCtxKey{}).(string)
	return role, ok
}
