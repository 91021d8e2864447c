// Package rbac maps roles to permission scopes and answers whether a role
// may perform an action.
//
// Permissions are dot-separated scopes such as "users.read". A trailing
// wildcard grants a whole subtree ("users.*") and a bare "*" grants
// everything. Roles may inherit the permissions of other roles; the full set
// is computed once in NewAuthorizer, so checks are lookups.
//
//	az, err := rbac.NewAuthorizer(map[string]rbac.Role{
//	    "CLIENT": {Permissions: []string{"profile.read", "profile.write"}},
//	    "ADMIN":  {Permissions: []string{"*"}, Inherits: []string{"CLIENT"}},
//	})
//	if err := az.Can("CLIENT", "users.read"); errors.Is(err, rbac.ErrInsufficientPermissions) {
//	    // deny
//	}
package rbac
