package auth

import "context"

// UserFrom returns the authenticated user of ctx, or the zero User.
func UserFrom(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userCtxKey).(User)
	return u, ok && u.Username != ""
}

func (m *Middleware) GetUser(ctx context.Context) User {
	u, _ := UserFrom(ctx)
	return u
}

func (m *Middleware) IsAuthenticated(ctx context.Context) bool {
	_, ok := UserFrom(ctx)
	return ok
}

func (m *Middleware) IsAdmin(ctx context.Context) bool {
	u, ok := UserFrom(ctx)
	return ok && m.adminRole != "" && u.Role.Name == m.adminRole
}

// HasRole reports whether the user holds one of roles. Admins hold every role.
func (m *Middleware) HasRole(ctx context.Context, roles ...string) bool {
	u, ok := UserFrom(ctx)
	if !ok {
		return false
	}
	if m.IsAdmin(ctx) {
		return true
	}
	for _, r := range roles {
		if u.Role.Name == r {
			return true
		}
	}
	return false
}

// IsUser reports whether the user is one of names. Admins match every name.
func (m *Middleware) IsUser(ctx context.Context, names ...string) bool {
	u, ok := UserFrom(ctx)
	if !ok {
		return false
	}
	if m.IsAdmin(ctx) {
		return true
	}
	for _, n := range names {
		if u.Username == n {
			return true
		}
	}
	return false
}
