package utils

import "context"

type ctxKey int

const authUserKey ctxKey = iota

// AuthUser is the caller identity placed in the request context by the auth middleware
type AuthUser struct {
	UserID    string
	Email     string
	Name      string
	SessionID string
}

// WithAuthUser returns a copy of ctx carrying u
func WithAuthUser(ctx context.Context, u AuthUser) context.Context {
	return context.WithValue(ctx, authUserKey, u)
}

// GetAuthUserFromContext returns the authenticated caller, if any
func GetAuthUserFromContext(ctx context.Context) (AuthUser, bool) {
	u, ok := ctx.Value(authUserKey).(AuthUser)
	return u, ok && u.UserID != ""
}

// GetUserIDFromContext returns the authenticated user's id
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	u, ok := GetAuthUserFromContext(ctx)
	return u.UserID, ok
}
