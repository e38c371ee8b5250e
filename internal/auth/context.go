// Package auth issues session tokens and carries the authenticated user
// through request contexts.
package auth

import "context"

type contextKey struct{}

var userIDKey = contextKey{}

// WithUserID returns a copy of ctx bound to userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID returns the user bound to ctx, if any.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}
