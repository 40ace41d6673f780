package middleware

import (
	"context"
	"linklyst/internal/data"
)

// contextKey defines a custom type for context keys to avoid collisions.
type contextKey string

const userContextKey = contextKey("user")

// SetCurrentUser adds the resolved account to the request context.
func SetCurrentUser(ctx context.Context, user *data.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// GetCurrentUser retrieves the resolved account from the request context.
// It returns nil for anonymous visitors.
func GetCurrentUser(ctx context.Context) *data.User {
	if user, ok := ctx.Value(userContextKey).(*data.User); ok {
		return user
	}
	return nil
}
