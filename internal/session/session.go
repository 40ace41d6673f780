package session

import (
	"context"
	"net/http"
)

// Manager is an interface that abstracts the session management
// implementation. This allows for easier testing and dependency injection.
// *scs.SessionManager satisfies it directly.
type Manager interface {
	LoadAndSave(next http.Handler) http.Handler
	Put(ctx context.Context, key string, val interface{})
	GetString(ctx context.Context, key string) string
	GetInt64(ctx context.Context, key string) int64
	PopString(ctx context.Context, key string) string
	RenewToken(ctx context.Context) error
	Destroy(ctx context.Context) error
	Remove(ctx context.Context, key string)
}
