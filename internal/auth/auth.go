// internal/auth/auth.go
package auth

import (
	"context"

	"devboard/internal/database"
)

// Identity is the authenticated user behind a request.
type Identity struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
}

// Store is the persistence the session provider depends on.
type Store interface {
	UpsertUser(ctx context.Context, arg database.UpsertUserParams) (database.User, error)
	UpsertAccount(ctx context.Context, arg database.UpsertAccountParams) (database.Account, error)
	GetAccountToken(ctx context.Context, arg database.GetAccountTokenParams) (*string, error)
	CreateSession(ctx context.Context, arg database.CreateSessionParams) (database.Session, error)
	GetSessionUser(ctx context.Context, token string) (database.GetSessionUserRow, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

type contextKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identity stored by WithIdentity, if any.
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(*Identity)
	return id, ok && id != nil
}
