// internal/auth/sessions.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"devboard/internal/database"
	custom_errors "devboard/internal/errors"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "devboard_session"

// Sessions resolves and issues database-backed login sessions.
type Sessions struct {
	store  Store
	ttl    time.Duration
	secure bool
	logger *slog.Logger
}

// NewSessions creates a new session provider.
func NewSessions(store Store, ttl time.Duration, secure bool, logger *slog.Logger) *Sessions {
	return &Sessions{store: store, ttl: ttl, secure: secure, logger: logger}
}

// Identify returns the identity of the request's session.
// Any missing, unknown or expired session yields ErrUnauthorized.
func (s *Sessions) Identify(r *http.Request) (*Identity, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return nil, custom_errors.ErrUnauthorized
	}

	row, err := s.store.GetSessionUser(r.Context(), cookie.Value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, custom_errors.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}

	id := &Identity{UserID: row.UserID, Email: row.Email}
	if row.Name != nil {
		id.Name = *row.Name
	}
	return id, nil
}

// Start opens a session for id and sets the session cookie.
func (s *Sessions) Start(ctx context.Context, w http.ResponseWriter, id *Identity) error {
	if n, err := s.store.DeleteExpiredSessions(ctx); err != nil {
		s.logger.Warn("Failed to purge expired sessions", "error", err)
	} else if n > 0 {
		s.logger.Debug("Purged expired sessions", "count", n)
	}

	session, err := s.store.CreateSession(ctx, database.CreateSessionParams{
		Token:     uuid.NewString(),
		UserID:    id.UserID,
		ExpiresAt: time.Now().Add(s.ttl),
	})
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	s.logger.Info("Session started", "user_id", id.UserID)
	return nil
}

// End deletes the request's session, if any, and expires the cookie.
func (s *Sessions) End(w http.ResponseWriter, r *http.Request) error {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		if err := s.store.DeleteSession(r.Context(), cookie.Value); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
