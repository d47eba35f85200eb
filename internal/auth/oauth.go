// internal/auth/oauth.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/oauth2"
	githubendpoint "golang.org/x/oauth2/github"

	"devboard/internal/database"
	"devboard/internal/model"
)

// ProviderGitHub is the provider name stored on linked accounts.
const ProviderGitHub = "github"

// Scopes requested at login: profile, email and repository read access for stats.
var Scopes = []string{"read:user", "user:email", "repo"}

// ProfileSource reads the GitHub profile behind an access token.
type ProfileSource interface {
	Profile(ctx context.Context, token string) (*model.Profile, error)
	PrimaryEmail(ctx context.Context, token string) (string, error)
}

// TxStore runs fn against a Store bound to a single transaction.
// Writes made through that Store are discarded when fn returns an error.
type TxStore interface {
	InTx(ctx context.Context, fn func(Store) error) error
}

// PgxTxStore implements TxStore on a pgx pool.
type PgxTxStore struct {
	db      database.TxBeginner
	queries *database.Queries
}

// NewTxStore creates a TxStore beginning its transactions on db.
func NewTxStore(db database.TxBeginner, queries *database.Queries) *PgxTxStore {
	return &PgxTxStore{db: db, queries: queries}
}

func (s *PgxTxStore) InTx(ctx context.Context, fn func(Store) error) error {
	return s.queries.ExecTx(ctx, s.db, func(q *database.Queries) error {
		return fn(q)
	})
}

// OAuth drives the GitHub OAuth login flow.
type OAuth struct {
	config  *oauth2.Config
	profile ProfileSource
	tx      TxStore
	logger  *slog.Logger
}

// NewOAuth creates the GitHub login flow.
func NewOAuth(clientID, clientSecret, redirectURL string, profile ProfileSource, tx TxStore, logger *slog.Logger) *OAuth {
	return &OAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       Scopes,
			Endpoint:     githubendpoint.Endpoint,
		},
		profile: profile,
		tx:      tx,
		logger:  logger,
	}
}

// NewState returns a fresh anti-forgery state value.
func NewState() string {
	return uuid.NewString()
}

// AuthCodeURL returns the GitHub consent page URL for state.
func (o *OAuth) AuthCodeURL(state string) string {
	return o.config.AuthCodeURL(state)
}

// Complete exchanges code for a token, then links the GitHub account to a local
// user keyed by email, refreshing the stored token.
func (o *OAuth) Complete(ctx context.Context, code string) (*Identity, error) {
	tok, err := o.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	profile, err := o.profile.Profile(ctx, tok.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("read github profile: %w", err)
	}

	email := ""
	if profile.Email != nil {
		email = *profile.Email
	}
	if email == "" {
		if email, err = o.profile.PrimaryEmail(ctx, tok.AccessToken); err != nil {
			return nil, fmt.Errorf("read github email: %w", err)
		}
	}
	if email == "" {
		return nil, errors.New("github account has no verified email")
	}

	name := profile.DisplayName()
	tokenType := tok.Type()
	account := database.UpsertAccountParams{
		Provider:          ProviderGitHub,
		ProviderAccountID: strconv.FormatInt(profile.ID, 10),
		AccessToken:       &tok.AccessToken,
		TokenType:         &tokenType,
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		account.Scope = &scope
	}

	// The user and its linked account are written together or not at all.
	var user database.User
	err = o.tx.InTx(ctx, func(store Store) error {
		var err error
		user, err = store.UpsertUser(ctx, database.UpsertUserParams{
			ID:        uuid.NewString(),
			Email:     email,
			Name:      &name,
			AvatarUrl: &profile.AvatarURL,
		})
		if err != nil {
			return fmt.Errorf("upsert user: %w", err)
		}

		account.UserID = user.ID
		if _, err := store.UpsertAccount(ctx, account); err != nil {
			return fmt.Errorf("upsert account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.logger.Info("GitHub account linked", "user_id", user.ID, "login", profile.Login)
	return &Identity{UserID: user.ID, Email: user.Email, Name: name}, nil
}

// Tokens looks up the GitHub token linked to a user.
type Tokens struct {
	store  Store
	logger *slog.Logger
}

func NewTokens(store Store, logger *slog.Logger) *Tokens {
	return &Tokens{store: store, logger: logger}
}

// GitHubToken returns the user's linked GitHub token, or "" so callers fall
// back to the service-wide token.
func (t *Tokens) GitHubToken(ctx context.Context, userID string) string {
	tok, err := t.store.GetAccountToken(ctx, database.GetAccountTokenParams{UserID: userID, Provider: ProviderGitHub})
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			t.logger.Warn("Failed to load GitHub token", "user_id", userID, "error", err)
		}
		return ""
	}
	if tok == nil {
		return ""
	}
	return *tok
}
