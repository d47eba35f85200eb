// internal/database/users.sql.go
package database

import (
	"context"
	"time"
)

const upsertUser = `
INSERT INTO users (id, email, name, avatar_url)
VALUES ($1, $2, $3, $4)
ON CONFLICT (email) DO UPDATE
SET name = EXCLUDED.name,
    avatar_url = EXCLUDED.avatar_url,
    updated_at = now()
RETURNING id, email, name, avatar_url, created_at, updated_at
`

type UpsertUserParams struct {
	ID        string
	Email     string
	Name      *string
	AvatarUrl *string
}

// UpsertUser creates the user for an email or refreshes its profile fields.
// The id is only used on insert; an existing user keeps its id.
func (q *Queries) UpsertUser(ctx context.Context, arg UpsertUserParams) (User, error) {
	row := q.db.QueryRow(ctx, upsertUser, arg.ID, arg.Email, arg.Name, arg.AvatarUrl)
	var i User
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.Name,
		&i.AvatarUrl,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const upsertAccount = `
INSERT INTO accounts (user_id, provider, provider_account_id, access_token, token_type, scope)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (provider, provider_account_id) DO UPDATE
SET access_token = EXCLUDED.access_token,
    token_type = EXCLUDED.token_type,
    scope = EXCLUDED.scope,
    updated_at = now()
RETURNING id, user_id, provider, provider_account_id, access_token, token_type, scope, created_at, updated_at
`

type UpsertAccountParams struct {
	UserID            string
	Provider          string
	ProviderAccountID string
	AccessToken       *string
	TokenType         *string
	Scope             *string
}

func (q *Queries) UpsertAccount(ctx context.Context, arg UpsertAccountParams) (Account, error) {
	row := q.db.QueryRow(ctx, upsertAccount,
		arg.UserID,
		arg.Provider,
		arg.ProviderAccountID,
		arg.AccessToken,
		arg.TokenType,
		arg.Scope,
	)
	var i Account
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Provider,
		&i.ProviderAccountID,
		&i.AccessToken,
		&i.TokenType,
		&i.Scope,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getAccountToken = `
SELECT access_token FROM accounts
WHERE user_id = $1 AND provider = $2
ORDER BY updated_at DESC
LIMIT 1
`

type GetAccountTokenParams struct {
	UserID   string
	Provider string
}

func (q *Queries) GetAccountToken(ctx context.Context, arg GetAccountTokenParams) (*string, error) {
	row := q.db.QueryRow(ctx, getAccountToken, arg.UserID, arg.Provider)
	var accessToken *string
	err := row.Scan(&accessToken)
	return accessToken, err
}

const createSession = `
INSERT INTO sessions (token, user_id, expires_at)
VALUES ($1, $2, $3)
RETURNING token, user_id, expires_at, created_at
`

type CreateSessionParams struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}

func (q *Queries) CreateSession(ctx context.Context, arg CreateSessionParams) (Session, error) {
	row := q.db.QueryRow(ctx, createSession, arg.Token, arg.UserID, arg.ExpiresAt)
	var i Session
	err := row.Scan(
		&i.Token,
		&i.UserID,
		&i.ExpiresAt,
		&i.CreatedAt,
	)
	return i, err
}

const getSessionUser = `
SELECT s.token, s.expires_at, u.id, u.email, u.name
FROM sessions s
JOIN users u ON u.id = s.user_id
WHERE s.token = $1 AND s.expires_at > now()
`

type GetSessionUserRow struct {
	Token     string
	ExpiresAt time.Time
	UserID    string
	Email     string
	Name      *string
}

func (q *Queries) GetSessionUser(ctx context.Context, token string) (GetSessionUserRow, error) {
	row := q.db.QueryRow(ctx, getSessionUser, token)
	var i GetSessionUserRow
	err := row.Scan(
		&i.Token,
		&i.ExpiresAt,
		&i.UserID,
		&i.Email,
		&i.Name,
	)
	return i, err
}

const deleteSession = `
DELETE FROM sessions WHERE token = $1
`

func (q *Queries) DeleteSession(ctx context.Context, token string) error {
	_, err := q.db.Exec(ctx, deleteSession, token)
	return err
}

const deleteExpiredSessions = `
DELETE FROM sessions WHERE expires_at <= now()
`

func (q *Queries) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	result, err := q.db.Exec(ctx, deleteExpiredSessions)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
