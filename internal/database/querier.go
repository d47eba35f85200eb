// internal/database/querier.go
package database

import (
	"context"
)

type Querier interface {
	CreateNote(ctx context.Context, arg CreateNoteParams) (Note, error)
	CreateSession(ctx context.Context, arg CreateSessionParams) (Session, error)
	DeleteExpiredSessions(ctx context.Context) (int64, error)
	DeleteNote(ctx context.Context, arg DeleteNoteParams) (int64, error)
	DeleteSession(ctx context.Context, token string) error
	GetAccountToken(ctx context.Context, arg GetAccountTokenParams) (*string, error)
	GetSessionUser(ctx context.Context, token string) (GetSessionUserRow, error)
	GetUserSettings(ctx context.Context, userID string) (UserSetting, error)
	ListNotesByUser(ctx context.Context, userID string) ([]Note, error)
	UpdateNote(ctx context.Context, arg UpdateNoteParams) (Note, error)
	UpsertAccount(ctx context.Context, arg UpsertAccountParams) (Account, error)
	UpsertUser(ctx context.Context, arg UpsertUserParams) (User, error)
	UpsertUserSettings(ctx context.Context, arg UpsertUserSettingsParams) (UserSetting, error)
}

var _ Querier = (*Queries)(nil)
