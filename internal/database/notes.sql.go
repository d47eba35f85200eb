// internal/database/notes.sql.go
package database

import (
	"context"
)

const listNotesByUser = `
SELECT id, user_id, title, content, status, created_at, updated_at
FROM notes
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
`

func (q *Queries) ListNotesByUser(ctx context.Context, userID string) ([]Note, error) {
	rows, err := q.db.Query(ctx, listNotesByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Note{}
	for rows.Next() {
		var i Note
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.Title,
			&i.Content,
			&i.Status,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createNote = `
INSERT INTO notes (user_id, title, content, status)
VALUES ($1, $2, $3, $4)
RETURNING id, user_id, title, content, status, created_at, updated_at
`

type CreateNoteParams struct {
	UserID  string
	Title   string
	Content string
	Status  string
}

func (q *Queries) CreateNote(ctx context.Context, arg CreateNoteParams) (Note, error) {
	row := q.db.QueryRow(ctx, createNote, arg.UserID, arg.Title, arg.Content, arg.Status)
	var i Note
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Title,
		&i.Content,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

// The ownership filter is part of the statement itself, so a note owned by
// someone else is indistinguishable from a missing one (pgx.ErrNoRows).
const updateNote = `
UPDATE notes
SET title = COALESCE($3::text, title),
    content = COALESCE($4::text, content),
    status = COALESCE($5::text, status),
    updated_at = now()
WHERE id = $1 AND user_id = $2
RETURNING id, user_id, title, content, status, created_at, updated_at
`

type UpdateNoteParams struct {
	ID      int64
	UserID  string
	Title   *string
	Content *string
	Status  *string
}

func (q *Queries) UpdateNote(ctx context.Context, arg UpdateNoteParams) (Note, error) {
	row := q.db.QueryRow(ctx, updateNote,
		arg.ID,
		arg.UserID,
		arg.Title,
		arg.Content,
		arg.Status,
	)
	var i Note
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Title,
		&i.Content,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const deleteNote = `
DELETE FROM notes WHERE id = $1 AND user_id = $2
`

type DeleteNoteParams struct {
	ID     int64
	UserID string
}

// DeleteNote returns the number of deleted rows; zero means missing or not owned.
func (q *Queries) DeleteNote(ctx context.Context, arg DeleteNoteParams) (int64, error) {
	result, err := q.db.Exec(ctx, deleteNote, arg.ID, arg.UserID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
