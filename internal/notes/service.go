// internal/notes/service.go
package notes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"devboard/internal/database"
	custom_errors "devboard/internal/errors"
	"devboard/internal/model"
)

// Store is the persistence the notes service depends on.
type Store interface {
	ListNotesByUser(ctx context.Context, userID string) ([]database.Note, error)
	CreateNote(ctx context.Context, arg database.CreateNoteParams) (database.Note, error)
	UpdateNote(ctx context.Context, arg database.UpdateNoteParams) (database.Note, error)
	DeleteNote(ctx context.Context, arg database.DeleteNoteParams) (int64, error)
}

// NewNote is the payload for creating a note.
type NewNote struct {
	Title   string  `json:"title"`
	Content *string `json:"content"`
}

// Patch is a partial note update; nil fields keep their stored value.
type Patch struct {
	Title   *string           `json:"title"`
	Content *string           `json:"content"`
	Status  *model.NoteStatus `json:"status"`
}

// Service implements note CRUD scoped to a single owner.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates a new notes Service.
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// List returns the user's notes, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]model.Note, error) {
	rows, err := s.store.ListNotesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	notes := make([]model.Note, len(rows))
	for i, r := range rows {
		notes[i] = toModel(r)
	}
	return notes, nil
}

// Create stores a new note with a TODO status.
func (s *Service) Create(ctx context.Context, userID string, in NewNote) (*model.Note, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, custom_errors.NewValidationError("title", "Title is required")
	}
	content := ""
	if in.Content != nil {
		content = *in.Content
	}

	row, err := s.store.CreateNote(ctx, database.CreateNoteParams{
		UserID:  userID,
		Title:   title,
		Content: content,
		Status:  string(model.NoteTodo),
	})
	if err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	s.logger.Info("Note created", "user_id", userID, "note_id", row.ID)
	note := toModel(row)
	return &note, nil
}

// Update applies a partial update to one of the user's notes.
func (s *Service) Update(ctx context.Context, userID string, id int64, p Patch) (*model.Note, error) {
	params := database.UpdateNoteParams{ID: id, UserID: userID, Content: p.Content}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return nil, custom_errors.NewValidationError("title", "Title cannot be empty")
		}
		params.Title = &title
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return nil, custom_errors.NewValidationError("status", "Status must be one of TODO, IN_PROGRESS, DONE")
		}
		status := string(*p.Status)
		params.Status = &status
	}

	row, err := s.store.UpdateNote(ctx, params)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, custom_errors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	note := toModel(row)
	return &note, nil
}

// Delete removes one of the user's notes.
func (s *Service) Delete(ctx context.Context, userID string, id int64) error {
	n, err := s.store.DeleteNote(ctx, database.DeleteNoteParams{ID: id, UserID: userID})
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if n == 0 {
		return custom_errors.ErrNotFound
	}
	s.logger.Info("Note deleted", "user_id", userID, "note_id", id)
	return nil
}

func toModel(n database.Note) model.Note {
	return model.Note{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Content:   n.Content,
		Status:    model.NoteStatus(n.Status),
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}
