package service

import (
	"context"

	"github.com/inklingapp/inkling/internal/notes/domain"
	"github.com/inklingapp/inkling/internal/notes/store"
)

const (
	// DefaultPageSize is used when a list request doesn't specify a limit.
	DefaultPageSize = 10

	// MaxPageSize caps how many notes a single page may return.
	MaxPageSize = 100
)

// NotesService implements the note CRUD operations. Every query is scoped to
// the owning user in SQL, so a note belonging to someone else behaves exactly
// like a note that doesn't exist.
type NotesService struct {
	Store store.Store
}

func (s *NotesService) Create(ctx context.Context, userID int64, title, content string) (domain.Note, error) {
	return s.Store.Notes().CreateNote(ctx, userID, title, content)
}

func (s *NotesService) Get(ctx context.Context, userID, noteID int64) (domain.Note, error) {
	return s.Store.Notes().GetNote(ctx, userID, noteID)
}

// List returns one page of the user's notes, newest first, with an optional
// substring search over title and content. Page and limit are clamped to
// sane values rather than rejected.
func (s *NotesService) List(ctx context.Context, userID int64, page, limit int, search string) (domain.NotePage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	notes, total, err := s.Store.Notes().ListNotes(ctx, userID, page, limit, search)
	if err != nil {
		return domain.NotePage{}, err
	}

	totalPages := (total + limit - 1) / limit

	return domain.NotePage{
		Notes: notes,
		Pagination: domain.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

func (s *NotesService) Update(ctx context.Context, userID, noteID int64, title, content string) (domain.Note, error) {
	return s.Store.Notes().UpdateNote(ctx, userID, noteID, title, content)
}

func (s *NotesService) Delete(ctx context.Context, userID, noteID int64) error {
	return s.Store.Notes().DeleteNote(ctx, userID, noteID)
}
