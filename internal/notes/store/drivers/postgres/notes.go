package postgres

import (
	"context"
	"time"

	"github.com/inklingapp/inkling/internal/notes/domain"
	"github.com/inklingapp/inkling/internal/notes/store"
)

type notesRepo struct {
	db dbtx
}

func (r *notesRepo) CreateNote(ctx context.Context, userID int64, title, content string) (domain.Note, error) {
	now := time.Now().UTC()
	var n domain.Note
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO notes (user_id, title, content, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, user_id, title, content, created_at, updated_at`,
		userID, title, content, now, now,
	).Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return domain.Note{}, err
	}
	return n, nil
}

func (r *notesRepo) GetNote(ctx context.Context, userID, noteID int64) (domain.Note, error) {
	var n domain.Note
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, content, created_at, updated_at
		   FROM notes WHERE id = $1 AND user_id = $2`,
		noteID, userID,
	).Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return domain.Note{}, mapNotFound(err)
	}
	return n, nil
}

func (r *notesRepo) ListNotes(ctx context.Context, userID int64, page, limit int, search string) ([]domain.Note, int, error) {
	where := `user_id = $1`
	args := []any{userID}
	if search != "" {
		where += ` AND (title ILIKE $2 OR content ILIKE $2)`
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notes WHERE `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	limitPos, offsetPos := `$2`, `$3`
	if search != "" {
		limitPos, offsetPos = `$3`, `$4`
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, content, created_at, updated_at
		   FROM notes WHERE `+where+`
		  ORDER BY created_at DESC, id DESC
		  LIMIT `+limitPos+` OFFSET `+offsetPos,
		append(args, limit, offset)...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	notes := make([]domain.Note, 0, limit)
	for rows.Next() {
		var n domain.Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, 0, err
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return notes, total, nil
}

func (r *notesRepo) UpdateNote(ctx context.Context, userID, noteID int64, title, content string) (domain.Note, error) {
	var n domain.Note
	err := r.db.QueryRowContext(ctx,
		`UPDATE notes SET title = $1, content = $2, updated_at = $3
		  WHERE id = $4 AND user_id = $5
		 RETURNING id, user_id, title, content, created_at, updated_at`,
		title, content, time.Now().UTC(), noteID, userID,
	).Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return domain.Note{}, mapNotFound(err)
	}
	return n, nil
}

func (r *notesRepo) DeleteNote(ctx context.Context, userID, noteID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM notes WHERE id = $1 AND user_id = $2`, noteID, userID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
