package store

import (
	"context"
	"errors"

	"github.com/inklingapp/inkling/internal/notes/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement this. It exposes sub-repositories to keep concerns
// tidy and testable.
type Store interface {
	Users() Users
	RefreshTokens() RefreshTokens
	Notes() Notes

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. This is the
	// recommended way to handle multi-step writes (e.g. signup creating a
	// user row and its first refresh token).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// CreateUser inserts a new user and returns its assigned ID. Username
	// and email collisions surface as ErrAlreadyExists; the uniqueness check
	// is the storage engine's constraint, never an application-level
	// check-then-insert.
	CreateUser(ctx context.Context, username, email, passwordHash string) (int64, error)

	// GetUserByEmail is used during login.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// GetUserByID re-resolves an access token's subject.
	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// DeleteUser cascades to refresh_tokens and notes (per schema).
	DeleteUser(ctx context.Context, id int64) error

	// CountUsers returns the total number of users.
	CountUsers(ctx context.Context) (int64, error)
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record (by fingerprint).
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the token row by its fingerprint. Rows
	// past expiry are not returned; callers cannot tell absent from expired.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// DeleteRefreshToken physically removes the row. Deleting a token that
	// does not exist is not an error.
	DeleteRefreshToken(ctx context.Context, hash string) error

	// DeleteAllUserRefreshTokens bulk-deletes a user's tokens ("log out
	// everywhere").
	DeleteAllUserRefreshTokens(ctx context.Context, userID int64) error

	// DeleteExpiredRefreshTokens is housekeeping; it returns the number of
	// rows removed. Expired tokens already fail verification, this just
	// bounds table growth.
	DeleteExpiredRefreshTokens(ctx context.Context) (int64, error)
}

type Notes interface {
	// CreateNote inserts a note for a user and returns the stored row.
	CreateNote(ctx context.Context, userID int64, title, content string) (domain.Note, error)

	// GetNote fetches a single note scoped to its owner. A note owned by
	// someone else is ErrNotFound, not a permission error - existence is
	// not leaked across users.
	GetNote(ctx context.Context, userID, noteID int64) (domain.Note, error)

	// ListNotes returns one page of the user's notes, newest first, with an
	// optional case-insensitive search over title and content, plus the
	// total match count for pagination.
	ListNotes(ctx context.Context, userID int64, page, limit int, search string) ([]domain.Note, int, error)

	// UpdateNote rewrites title/content and bumps updated_at.
	UpdateNote(ctx context.Context, userID, noteID int64, title, content string) (domain.Note, error)

	// DeleteNote removes a note scoped to its owner.
	DeleteNote(ctx context.Context, userID, noteID int64) error
}
