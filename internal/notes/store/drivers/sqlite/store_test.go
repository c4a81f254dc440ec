package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/inklingapp/inkling/internal/notes/domain"
	"github.com/inklingapp/inkling/internal/notes/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// TestNewStoreAppliesPragmas opens a file-backed store with the DSN shape the
// service uses and checks the pragmas actually took effect on the connection.
func TestNewStoreAppliesPragmas(t *testing.T) {
	ctx := context.Background()
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		filepath.Join(t.TempDir(), "notes.db"))

	st, err := NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	var mode string
	require.NoError(t, st.db.QueryRowContext(ctx, `PRAGMA journal_mode`).Scan(&mode))
	require.Equal(t, "wal", mode)

	var busyTimeout int
	require.NoError(t, st.db.QueryRowContext(ctx, `PRAGMA busy_timeout`).Scan(&busyTimeout))
	require.Equal(t, 5000, busyTimeout)

	var fk int
	require.NoError(t, st.db.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&fk))
	require.Equal(t, 1, fk)
}

func createUser(t *testing.T, st store.Store, username, email string) int64 {
	t.Helper()

	id, err := st.Users().CreateUser(context.Background(), username, email, "hash")
	require.NoError(t, err)
	return id
}

func TestUsersRepo(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	id := createUser(t, st, "alice", "alice@example.com")

	t.Run("get by email", func(t *testing.T) {
		u, err := st.Users().GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.Equal(t, id, u.ID)
		require.Equal(t, "alice", u.Username)
		require.Equal(t, "hash", u.PasswordHash)
	})

	t.Run("get by id", func(t *testing.T) {
		u, err := st.Users().GetUserByID(ctx, id)
		require.NoError(t, err)
		require.Equal(t, "alice@example.com", u.Email)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := st.Users().GetUserByEmail(ctx, "ghost@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = st.Users().GetUserByID(ctx, id+999)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := st.Users().CreateUser(ctx, "alice", "other@example.com", "hash")
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := st.Users().CreateUser(ctx, "alice2", "alice@example.com", "hash")
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("count", func(t *testing.T) {
		n, err := st.Users().CountUsers(ctx)
		require.NoError(t, err)
		require.EqualValues(t, 1, n)
	})
}

func TestRefreshTokensRepo(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	userID := createUser(t, st, "alice", "alice@example.com")
	now := time.Now().UTC()

	live := domain.RefreshToken{
		UserID:    userID,
		TokenHash: "live-hash",
		ExpiresAt: now.Add(time.Hour),
	}
	expired := domain.RefreshToken{
		UserID:    userID,
		TokenHash: "expired-hash",
		ExpiresAt: now.Add(-time.Hour),
	}
	require.NoError(t, st.RefreshTokens().CreateRefreshToken(ctx, live))
	require.NoError(t, st.RefreshTokens().CreateRefreshToken(ctx, expired))

	t.Run("lookup ignores expired rows", func(t *testing.T) {
		got, err := st.RefreshTokens().GetRefreshTokenByHash(ctx, "live-hash")
		require.NoError(t, err)
		require.Equal(t, userID, got.UserID)

		_, err = st.RefreshTokens().GetRefreshTokenByHash(ctx, "expired-hash")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("sweep deletes only expired rows", func(t *testing.T) {
		n, err := st.RefreshTokens().DeleteExpiredRefreshTokens(ctx)
		require.NoError(t, err)
		require.EqualValues(t, 1, n)

		_, err = st.RefreshTokens().GetRefreshTokenByHash(ctx, "live-hash")
		require.NoError(t, err)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, st.RefreshTokens().DeleteRefreshToken(ctx, "live-hash"))
		require.NoError(t, st.RefreshTokens().DeleteRefreshToken(ctx, "live-hash"))

		_, err := st.RefreshTokens().GetRefreshTokenByHash(ctx, "live-hash")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("delete all for user", func(t *testing.T) {
		for i := range 3 {
			require.NoError(t, st.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
				UserID:    userID,
				TokenHash: fmt.Sprintf("hash-%d", i),
				ExpiresAt: now.Add(time.Hour),
			}))
		}
		require.NoError(t, st.RefreshTokens().DeleteAllUserRefreshTokens(ctx, userID))

		for i := range 3 {
			_, err := st.RefreshTokens().GetRefreshTokenByHash(ctx, fmt.Sprintf("hash-%d", i))
			require.ErrorIs(t, err, store.ErrNotFound)
		}
	})
}

func TestDeleteUserCascades(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	userID := createUser(t, st, "alice", "alice@example.com")

	require.NoError(t, st.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		UserID:    userID,
		TokenHash: "hash",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}))
	note, err := st.Notes().CreateNote(ctx, userID, "t", "c")
	require.NoError(t, err)

	require.NoError(t, st.Users().DeleteUser(ctx, userID))

	_, err = st.RefreshTokens().GetRefreshTokenByHash(ctx, "hash")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Notes().GetNote(ctx, userID, note.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestNotesRepo(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	alice := createUser(t, st, "alice", "alice@example.com")
	bob := createUser(t, st, "bob", "bob@example.com")

	var noteIDs []int64
	for i := range 5 {
		n, err := st.Notes().CreateNote(ctx, alice, fmt.Sprintf("note %d", i), "body")
		require.NoError(t, err)
		noteIDs = append(noteIDs, n.ID)
	}
	_, err := st.Notes().CreateNote(ctx, bob, "bob note", "about apples")
	require.NoError(t, err)

	t.Run("list is scoped to the owner", func(t *testing.T) {
		notes, total, err := st.Notes().ListNotes(ctx, alice, 1, 10, "")
		require.NoError(t, err)
		require.Equal(t, 5, total)
		require.Len(t, notes, 5)
	})

	t.Run("list pages newest first", func(t *testing.T) {
		notes, total, err := st.Notes().ListNotes(ctx, alice, 1, 2, "")
		require.NoError(t, err)
		require.Equal(t, 5, total)
		require.Len(t, notes, 2)
		require.Equal(t, noteIDs[4], notes[0].ID)

		notes, _, err = st.Notes().ListNotes(ctx, alice, 3, 2, "")
		require.NoError(t, err)
		require.Len(t, notes, 1)
		require.Equal(t, noteIDs[0], notes[0].ID)
	})

	t.Run("search matches title and content", func(t *testing.T) {
		notes, total, err := st.Notes().ListNotes(ctx, bob, 1, 10, "apple")
		require.NoError(t, err)
		require.Equal(t, 1, total)
		require.Len(t, notes, 1)

		_, total, err = st.Notes().ListNotes(ctx, alice, 1, 10, "apple")
		require.NoError(t, err)
		require.Zero(t, total)
	})

	t.Run("update", func(t *testing.T) {
		n, err := st.Notes().UpdateNote(ctx, alice, noteIDs[0], "renamed", "new body")
		require.NoError(t, err)
		require.Equal(t, "renamed", n.Title)

		_, err = st.Notes().UpdateNote(ctx, bob, noteIDs[0], "stolen", "x")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, st.Notes().DeleteNote(ctx, alice, noteIDs[0]))
		require.ErrorIs(t, st.Notes().DeleteNote(ctx, alice, noteIDs[0]), store.ErrNotFound)
	})
}

func TestWithTxRollsBackOnError(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	sentinel := errors.New("boom")
	err := st.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Users().CreateUser(ctx, "alice", "alice@example.com", "hash"); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	n, err := st.Users().CountUsers(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestWithTxCommits(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	err := st.WithTx(ctx, func(tx store.Tx) error {
		id, err := tx.Users().CreateUser(ctx, "alice", "alice@example.com", "hash")
		if err != nil {
			return err
		}
		return tx.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
			UserID:    id,
			TokenHash: "hash",
			ExpiresAt: time.Now().UTC().Add(time.Hour),
		})
	})
	require.NoError(t, err)

	u, err := st.Users().GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	tok, err := st.RefreshTokens().GetRefreshTokenByHash(ctx, "hash")
	require.NoError(t, err)
	require.Equal(t, u.ID, tok.UserID)
}
