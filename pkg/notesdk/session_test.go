package notesdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeServer is a minimal stand-in for the notes service. It tracks the
// currently valid access token and counts refresh exchanges so tests can
// assert on single-flight behaviour.
type fakeServer struct {
	mu           sync.Mutex
	accessToken  string
	refreshToken string

	refreshCalls atomic.Int64
	refreshDelay time.Duration
	refreshFails bool
	rejectAll    bool

	srv *httptest.Server
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()

	fs := &fakeServer{
		accessToken:  "access-1",
		refreshToken: "refresh-1",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/refresh", fs.handleRefresh)
	mux.HandleFunc("POST /auth/logout", fs.handleLogout)
	mux.HandleFunc("GET /notes", fs.authed(fs.handleList))
	mux.HandleFunc("POST /notes", fs.authed(fs.handleCreate))

	fs.srv = httptest.NewServer(mux)
	t.Cleanup(fs.srv.Close)
	return fs
}

func (fs *fakeServer) currentAccess() string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.accessToken
}

// rotateAccess invalidates the current access token, as if it had expired.
func (fs *fakeServer) rotateAccess(next string) {
	fs.mu.Lock()
	fs.accessToken = next
	fs.mu.Unlock()
}

func (fs *fakeServer) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		reject := fs.rejectAll
		fs.mu.Unlock()

		got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if reject || got != fs.currentAccess() {
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(ErrorResponse{Error: "invalid or expired token"})
			return
		}
		next(w, r)
	}
}

func (fs *fakeServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	fs.refreshCalls.Add(1)
	time.Sleep(fs.refreshDelay)

	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	fs.mu.Lock()
	valid := !fs.refreshFails && req.RefreshToken == fs.refreshToken
	fs.mu.Unlock()

	if !valid {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(ErrorResponse{Error: "invalid or expired refresh token"})
		return
	}

	fs.rotateAccess("access-2")
	json.NewEncoder(w).Encode(RefreshResponse{AccessToken: "access-2"})
}

func (fs *fakeServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(MessageResponse{Message: "Logout successful"})
}

func (fs *fakeServer) handleList(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(NotesPage{Notes: []Note{}})
}

func (fs *fakeServer) handleCreate(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(Note{ID: 1, Title: "x"})
}

func (fs *fakeServer) session() *Session {
	return NewClient(fs.srv.URL).NewSessionFromTokens("access-1", "refresh-1")
}

func TestSessionRefreshesOnRejectedToken(t *testing.T) {
	fs := newFakeServer(t)
	sess := fs.session()

	// Expire the token the session is holding.
	fs.rotateAccess("access-rotated")

	_, err := sess.ListNotes(context.Background(), 0, 0, "")
	require.NoError(t, err)
	require.EqualValues(t, 1, fs.refreshCalls.Load())
	require.Equal(t, "access-2", sess.AccessToken())
	require.Equal(t, "refresh-1", sess.RefreshToken())
}

func TestSessionRefreshSingleFlight(t *testing.T) {
	fs := newFakeServer(t)
	fs.refreshDelay = 100 * time.Millisecond
	sess := fs.session()

	fs.rotateAccess("access-rotated")

	const workers = 8
	errs := make(chan error, workers)
	for range workers {
		go func() {
			_, err := sess.ListNotes(context.Background(), 0, 0, "")
			errs <- err
		}()
	}
	for range workers {
		require.NoError(t, <-errs)
	}

	require.EqualValues(t, 1, fs.refreshCalls.Load(),
		"concurrent rejections must collapse into one refresh exchange")
}

func TestSessionRetriesExactlyOnce(t *testing.T) {
	fs := newFakeServer(t)
	sess := fs.session()

	// The refresh succeeds but the server keeps rejecting every bearer token,
	// so the retried request fails too. The session must surface that failure
	// rather than refresh again.
	fs.mu.Lock()
	fs.rejectAll = true
	fs.mu.Unlock()

	_, err := sess.ListNotes(context.Background(), 0, 0, "")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	require.EqualValues(t, 1, fs.refreshCalls.Load())
}

func TestSessionRefreshFailureFansOut(t *testing.T) {
	fs := newFakeServer(t)
	fs.refreshDelay = 100 * time.Millisecond
	fs.refreshFails = true
	sess := fs.session()

	fs.rotateAccess("access-rotated")

	const workers = 4
	errs := make(chan error, workers)
	for range workers {
		go func() {
			_, err := sess.ListNotes(context.Background(), 0, 0, "")
			errs <- err
		}()
	}
	for range workers {
		require.ErrorIs(t, <-errs, ErrSessionExpired)
	}

	require.EqualValues(t, 1, fs.refreshCalls.Load())
	require.Empty(t, sess.AccessToken())
	require.Empty(t, sess.RefreshToken())

	// With no refresh token left, further calls fail fast without touching
	// the refresh endpoint again.
	_, err := sess.ListNotes(context.Background(), 0, 0, "")
	require.ErrorIs(t, err, ErrSessionExpired)
	require.EqualValues(t, 1, fs.refreshCalls.Load())
}

func TestSessionStaleCheckSkipsRefresh(t *testing.T) {
	fs := newFakeServer(t)
	sess := fs.session()

	fs.rotateAccess("access-rotated")

	// First call performs the one real exchange.
	_, err := sess.ListNotes(context.Background(), 0, 0, "")
	require.NoError(t, err)

	// A caller still holding the old token gets the replacement without a
	// second exchange.
	token, err := sess.refreshAccess(context.Background(), "access-1")
	require.NoError(t, err)
	require.Equal(t, "access-2", token)
	require.EqualValues(t, 1, fs.refreshCalls.Load())
}

func TestSessionLogoutClearsTokens(t *testing.T) {
	fs := newFakeServer(t)
	sess := fs.session()

	require.NoError(t, sess.Logout(context.Background()))
	require.Empty(t, sess.AccessToken())
	require.Empty(t, sess.RefreshToken())

	// Second logout is a local no-op.
	require.NoError(t, sess.Logout(context.Background()))
}

func TestSessionRefreshRespectsContext(t *testing.T) {
	fs := newFakeServer(t)
	fs.refreshDelay = 200 * time.Millisecond
	sess := fs.session()

	fs.rotateAccess("access-rotated")

	// Occupy the refresh slot.
	go func() {
		_, _ = sess.ListNotes(context.Background(), 0, 0, "")
	}()

	// Give the first goroutine time to start its exchange, then join as a
	// waiter with an already-cancelled context.
	time.Sleep(50 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sess.refreshAccess(ctx, "access-1")
	require.ErrorIs(t, err, context.Canceled)
}
