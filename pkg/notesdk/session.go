package notesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
)

// Session is an authenticated session with automatic access token renewal.
//
// When a request comes back 401/403 the session refreshes its access token and
// retries that request exactly once. Concurrent failures collapse into a
// single refresh exchange: the first goroutine performs it while the rest
// queue as waiters and are handed the same outcome. If the refresh itself
// fails, every waiter gets the same error and the session's credentials are
// cleared; the caller must log in again.
type Session struct {
	client *Client
	user   User

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	refreshing   bool
	waiters      []chan refreshResult
}

type refreshResult struct {
	token string
	err   error
}

func newSession(client *Client, resp AuthResponse) *Session {
	return &Session{
		client:       client,
		user:         resp.User,
		accessToken:  resp.AccessToken,
		refreshToken: resp.RefreshToken,
	}
}

// User returns the account this session was opened for. Zero-valued for
// sessions resumed with NewSessionFromTokens.
func (s *Session) User() User { return s.user }

// AccessToken returns the current access token.
func (s *Session) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshToken
}

// Logout revokes the session's refresh token server-side and clears local
// credentials. Safe to call more than once.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	refreshToken := s.refreshToken
	s.accessToken = ""
	s.refreshToken = ""
	s.mu.Unlock()

	if refreshToken == "" {
		return nil
	}

	var resp MessageResponse
	return s.client.postJSON(ctx, "/auth/logout", map[string]string{
		"refreshToken": refreshToken,
	}, &resp, http.StatusOK)
}

// LogoutAll revokes every session of this user, including this one.
func (s *Session) LogoutAll(ctx context.Context) error {
	var resp MessageResponse
	if err := s.do(ctx, http.MethodPost, "/auth/logout-all", nil, &resp, http.StatusOK); err != nil {
		return err
	}

	s.mu.Lock()
	s.accessToken = ""
	s.refreshToken = ""
	s.mu.Unlock()
	return nil
}

// CreateNote creates a note and returns the stored record.
func (s *Session) CreateNote(ctx context.Context, title, content string) (Note, error) {
	var note Note
	err := s.do(ctx, http.MethodPost, "/notes", map[string]string{
		"title":   title,
		"content": content,
	}, &note, http.StatusCreated)
	return note, err
}

// GetNote fetches a single note by ID.
func (s *Session) GetNote(ctx context.Context, id int64) (Note, error) {
	var note Note
	err := s.do(ctx, http.MethodGet, "/notes/"+strconv.FormatInt(id, 10), nil, &note, http.StatusOK)
	return note, err
}

// ListNotes returns one page of notes, newest first. Zero page/limit use the
// server defaults; search filters on title and content.
func (s *Session) ListNotes(ctx context.Context, page, limit int, search string) (NotesPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if search != "" {
		q.Set("search", search)
	}

	path := "/notes"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var result NotesPage
	err := s.do(ctx, http.MethodGet, path, nil, &result, http.StatusOK)
	return result, err
}

// UpdateNote rewrites a note's title and content.
func (s *Session) UpdateNote(ctx context.Context, id int64, title, content string) (Note, error) {
	var note Note
	err := s.do(ctx, http.MethodPut, "/notes/"+strconv.FormatInt(id, 10), map[string]string{
		"title":   title,
		"content": content,
	}, &note, http.StatusOK)
	return note, err
}

// DeleteNote removes a note.
func (s *Session) DeleteNote(ctx context.Context, id int64) error {
	var resp MessageResponse
	return s.do(ctx, http.MethodDelete, "/notes/"+strconv.FormatInt(id, 10), nil, &resp, http.StatusOK)
}

// do performs an authenticated request, refreshing the access token and
// retrying exactly once if the server rejects it. The body is marshalled up
// front so the retry can replay it.
func (s *Session) do(ctx context.Context, method, path string, body, target any, expectedStatus int) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("notesdk: encode request: %w", err)
		}
	}

	s.mu.Lock()
	token := s.accessToken
	s.mu.Unlock()

	resp, err := s.send(ctx, method, path, payload, token)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		token, err = s.refreshAccess(ctx, token)
		if err != nil {
			return err
		}

		// Single retry with the renewed token. A failure here is final;
		// it never triggers another refresh.
		resp, err = s.send(ctx, method, path, payload, token)
		if err != nil {
			return err
		}
	}

	return decodeResponse(resp, target, expectedStatus)
}

func (s *Session) send(ctx context.Context, method, path string, payload []byte, token string) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.client.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("notesdk: create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.client.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("notesdk: send request: %w", err)
	}
	return resp, nil
}

// refreshAccess exchanges the refresh token for a new access token, ensuring
// at most one exchange is in flight. staleToken is the access token the
// caller just failed with; if another goroutine already replaced it, the
// replacement is returned without a new exchange.
func (s *Session) refreshAccess(ctx context.Context, staleToken string) (string, error) {
	s.mu.Lock()

	if s.accessToken != "" && s.accessToken != staleToken {
		token := s.accessToken
		s.mu.Unlock()
		return token, nil
	}

	if s.refreshing {
		// A refresh is already in flight; queue up for its outcome.
		ch := make(chan refreshResult, 1)
		s.waiters = append(s.waiters, ch)
		s.mu.Unlock()

		select {
		case res := <-ch:
			return res.token, res.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	s.refreshing = true
	refreshToken := s.refreshToken
	s.mu.Unlock()

	var res refreshResult
	if refreshToken == "" {
		res.err = ErrSessionExpired
	} else {
		var rr RefreshResponse
		err := s.client.postJSON(ctx, "/auth/refresh", map[string]string{
			"refreshToken": refreshToken,
		}, &rr, http.StatusOK)

		var apiErr *APIError
		switch {
		case err == nil:
			res.token = rr.AccessToken
		case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized:
			res.err = ErrSessionExpired
		default:
			res.err = err
		}
	}

	s.mu.Lock()
	s.refreshing = false
	if res.err != nil {
		// The session is dead; drop both tokens so every subsequent call
		// fails fast instead of hammering the refresh endpoint.
		s.accessToken = ""
		s.refreshToken = ""
	} else {
		s.accessToken = res.token
	}
	waiters := s.waiters
	s.waiters = nil
	s.mu.Unlock()

	for _, ch := range waiters {
		ch <- res
	}

	return res.token, res.err
}
