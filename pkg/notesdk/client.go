package notesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the notes service. It covers the unauthenticated surface
// (signup, login, health) and creates authenticated Sessions.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Signup registers a new account and returns a live session for it.
func (c *Client) Signup(ctx context.Context, username, email, password string) (*Session, error) {
	var resp AuthResponse
	err := c.postJSON(ctx, "/auth/signup", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, &resp, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return newSession(c, resp), nil
}

// Login authenticates an existing account and returns a live session.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var resp AuthResponse
	err := c.postJSON(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return newSession(c, resp), nil
}

// NewSessionFromTokens resumes a session from previously stored tokens, e.g.
// after a process restart. Expired access tokens are handled transparently
// through the usual refresh path.
func (c *Client) NewSessionFromTokens(accessToken, refreshToken string) *Session {
	return &Session{
		client:       c,
		accessToken:  accessToken,
		refreshToken: refreshToken,
	}
}

// Livez reports basic service liveness.
func (c *Client) Livez(ctx context.Context) (HealthResponse, error) {
	var resp HealthResponse
	err := c.getJSON(ctx, "/livez", &resp, http.StatusOK)
	return resp, err
}

// Readyz reports whether the service's dependencies are healthy.
func (c *Client) Readyz(ctx context.Context) (HealthResponse, error) {
	var resp HealthResponse
	err := c.getJSON(ctx, "/readyz", &resp, http.StatusOK)
	return resp, err
}

func (c *Client) url(path string) string {
	return c.BaseURL + path
}

func (c *Client) postJSON(ctx context.Context, path string, body, target any, expectedStatus int) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("notesdk: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("notesdk: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("notesdk: send request: %w", err)
	}
	return decodeResponse(resp, target, expectedStatus)
}

func (c *Client) getJSON(ctx context.Context, path string, target any, expectedStatus int) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return fmt.Errorf("notesdk: create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("notesdk: send request: %w", err)
	}
	return decodeResponse(resp, target, expectedStatus)
}

func decodeResponse(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("notesdk: read response: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return parseAPIError(resp, body)
	}

	if target == nil {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("notesdk: decode response: %w", err)
	}
	return nil
}
