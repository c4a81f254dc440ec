package notesdk

import "time"

// User is the public view of an account. These types double as the server's
// response shapes; the HTTP handlers encode them directly so client and
// server can never drift apart.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	Message      string `json:"message"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         User   `json:"user"`
}

// RefreshResponse is returned by the token refresh endpoint. Only a new
// access token comes back; the refresh token is not rotated.
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// MessageResponse is the generic success envelope (logout, delete).
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the error envelope every endpoint uses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Note mirrors the server's note record.
type Note struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NotesPage is one page of notes plus the pagination envelope.
type NotesPage struct {
	Notes      []Note     `json:"notes"`
	Pagination Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}
