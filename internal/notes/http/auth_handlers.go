package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/inklingapp/inkling/internal/notes/domain"
	"github.com/inklingapp/inkling/internal/notes/service"
	"github.com/inklingapp/inkling/pkg/httpx"
	"github.com/inklingapp/inkling/pkg/notesdk"
	"github.com/inklingapp/inkling/pkg/slogx"
)

const maxBodyBytes = 64 << 10

// Responses are encoded as the SDK's wire types so client and server agree
// by construction. The password digest never leaves the server.
func newAuthResponse(msg string, u domain.User, pair domain.TokenPair) notesdk.AuthResponse {
	return notesdk.AuthResponse{
		Message:      msg,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User: notesdk.User{
			ID:       u.ID,
			Username: u.Username,
			Email:    u.Email,
		},
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

type SignupHandler struct {
	SessionService *service.SessionService
}

func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := validateUsername(req.Username); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateEmail(req.Email); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validatePassword(req.Password); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, pair, err := h.SessionService.Signup(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrCredentialConflict) {
			httpx.WriteError(w, http.StatusBadRequest, "username or email already exists")
			return
		}
		log.Error("signup failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, newAuthResponse("User created successfully", user, pair))
}

type LoginHandler struct {
	SessionService *service.SessionService
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, pair, err := h.SessionService.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		log.Error("login failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, newAuthResponse("Login successful", user, pair))
}

type RefreshHandler struct {
	SessionService *service.SessionService
}

func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "refresh token required")
		return
	}

	accessToken, err := h.SessionService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrSessionExpired) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid or expired refresh token")
			return
		}
		log.Error("refresh failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, notesdk.RefreshResponse{AccessToken: accessToken})
}

type LogoutHandler struct {
	SessionService *service.SessionService
}

// ServeHTTP revokes the presented refresh token. Logout is idempotent: a
// missing, unknown or already-revoked token still gets a 200, so clients can
// always clear local state without special-casing the response.
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	// A missing or malformed body is treated like a missing token.
	_ = json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req)

	if req.RefreshToken != "" {
		if err := h.SessionService.Logout(ctx, req.RefreshToken); err != nil {
			log.Error("logout failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
			return
		}
	}

	httpx.WriteJSON(w, http.StatusOK, notesdk.MessageResponse{Message: "Logout successful"})
}

type LogoutAllHandler struct {
	SessionService *service.SessionService
}

// ServeHTTP revokes every session of the authenticated user ("log out
// everywhere"). Unlike plain logout this needs a valid access token, since
// it acts on the account rather than on a single presented refresh token.
func (h *LogoutAllHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := httpx.UserIDFromCtx(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "access token required")
		return
	}

	if err := h.SessionService.LogoutAll(ctx, userID); err != nil {
		log.Error("logout all failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, notesdk.MessageResponse{Message: "Logout successful"})
}
