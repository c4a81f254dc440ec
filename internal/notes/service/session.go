package service

import (
	"context"
	"errors"
	"time"

	"github.com/inklingapp/inkling/internal/notes/domain"
	"github.com/inklingapp/inkling/internal/notes/store"
	"github.com/inklingapp/inkling/pkg/cryptox"
	"github.com/inklingapp/inkling/pkg/jwtx"
	"github.com/inklingapp/inkling/pkg/slogx"
)

var (
	// ErrCredentialConflict is returned when a signup collides with an
	// existing username or email. Deliberately field-agnostic.
	ErrCredentialConflict = errors.New("username or email already taken")

	// ErrInvalidCredentials covers both unknown email and wrong password so
	// login failures don't reveal which part was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSessionExpired is returned for any refresh token the store won't
	// vouch for: never issued, expired, revoked, or belonging to a deleted
	// user. Callers cannot tell these apart.
	ErrSessionExpired = errors.New("session expired")
)

// SessionService orchestrates the full session lifecycle: signup, login,
// access token renewal and logout. Refresh tokens are opaque random values
// handed to the client once; only their SHA-256 fingerprint is persisted.
//
// Renewal does not rotate the refresh token. The same opaque value keeps
// working until its fixed expiry or until logout deletes it, which means a
// leaked refresh token stays usable for its whole lifetime. Shortening
// REFRESH_TOKEN_TTL is the only mitigation available today.
type SessionService struct {
	Store      store.Store
	Signer     jwtx.Signer
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Signup registers a new user and opens their first session. The user row and
// the initial refresh token are written in one transaction so a half-created
// account can never exist.
func (s *SessionService) Signup(ctx context.Context, username, email, password string) (domain.User, domain.TokenPair, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	passwordHash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	refreshOpaque, err := cryptox.GenerateToken(cryptox.TokenSizeRefresh)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	var user domain.User
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		id, err := tx.Users().CreateUser(ctx, username, email, passwordHash)
		if err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrCredentialConflict
			}
			return err
		}

		user, err = tx.Users().GetUserByID(ctx, id)
		if err != nil {
			return err
		}

		return tx.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
			UserID:    id,
			TokenHash: cryptox.FingerprintToken(refreshOpaque),
			ExpiresAt: now.Add(s.RefreshTTL),
		})
	})
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	accessToken, err := s.signAccess(user, now)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	l.Info("user signed up", "user_id", user.ID, "username", user.Username)

	return user, domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshOpaque,
	}, nil
}

// Login verifies credentials and opens a new session. Each login issues a
// fresh refresh token; existing sessions on other devices are untouched.
func (s *SessionService) Login(ctx context.Context, email, password string) (domain.User, domain.TokenPair, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn a hash comparison anyway so the response time doesn't
			// reveal whether the email exists.
			_ = cryptox.VerifyPassword(password, cryptox.DummyPasswordHash)
			return domain.User{}, domain.TokenPair{}, ErrInvalidCredentials
		}
		return domain.User{}, domain.TokenPair{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		l.Info("login password mismatch", "user_id", user.ID)
		return domain.User{}, domain.TokenPair{}, ErrInvalidCredentials
	}

	refreshOpaque, err := cryptox.GenerateToken(cryptox.TokenSizeRefresh)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	if err := s.Store.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		UserID:    user.ID,
		TokenHash: cryptox.FingerprintToken(refreshOpaque),
		ExpiresAt: now.Add(s.RefreshTTL),
	}); err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	accessToken, err := s.signAccess(user, now)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	return user, domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshOpaque,
	}, nil
}

// Refresh exchanges a live refresh token for a new access token. The refresh
// token itself is left in place and keeps working until expiry or logout.
//
// The user row is re-resolved on every renewal so a deleted account cannot
// keep minting access tokens off an old session.
func (s *SessionService) Refresh(ctx context.Context, refreshOpaque string) (string, error) {
	now := time.Now().UTC()

	rt, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, cryptox.FingerprintToken(refreshOpaque))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrSessionExpired
		}
		return "", err
	}

	user, err := s.Store.Users().GetUserByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrSessionExpired
		}
		return "", err
	}

	return s.signAccess(user, now)
}

// Logout revokes a single session by deleting its refresh token row. Logging
// out with a token that was never issued, already expired, or already revoked
// succeeds the same way; there is nothing useful to report.
func (s *SessionService) Logout(ctx context.Context, refreshOpaque string) error {
	return s.Store.RefreshTokens().DeleteRefreshToken(ctx, cryptox.FingerprintToken(refreshOpaque))
}

// LogoutAll revokes every session the user has, across all devices.
func (s *SessionService) LogoutAll(ctx context.Context, userID int64) error {
	return s.Store.RefreshTokens().DeleteAllUserRefreshTokens(ctx, userID)
}

// ResolveSubject reports whether the user behind an access token still
// exists. The bearer middleware calls this on every protected request; a
// storage fault is returned as-is so the transport layer can answer with a
// server error instead of blaming the caller's credentials.
func (s *SessionService) ResolveSubject(ctx context.Context, userID int64) (bool, error) {
	_, err := s.Store.Users().GetUserByID(ctx, userID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (s *SessionService) signAccess(u domain.User, now time.Time) (string, error) {
	return s.Signer.Sign(jwtx.NewAccessClaims(u.ID, u.Username, u.Email, s.AccessTTL, now))
}
