package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/inklingapp/inkling/pkg/jwtx"
	"github.com/inklingapp/inkling/pkg/slogx"
)

// SubjectResolver reports whether the token subject still exists. A false
// result means the account behind a still-valid token is gone; a non-nil
// error means the lookup itself failed and says nothing about the account.
type SubjectResolver func(ctx context.Context, userID int64) (bool, error)

// AuthnMiddleware authenticates requests with a bearer access token.
//
// A missing or non-bearer Authorization header yields 401. A token that fails
// verification, has expired, or names a subject the resolver no longer knows
// yields 403: the caller presented credentials, they just aren't acceptable.
func AuthnMiddleware(v jwtx.Verifier, resolve SubjectResolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				w.Header().Set("WWW-Authenticate", `Bearer`)
				WriteError(w, http.StatusUnauthorized, "access token required")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.Verify(raw)
			if err != nil {
				log.Warn("jwt verify failed", "err", err)
				WriteError(w, http.StatusForbidden, "invalid or expired token")
				return
			}

			if err := claims.ValidateExpiry(); err != nil {
				WriteError(w, http.StatusForbidden, "invalid or expired token")
				return
			}

			userID, err := claims.UserID()
			if err != nil {
				log.Warn("jwt subject not numeric", "sub", claims.Subject)
				WriteError(w, http.StatusForbidden, "invalid or expired token")
				return
			}

			if resolve != nil {
				found, err := resolve(ctx, userID)
				if err != nil {
					// A lookup failure is our fault, not the caller's; a 403
					// here would make clients discard a perfectly good session.
					log.Error("subject lookup failed", "err", err)
					WriteError(w, http.StatusInternalServerError, "internal server error")
					return
				}
				if !found {
					WriteError(w, http.StatusForbidden, "user not found")
					return
				}
			}

			ctx = context.WithValue(ctx, CtxKeyUserID, userID)
			ctx = context.WithValue(ctx, CtxKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
