package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Signer is our interface for anything that can mint signed access tokens.
type Signer interface {
	Sign(Claims) (string, error)
}

// HS256Signer signs tokens with a single process-wide HMAC secret. The
// secret is injected at construction and immutable afterwards; there is
// deliberately no mutable global.
type HS256Signer struct {
	secret []byte
}

// MinSecretLen is the smallest HS256 secret the signer will accept.
const MinSecretLen = 32

// NewSignerHS256 creates an HS256 signer from the shared secret.
// The secret must be at least 32 bytes; anything shorter is trivially
// brute-forceable and refused outright.
func NewSignerHS256(secret []byte) (*HS256Signer, error) {
	if len(secret) < MinSecretLen {
		return nil, errors.New("jwtx: HS256 secret must be at least 32 bytes")
	}
	return &HS256Signer{secret: secret}, nil
}

// Sign takes claims and turns them into a signed JWT string.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}
