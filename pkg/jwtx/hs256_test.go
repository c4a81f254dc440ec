package jwtx

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestSignAndVerifyRoundtrip(t *testing.T) {
	t.Parallel()

	signer, err := NewSignerHS256(testSecret)
	require.NoError(t, err)
	verifier := NewVerifierHS256(testSecret)

	claims := NewAccessClaims(42, "alice", "alice@example.com", DefaultAccessTokenTTL, time.Now())
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	got, err := verifier.Verify(token)
	require.NoError(t, err)

	id, err := got.UserID()
	require.NoError(t, err)
	require.Equal(t, int64(42), id)
	require.Equal(t, "alice", got.Username)
	require.Equal(t, "alice@example.com", got.Email)
	require.NoError(t, got.ValidateExpiry())
}

func TestNewSignerRejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := NewSignerHS256([]byte("too-short"))
	require.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	signer, err := NewSignerHS256(testSecret)
	require.NoError(t, err)
	verifier := NewVerifierHS256(testSecret)

	// Issued in the past so the token is already expired; the signature is
	// still perfectly valid.
	claims := NewAccessClaims(7, "bob", "bob@example.com", time.Minute, time.Now().Add(-2*time.Minute))
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrExpired)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	signer, err := NewSignerHS256(testSecret)
	require.NoError(t, err)

	claims := NewAccessClaims(7, "bob", "bob@example.com", time.Minute, time.Now())
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	other := NewVerifierHS256([]byte("ffffffffffffffffffffffffffffffff"))
	_, err = other.Verify(token)
	require.ErrorIs(t, err, ErrInvalidSig)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	t.Parallel()

	signer, err := NewSignerHS256(testSecret)
	require.NoError(t, err)
	verifier := NewVerifierHS256(testSecret)

	claims := NewAccessClaims(7, "bob", "bob@example.com", time.Minute, time.Now())
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	// Flip a character in the payload segment.
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	_, err = verifier.Verify(tampered)
	require.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	t.Parallel()

	verifier := NewVerifierHS256(testSecret)
	_, err := verifier.Verify("not.a.jwt")
	require.Error(t, err)
	_, err = verifier.Verify("")
	require.Error(t, err)
}

func TestClaimsUserIDRejectsNonNumericSubject(t *testing.T) {
	t.Parallel()

	c := Claims{}
	c.Subject = "abc"
	_, err := c.UserID()
	require.ErrorIs(t, err, ErrInvalidClaim)
}
