package cryptox

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor used for all password hashes.
// 12 rounds keeps offline brute force expensive while staying well under
// interactive latency budgets.
const PasswordCost = 12

// ErrPasswordMismatch is returned by VerifyPassword when the plaintext does
// not match the stored digest.
var ErrPasswordMismatch = errors.New("cryptox: password does not match")

// DummyPasswordHash is a well-formed cost-12 digest. Login paths compare
// against it when the account doesn't exist, so a failed lookup costs the
// same as a failed password. The comparison result is always discarded.
const DummyPasswordHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// HashPassword hashes a plaintext password with bcrypt. The salt is generated
// per call and embedded in the output, so hashing the same password twice
// yields different digests. Never compare digests directly; use VerifyPassword.
func HashPassword(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("cryptox: hash password: %w", err)
	}
	return string(digest), nil
}

// VerifyPassword compares a plaintext password against a bcrypt digest.
// bcrypt's own comparison runs in time dependent only on the cost factor,
// not on where the inputs diverge.
func VerifyPassword(password, digest string) error {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("cryptox: verify password: %w", err)
	}
	return nil
}
