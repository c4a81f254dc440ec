package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPasswordIsSalted(t *testing.T) {
	t.Parallel()

	a, err := HashPassword("Sup3rSecret")
	require.NoError(t, err)
	b, err := HashPassword("Sup3rSecret")
	require.NoError(t, err)

	// Random salt per call means two hashes of the same input differ.
	require.NotEqual(t, a, b)

	require.NoError(t, VerifyPassword("Sup3rSecret", a))
	require.NoError(t, VerifyPassword("Sup3rSecret", b))
}

func TestVerifyPasswordRejectsWrongPassword(t *testing.T) {
	t.Parallel()

	digest, err := HashPassword("correct-horse")
	require.NoError(t, err)

	err = VerifyPassword("battery-staple", digest)
	require.ErrorIs(t, err, ErrPasswordMismatch)
}

func TestVerifyPasswordRejectsGarbageDigest(t *testing.T) {
	t.Parallel()

	err := VerifyPassword("anything", "not-a-bcrypt-digest")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrPasswordMismatch)
}
