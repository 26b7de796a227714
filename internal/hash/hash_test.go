package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	t.Parallel()

	h, err := HashPassword("s3cret!")
	require.NoError(t, err)
	require.NotEmpty(t, h)
	assert.NotEqual(t, "s3cret!", h)

	ok, err := CheckPassword(h, "s3cret!")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(h, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckPassword_EmptyHash(t *testing.T) {
	t.Parallel()

	_, err := CheckPassword("", "anything")
	assert.ErrorIs(t, err, ErrEmptyHash)
}

func TestHashPassword_DistinctSalts(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("same-password")
	require.NoError(t, err)
	h2, err := HashPassword("same-password")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}
