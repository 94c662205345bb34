package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndComparePasswordHash(t *testing.T) {
	hash, err := GeneratePasswordHash("p1")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "p1", hash)

	assert.NoError(t, ComparePasswordHash([]byte(hash), "p1"))
	assert.Error(t, ComparePasswordHash([]byte(hash), "wrong"))
}

func TestGeneratePasswordHash_Salted(t *testing.T) {
	first, err := GeneratePasswordHash("p1")
	require.NoError(t, err)
	second, err := GeneratePasswordHash("p1")
	require.NoError(t, err)

	// bcrypt salts every hash; equal inputs never produce equal hashes
	assert.NotEqual(t, first, second)
}
