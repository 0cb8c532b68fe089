package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHasher() *PasswordHasher {
	return NewPasswordHasher(Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLength: 32, SaltLength: 16})
}

func TestPasswordHashing(t *testing.T) {
	hasher := testHasher()

	hashed, err := hasher.Hash("testpassword")
	require.NoError(t, err)
	assert.NotEmpty(t, hashed)
	assert.Contains(t, hashed, "$")

	assert.True(t, hasher.Verify("testpassword", hashed))
	assert.False(t, hasher.Verify("wrongpassword", hashed))
}

func TestPasswordHashing_SaltDiffers(t *testing.T) {
	hasher := testHasher()

	first, err := hasher.Hash("same")
	require.NoError(t, err)
	second, err := hasher.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerifyPassword_Malformed(t *testing.T) {
	hasher := testHasher()

	for _, stored := range []string{"", "nodollar", "!!!$abc", "YWJj$!!!"} {
		assert.False(t, hasher.Verify("password", stored), stored)
	}
}
