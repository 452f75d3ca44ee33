package password_test

import (
	"testing"

	"jobtrack/internal/lib/password"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	plain := gofakeit.Password(true, true, true, true, false, 12)

	hash, err := password.Hash(plain)
	require.NoError(t, err)

	assert.True(t, password.Verify(plain, hash))
	assert.False(t, password.Verify(plain+"x", hash))
}

func TestHashIsSalted(t *testing.T) {
	plain := gofakeit.Password(true, true, true, true, false, 12)

	first, err := password.Hash(plain)
	require.NoError(t, err)
	second, err := password.Hash(plain)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, password.Verify(plain, first))
	assert.True(t, password.Verify(plain, second))
}

func TestVerifyMalformedDigest(t *testing.T) {
	assert.False(t, password.Verify("whatever", nil))
	assert.False(t, password.Verify("whatever", []byte("not-a-bcrypt-digest")))
}
