package utils_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmlee-dev/studycafe-backend/internal/utils"
)

func TestNewAccessToken_RoundTrip(t *testing.T) {
	at, err := utils.NewAccessToken("secret", 42, "user", 30)
	require.NoError(t, err)
	require.NotEmpty(t, at.Token)
	assert.WithinDuration(t, time.Now().UTC().Add(30*time.Minute), at.Exp, 5*time.Second)

	tok, err := jwt.Parse(at.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	require.True(t, tok.Valid)
	claims := tok.Claims.(jwt.MapClaims)
	assert.Equal(t, float64(42), claims["sub"])
	assert.Equal(t, "user", claims["role"])
}

func TestNewAccessToken_WrongSecretRejected(t *testing.T) {
	at, err := utils.NewAccessToken("secret", 1, "admin", 5)
	require.NoError(t, err)

	_, err = jwt.Parse(at.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("other"), nil
	})
	assert.Error(t, err)
}

func TestNewRefreshToken_UniqueAndHashed(t *testing.T) {
	a, err := utils.NewRefreshToken(7)
	require.NoError(t, err)
	b, err := utils.NewRefreshToken(7)
	require.NoError(t, err)

	assert.NotEqual(t, a.Raw, b.Raw)
	assert.Len(t, a.Raw, 96)

	// The hash is deterministic and never equals the raw token.
	h1 := utils.HashRefreshRaw(a.Raw)
	h2 := utils.HashRefreshRaw(a.Raw)
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, a.Raw, h1)
	assert.Len(t, h1, 64)
}

func TestPasswordHashAndVerify(t *testing.T) {
	hash, err := utils.HashPassword("hunter2", 4)
	require.NoError(t, err)
	assert.True(t, utils.VerifyPassword(hash, "hunter2"))
	assert.False(t, utils.VerifyPassword(hash, "hunter3"))
	assert.False(t, utils.VerifyPassword("not-a-hash", "hunter2"))
}

func TestHashPassword_OutOfRangeCostStillHashes(t *testing.T) {
	// A misconfigured cost falls back to the bcrypt default instead
	// of erroring out or weakening the hash.
	hash, err := utils.HashPassword("hunter2", 0)
	require.NoError(t, err)
	assert.True(t, utils.VerifyPassword(hash, "hunter2"))

	hash, err = utils.HashPassword("hunter2", 99)
	require.NoError(t, err)
	assert.True(t, utils.VerifyPassword(hash, "hunter2"))
}
