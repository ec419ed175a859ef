package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSecretKey = "12345678901234567890123456789012"

func TestCreateAndVerifyToken(t *testing.T) {
	maker, err := NewMaker(testSecretKey, time.Hour)
	require.NoError(t, err)

	tokenString, err := maker.CreateToken(42, "0912345678")
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := maker.VerifyToken(tokenString)
	require.NoError(t, err)
	require.EqualValues(t, 42, claims.ProfileID)
	require.Equal(t, "0912345678", claims.Phone)
}

func TestExpiredToken(t *testing.T) {
	maker, err := NewMaker(testSecretKey, -time.Minute)
	require.NoError(t, err)

	tokenString, err := maker.CreateToken(1, "0911111111")
	require.NoError(t, err)

	_, err = maker.VerifyToken(tokenString)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestInvalidToken(t *testing.T) {
	maker, err := NewMaker(testSecretKey, time.Hour)
	require.NoError(t, err)

	_, err = maker.VerifyToken("not.a.token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestShortSecretKeyRejected(t *testing.T) {
	_, err := NewMaker("tooshort", time.Hour)
	require.Error(t, err)
}
