package httpapi

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"campus-chat/errors"
)

func signedToken(t *testing.T, exp time.Time) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "7",
		"exp": exp.Unix(),
	})
	raw, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func TestSessionToken_ValidTokenPassesThrough(t *testing.T) {
	req := require.New(t)
	raw := signedToken(t, time.Now().Add(time.Hour))

	got, err := NewSessionToken(raw, time.Minute).Token()
	req.NoError(err)
	req.Equal(raw, got)
}

func TestSessionToken_ExpiredTokenIsReported(t *testing.T) {
	req := require.New(t)
	raw := signedToken(t, time.Now().Add(-time.Hour))

	_, err := NewSessionToken(raw, time.Minute).Token()
	req.ErrorIs(err, errors.ErrTokenExpired)
}

func TestSessionToken_LeewayToleratesClockSkew(t *testing.T) {
	req := require.New(t)
	raw := signedToken(t, time.Now().Add(-10*time.Second))

	_, err := NewSessionToken(raw, time.Minute).Token()
	req.NoError(err)
}

func TestSessionToken_MalformedTokenFails(t *testing.T) {
	req := require.New(t)

	_, err := NewSessionToken("not-a-jwt", time.Minute).Token()
	req.Error(err)
}

func TestStaticToken(t *testing.T) {
	req := require.New(t)

	got, err := StaticToken("opaque").Token()
	req.NoError(err)
	req.Equal("opaque", got)
}
