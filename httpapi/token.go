package httpapi

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"campus-chat/errors"
)

// StaticToken hands out a fixed opaque token, for tests and tooling.
type StaticToken string

func (t StaticToken) Token() (string, error) {
	return string(t), nil
}

// SessionToken holds the portal's JWT session token. The client does
// not verify the signature (that is the server's job); it only decodes
// the exp claim so a stale token is reported before a request is
// attempted instead of as an opaque 401.
type SessionToken struct {
	raw    string
	leeway time.Duration
	now    func() time.Time
}

func NewSessionToken(raw string, leeway time.Duration) *SessionToken {
	return &SessionToken{raw: raw, leeway: leeway, now: time.Now}
}

func (t *SessionToken) Token() (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(t.raw, claims); err != nil {
		return "", fmt.Errorf("malformed session token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return "", fmt.Errorf("session token exp claim: %w", err)
	}
	if exp != nil && t.now().After(exp.Time.Add(t.leeway)) {
		return "", errors.ErrTokenExpired
	}
	return t.raw, nil
}
