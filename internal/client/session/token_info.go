package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo describes the held access token as far as its claims can be
// decoded. The token is not verified here (the backend owns the signature);
// this exists purely for display.
type TokenInfo struct {
	Subject   string
	ExpiresAt time.Time
}

// TokenInfo decodes the claims of the current access token. Returns the zero
// value when no token is held or the token is not a well-formed JWT.
func (m *Manager) TokenInfo() TokenInfo {
	access := m.AccessToken()
	if access == "" {
		return TokenInfo{}
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err != nil {
		return TokenInfo{}
	}

	var info TokenInfo
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info
}
