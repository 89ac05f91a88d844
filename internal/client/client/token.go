package client

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IDTokenClaims are the identity token claims the client cares about.
type IDTokenClaims struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

// ParseIDToken reads an identity token's claims. The signature is NOT
// verified: the token is only inspected locally, the store verifies it.
func ParseIDToken(token string) (IDTokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return IDTokenClaims{}, fmt.Errorf("parse id token: %w", err)
	}

	var out IDTokenClaims
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	if uid, ok := claims["user_id"].(string); ok {
		out.UserID = uid
	} else if sub, err := claims.GetSubject(); err == nil {
		out.UserID = sub
	}
	if email, ok := claims["email"].(string); ok {
		out.Email = email
	}
	return out, nil
}
