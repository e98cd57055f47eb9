package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const visitorAudience = "salvatore-site"

// VisitorClaims identify an anonymous site visitor. The subject is the key
// under which per-visitor state (the intro counter) is stored.
type VisitorClaims struct {
	jwt.RegisteredClaims
}

// NewVisitorToken issues a token for a freshly generated visitor id.
func NewVisitorToken(secret string, ttl time.Duration) (token, visitorID string, err error) {
	visitorID = uuid.NewString()
	token, err = SignVisitor(visitorID, secret, ttl)
	return token, visitorID, err
}

func SignVisitor(visitorID, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := VisitorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   visitorID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Audience:  []string{visitorAudience},
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseVisitor validates a visitor token and returns the visitor id.
func ParseVisitor(tokenString, secret string) (string, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &VisitorClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithAudience(visitorAudience))
	if err != nil {
		return "", err
	}
	claims, ok := tok.Claims.(*VisitorClaims)
	if !ok || !tok.Valid || claims.Subject == "" {
		return "", errors.New("invalid visitor token")
	}
	return claims.Subject, nil
}
