package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCodec signs and verifies session tokens.
//
// A token binds a subject ID to its issue time under an HMAC-SHA256
// signature. It carries no expiry of its own: the validity window is a
// parameter of Read, so the policy can change without reissuing tokens.
// The secret is injected at construction; tests use distinct secrets
// and rotation is a constructor-time concern.
type SessionCodec struct {
	secret []byte
}

// sessionClaims is the signed token payload: subject and issue time only.
type sessionClaims struct {
	jwt.RegisteredClaims
}

// NewSessionCodec creates a codec using the given signing secret.
func NewSessionCodec(secret string) *SessionCodec {
	return &SessionCodec{secret: []byte(secret)}
}

// Issue creates a signed token vouching for the subject ID at the
// current time.
func (c *SessionCodec) Issue(subjectID string) (string, error) {
	if subjectID == "" {
		return "", fmt.Errorf("issuing token: empty subject")
	}

	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  subjectID,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// Read verifies a token and returns its subject ID.
//
// It returns ErrTokenInvalid for anything that fails signature or
// structural checks, and ErrTokenExpired when the issue time is older
// than maxAge. Callers must treat both the same as a missing token;
// no claim data is returned on failure.
func (c *SessionCodec) Read(token string, maxAge time.Duration) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(_ *jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return "", ErrTokenInvalid
	}

	if claims.Subject == "" || claims.IssuedAt == nil {
		return "", ErrTokenInvalid
	}

	if time.Since(claims.IssuedAt.Time) > maxAge {
		return "", ErrTokenExpired
	}

	return claims.Subject, nil
}
