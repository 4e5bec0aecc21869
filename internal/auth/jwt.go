// Package auth issues and validates the JWT tokens that guard the operator
// console. Tokens are HMAC-signed with the secret from configuration.
package auth

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidSecret is returned when an operator presents the wrong shared
// secret during login.
var ErrInvalidSecret = errors.New("invalid console secret")

const operatorRole = "operator"

// Claims carried by console tokens.
type Claims struct {
	Operator string `json:"operator"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Auth signs and validates console tokens with a shared secret.
type Auth struct {
	secret []byte
	ttl    time.Duration
}

// New creates an authenticator. Tokens expire after ttl; zero means a day.
func New(secret string, ttl time.Duration) *Auth {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &Auth{secret: []byte(secret), ttl: ttl}
}

// Login exchanges the shared secret for a signed operator token.
func (a *Auth) Login(operator, secret string) (string, time.Time, error) {
	if subtle.ConstantTimeCompare([]byte(secret), a.secret) != 1 {
		return "", time.Time{}, ErrInvalidSecret
	}

	expiresAt := time.Now().Add(a.ttl)
	claims := &Claims{
		Operator: operator,
		Role:     operatorRole,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Validate parses a token and returns its claims if the signature checks
// out, the token has not expired, and it carries the operator role.
func (a *Auth) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrInvalidKey
	}
	if claims.Role != operatorRole {
		return nil, errors.New("token does not carry the operator role")
	}
	return claims, nil
}
