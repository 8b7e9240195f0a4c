// Package auth verifies access tokens and carries the authenticated
// principal through a request. Tokens are issued by the authentication
// service; this service only needs the subject and role they carry.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/congo-pay/congo_wallet/internal/account"
)

var (
	ErrNoSubject = errors.New("token has no subject")
	ErrNoRole    = errors.New("token has no valid role")
)

// Claims are the access-token claims the service relies on.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ParseToken verifies an HS256 token and returns the principal it carries.
func ParseToken(token string, secret []byte) (account.Principal, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return account.Principal{}, err
	}
	if claims.Subject == "" {
		return account.Principal{}, ErrNoSubject
	}
	role, ok := account.ParseRole(claims.Role)
	if !ok {
		return account.Principal{}, ErrNoRole
	}
	return account.Principal{ID: claims.Subject, Role: role}, nil
}

// SignToken issues an HS256 token for p valid for ttl. Used by local tooling
// and tests standing in for the authentication service.
func SignToken(p account.Principal, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: p.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
