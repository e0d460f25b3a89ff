// Package auth verifies admin bearer tokens issued by the identity
// provider. The ops console never mints tokens; it only checks them.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/barkbase/opsdash/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// Config contains verifier configuration.
type Config struct {
	SecretKey string
}

// Verifier validates HS256 admin tokens.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a token verifier.
func NewVerifier(cfg Config) *Verifier {
	return &Verifier{secret: []byte(cfg.SecretKey)}
}

type adminClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// VerifyToken parses and validates a bearer token, returning the admin
// identity carried in its claims.
func (v *Verifier) VerifyToken(_ context.Context, token string) (*domain.AdminUser, error) {
	claims := &adminClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" || claims.Email == "" {
		return nil, fmt.Errorf("%w: missing identity claims", ErrInvalidToken)
	}

	return &domain.AdminUser{
		ID:    claims.Subject,
		Email: claims.Email,
		Role:  domain.Role(claims.Role),
	}, nil
}
