// Package auth extracts the pre-validated actor identity carried on each
// connection. Authentication decisioning happens upstream; this core only
// verifies the token shape and signature and reads the resolved actor id
// and role set.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"tripchat/errors"
)

// Identity is the resolved actor presented at connect time.
type Identity struct {
	ActorID uuid.UUID
	Roles   []string
}

// ParseIdentity verifies an HS256 token and extracts the actor identity
// from its claims ("sub" and "roles").
func ParseIdentity(tokenString string, secret []byte) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Identity{}, errors.NewAuthorization("invalid identity token: %v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, errors.NewAuthorization("unexpected token claims")
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return Identity{}, errors.NewAuthorization("identity token misses subject")
	}
	actorID, err := uuid.Parse(subject)
	if err != nil {
		return Identity{}, errors.NewAuthorization("subject is not a valid actor id")
	}

	var roles []string
	if raw, ok := claims["roles"].([]any); ok {
		for _, r := range raw {
			if s, ok := r.(string); ok {
				roles = append(roles, s)
			}
		}
	}

	return Identity{ActorID: actorID, Roles: roles}, nil
}

// NewToken issues an identity token, used by tests and the dev client.
func NewToken(actorID uuid.UUID, roles []string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   actorID.String(),
		"roles": roles,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	})
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("token signing failed: %w", err)
	}
	return signed, nil
}
