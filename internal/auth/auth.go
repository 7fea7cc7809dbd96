package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the caller's authorization level.
type Role string

const (
	RoleAgent Role = "agent"
	RoleAdmin Role = "admin"
)

// Identity is the authenticated caller attached to every request. The
// domain layer trusts it completely and performs no authentication of
// its own.
type Identity struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the identity carries the admin role.
func (id Identity) IsAdmin() bool {
	return id.Role == RoleAdmin
}

type contextKey struct{}

// WithIdentity returns a context carrying the given identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext extracts the caller identity set by the auth middleware.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// Claims are the JWT claims issued for portal sessions.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

const tokenTTL = 12 * time.Hour

// IssueToken signs a session token for the given user and role.
func IssueToken(secret []byte, userID string, role Role) (string, error) {
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    "dealdesk",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return token, nil
}

// VerifyToken parses and validates a session token, returning the caller
// identity it carries.
func VerifyToken(secret []byte, tokenStr string) (Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}

		return secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("parsing token: %w", err)
	}

	if !token.Valid {
		return Identity{}, errors.New("invalid token")
	}

	if claims.Subject == "" {
		return Identity{}, errors.New("token missing subject")
	}

	role := claims.Role
	if role != RoleAdmin {
		role = RoleAgent
	}

	return Identity{UserID: claims.Subject, Role: role}, nil
}
