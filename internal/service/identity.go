package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID   uuid.UUID
	Username string
	Role     string
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns nil for anonymous requests.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey{}).(*Identity)
	return id
}

// actorID is the audit UserID for ctx, nil for anonymous or system calls.
func actorID(ctx context.Context) *uuid.UUID {
	id := IdentityFromContext(ctx)
	if id == nil || id.UserID == uuid.Nil {
		return nil
	}
	uid := id.UserID
	return &uid
}

// AccessClaims is the JWT body of an access token.
type AccessClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func SignAccessToken(id Identity, secret []byte, ttl time.Duration, now time.Time) (string, error) {
	claims := AccessClaims{
		Username: id.Username,
		Role:     id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseAccessToken validates signature and expiry and returns the caller identity.
func ParseAccessToken(tokenString string, secret []byte) (*Identity, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject claim: %w", err)
	}
	if claims.Role == "" {
		return nil, fmt.Errorf("token carries no role")
	}
	return &Identity{UserID: userID, Username: claims.Username, Role: claims.Role}, nil
}
