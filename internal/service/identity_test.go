package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestAccessTokenRoundTrip(t *testing.T) {
	id := Identity{UserID: uuid.New(), Username: "rina", Role: "kasir"}
	token, err := SignAccessToken(id, testSecret, time.Hour, time.Now())
	require.NoError(t, err)

	got, err := ParseAccessToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, id, *got)
}

func TestParseAccessTokenRejects(t *testing.T) {
	id := Identity{UserID: uuid.New(), Username: "rina", Role: "kasir"}

	expired, err := SignAccessToken(id, testSecret, time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	_, err = ParseAccessToken(expired, testSecret)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	valid, err := SignAccessToken(id, testSecret, time.Hour, time.Now())
	require.NoError(t, err)
	_, err = ParseAccessToken(valid, []byte("other-secret"))
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	noRole, err := SignAccessToken(Identity{UserID: uuid.New(), Username: "x"}, testSecret, time.Hour, time.Now())
	require.NoError(t, err)
	_, err = ParseAccessToken(noRole, testSecret)
	assert.Error(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		Role:             "admin",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "not-a-uuid", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(testSecret)
	require.NoError(t, err)
	_, err = ParseAccessToken(badSubject, testSecret)
	assert.Error(t, err)

	_, err = ParseAccessToken("garbage", testSecret)
	assert.Error(t, err)
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, IdentityFromContext(ctx))
	assert.Nil(t, actorID(ctx))

	id := &Identity{UserID: uuid.New(), Role: "admin"}
	ctx = WithIdentity(ctx, id)
	assert.Same(t, id, IdentityFromContext(ctx))
	require.NotNil(t, actorID(ctx))
	assert.Equal(t, id.UserID, *actorID(ctx))
}
