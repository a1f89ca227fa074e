package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calorieking/backend/internal/service"
	"github.com/calorieking/backend/internal/testhelpers"
	"github.com/calorieking/backend/internal/types"
)

type memoryRevoker struct {
	revoked map[string]time.Time
}

func (m *memoryRevoker) Revoke(_ context.Context, jti string, until time.Time) error {
	m.revoked[jti] = until
	return nil
}

func (m *memoryRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, ok := m.revoked[jti]
	return ok, nil
}

func TestSessionIssueAndValidate(t *testing.T) {
	ctx := context.Background()
	sessions := service.NewSessionService("test-secret", time.Hour, nil)
	principal := types.Principal{UserID: uuid.New(), Username: "alice"}

	token, claims, err := sessions.Issue(principal)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)

	got, err := sessions.Validate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, principal, *got)
}

func TestSessionValidateRejects(t *testing.T) {
	ctx := context.Background()
	sessions := service.NewSessionService("test-secret", time.Hour, nil)
	principal := types.Principal{UserID: uuid.New(), Username: "alice"}

	otherKey := service.NewSessionService("other-secret", time.Hour, nil)
	foreignToken, _, err := otherKey.Issue(principal)
	require.NoError(t, err)

	expired := service.NewSessionService("test-secret", -time.Minute, nil)
	expiredToken, _, err := expired.Issue(principal)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &types.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID:   principal.UserID,
		Username: principal.Username,
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"empty", ""},
		{"wrong key", foreignToken},
		{"expired", expiredToken},
		{"alg none", unsigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sessions.Validate(ctx, tt.token)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, service.ErrInvalidSession)
		})
	}
}

func TestSessionRevoke(t *testing.T) {
	ctx := context.Background()
	revoker := &memoryRevoker{revoked: map[string]time.Time{}}
	sessions := service.NewSessionService("test-secret", time.Hour, revoker)

	token, claims, err := sessions.Issue(types.Principal{UserID: uuid.New(), Username: "alice"})
	require.NoError(t, err)

	require.NoError(t, sessions.Revoke(ctx, token))
	assert.Contains(t, revoker.revoked, claims.ID)

	_, err = sessions.Validate(ctx, token)
	assert.ErrorIs(t, err, service.ErrSessionRevoked)

	assert.NoError(t, sessions.Revoke(ctx, "not-a-token"))
}

func TestSessionRevokeWithoutRevoker(t *testing.T) {
	ctx := context.Background()
	sessions := service.NewSessionService("test-secret", time.Hour, nil)

	token, _, err := sessions.Issue(types.Principal{UserID: uuid.New(), Username: "alice"})
	require.NoError(t, err)

	require.NoError(t, sessions.Revoke(ctx, token))

	_, err = sessions.Validate(ctx, token)
	assert.NoError(t, err)
}

func TestRedisRevoker(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()
	client := testhelpers.SetupRedis(t)
	sessions := service.NewSessionService("test-secret", time.Hour, service.NewRedisRevoker(client))

	token, claims, err := sessions.Issue(types.Principal{UserID: uuid.New(), Username: "alice"})
	require.NoError(t, err)

	_, err = sessions.Validate(ctx, token)
	require.NoError(t, err)

	require.NoError(t, sessions.Revoke(ctx, token))

	ttl, err := client.TTL(ctx, "session:revoked:"+claims.ID).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Minute)

	_, err = sessions.Validate(ctx, token)
	assert.ErrorIs(t, err, service.ErrSessionRevoked)
}
