package repository

import (
	"context"
	"testing"
	"time"

	"slotbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionRepository(t *testing.T) {
	repo := NewMemorySessionRepository(time.Hour)
	ctx := context.Background()

	session := &models.Session{Token: "tok-1", UserID: "user-1", Role: models.RoleBuyer}
	require.NoError(t, repo.SetSession(ctx, session))

	got, err := repo.GetSession(ctx, "tok-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "user-1", got.UserID)
	assert.False(t, got.ExpiresAt.IsZero(), "TTL should be applied when ExpiresAt is unset")

	require.NoError(t, repo.DeleteSession(ctx, "tok-1"))
	got, err = repo.GetSession(ctx, "tok-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemorySessionExpiry(t *testing.T) {
	repo := NewMemorySessionRepository(time.Hour)
	ctx := context.Background()

	session := &models.Session{
		Token:     "tok-exp",
		UserID:    "user-1",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, repo.SetSession(ctx, session))

	got, err := repo.GetSession(ctx, "tok-exp")
	require.NoError(t, err)
	assert.Nil(t, got, "expired sessions must not be returned")
}

func TestMemoryRateLimit(t *testing.T) {
	repo := NewMemorySessionRepository(time.Hour)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		allowed, err := repo.CheckRateLimit(ctx, "client", 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := repo.CheckRateLimit(ctx, "client", 5, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	// A different key has its own budget.
	allowed, err = repo.CheckRateLimit(ctx, "other", 5, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}
