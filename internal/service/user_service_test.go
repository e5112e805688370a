package service

import (
	"context"
	"testing"

	"slotbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestEnsureProfileBuyer(t *testing.T) {
	store := new(mockStore)
	svc := NewUserService(store, nil, testLogger())

	identity := &models.Identity{ID: "u1", Email: "anita@example.com", Name: "Anita", Role: models.RoleBuyer}
	user := &models.User{ID: "u1", Email: "anita@example.com", Name: "Anita", Role: models.RoleBuyer}
	store.On("EnsureUser", mock.Anything, identity).Return(user, true, nil)

	got, created, err := svc.EnsureProfile(context.Background(), identity)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "u1", got.ID)

	// Buyers never get a seller directory entry.
	store.AssertNotCalled(t, "EnsureSeller", mock.Anything, mock.Anything)
}

func TestEnsureProfileSeller(t *testing.T) {
	store := new(mockStore)
	svc := NewUserService(store, nil, testLogger())

	identity := &models.Identity{ID: "u2", Email: "rao@example.com", Role: models.RoleSeller}
	user := &models.User{ID: "u2", Email: "rao@example.com", Role: models.RoleSeller}
	store.On("EnsureUser", mock.Anything, identity).Return(user, true, nil)
	store.On("EnsureSeller", mock.Anything, mock.MatchedBy(func(s *models.Seller) bool {
		// Name falls back to email, specialty to the default.
		return s.ID == "u2" && s.Name == "rao@example.com" && s.Specialty == models.DefaultSpecialty
	})).Return(&models.Seller{ID: "u2"}, true, nil)

	_, created, err := svc.EnsureProfile(context.Background(), identity)
	require.NoError(t, err)
	assert.True(t, created)
	store.AssertExpectations(t)
}

func TestEnsureProfileIdempotent(t *testing.T) {
	store := new(mockStore)
	svc := NewUserService(store, nil, testLogger())

	identity := &models.Identity{ID: "u3", Email: "b@example.com", Role: models.RoleBuyer}
	user := &models.User{ID: "u3", Email: "b@example.com", Role: models.RoleBuyer}
	store.On("EnsureUser", mock.Anything, identity).Return(user, false, nil)

	_, created, err := svc.EnsureProfile(context.Background(), identity)
	require.NoError(t, err)
	assert.False(t, created, "second call must fetch, not create")
}

func TestEnsureProfileDefaultsRole(t *testing.T) {
	store := new(mockStore)
	svc := NewUserService(store, nil, testLogger())

	identity := &models.Identity{ID: "u4", Email: "x@example.com", Role: "admin"}
	store.On("EnsureUser", mock.Anything, mock.MatchedBy(func(id *models.Identity) bool {
		return id.Role == models.RoleBuyer
	})).Return(&models.User{ID: "u4", Role: models.RoleBuyer}, true, nil)

	_, _, err := svc.EnsureProfile(context.Background(), identity)
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestEnsureProfileRequiresIdentity(t *testing.T) {
	svc := NewUserService(new(mockStore), nil, testLogger())

	_, _, err := svc.EnsureProfile(context.Background(), &models.Identity{Email: "x@example.com"})
	assert.Error(t, err)

	_, _, err = svc.EnsureProfile(context.Background(), &models.Identity{ID: "u5"})
	assert.Error(t, err)
}
