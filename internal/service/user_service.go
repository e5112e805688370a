package service

import (
	"context"
	"errors"

	"slotbook/internal/domain"
	"slotbook/internal/events"
	"slotbook/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	store    domain.Store
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewUserService(store domain.Store, eventBus domain.EventPublisher, logger *zerolog.Logger) *UserService {
	return &UserService{store: store, eventBus: eventBus, logger: logger}
}

// EnsureProfile makes sure persisted records exist for a verified external
// identity: a user record always, plus a seller directory entry when the
// role is seller. Idempotent; existing records are fetched, not rewritten.
// The returned bool is true when the user record was created on this call.
func (s *UserService) EnsureProfile(ctx context.Context, identity *models.Identity) (*models.User, bool, error) {
	if identity.ID == "" || identity.Email == "" {
		return nil, false, errors.New("identity id and email are required")
	}
	if identity.Role != models.RoleBuyer && identity.Role != models.RoleSeller {
		identity.Role = models.RoleBuyer
	}

	user, created, err := s.store.EnsureUser(ctx, identity)
	if err != nil {
		return nil, false, err
	}

	if user.Role == models.RoleSeller {
		specialty := identity.Specialty
		if specialty == "" {
			specialty = models.DefaultSpecialty
		}
		name := identity.Name
		if name == "" {
			name = identity.Email
		}
		seller := &models.Seller{
			ID:        user.ID,
			Name:      name,
			Email:     user.Email,
			Avatar:    identity.Avatar,
			Specialty: specialty,
		}
		if _, _, err := s.store.EnsureSeller(ctx, seller); err != nil {
			return nil, false, err
		}
	}

	if created && s.eventBus != nil {
		if err := s.eventBus.PublishJSON(events.EventProfileCreated, user); err != nil {
			s.logger.Error().Err(err).Str("user_id", user.ID).Msg("publish event error")
		}
	}

	return user, created, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.store.GetUser(ctx, id)
}

func (s *UserService) GetSeller(ctx context.Context, id string) (*models.Seller, error) {
	return s.store.GetSeller(ctx, id)
}

func (s *UserService) ListSellers(ctx context.Context) ([]*models.Seller, error) {
	return s.store.ListSellers(ctx)
}
