package service

import (
	"context"
	"fmt"

	"slotbook/internal/domain"
	"slotbook/internal/events"
	"slotbook/internal/models"
	"slotbook/internal/schedule"

	"github.com/rs/zerolog"
)

type AvailabilityService struct {
	store    domain.Store
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewAvailabilityService(store domain.Store, eventBus domain.EventPublisher, logger *zerolog.Logger) *AvailabilityService {
	return &AvailabilityService{store: store, eventBus: eventBus, logger: logger}
}

// Get returns the seller's weekly template, nil when never configured.
func (s *AvailabilityService) Get(ctx context.Context, sellerID string) (*models.Availability, error) {
	return s.store.GetAvailability(ctx, sellerID)
}

// Save validates and upserts the seller's weekly template, then reads it
// back so the caller sees exactly what was stored.
func (s *AvailabilityService) Save(ctx context.Context, sellerID string, av *models.Availability) (*models.Availability, error) {
	av.SellerID = sellerID
	if err := validateTemplate(av); err != nil {
		return nil, err
	}

	if err := s.store.UpsertAvailability(ctx, av); err != nil {
		return nil, err
	}

	stored, err := s.store.GetAvailability(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		payload := events.AvailabilityEventPayload{
			SellerID:  stored.SellerID,
			Days:      stored.Days,
			StartTime: stored.StartTime,
			EndTime:   stored.EndTime,
		}
		if err := s.eventBus.PublishJSON(events.EventAvailabilityUpdated, payload); err != nil {
			s.logger.Error().Err(err).Str("seller_id", sellerID).Msg("publish event error")
		}
	}

	return stored, nil
}

// validateTemplate checks day codes and HH:MM times. Window ordering is
// deliberately not enforced; a degenerate window yields no slots.
func validateTemplate(av *models.Availability) error {
	for code := range av.Days {
		if !schedule.IsDayCode(code) {
			return fmt.Errorf("unknown day code %q", code)
		}
	}
	if _, _, ok := schedule.ParseClock(av.StartTime); !ok {
		return fmt.Errorf("invalid start_time %q, expected HH:MM", av.StartTime)
	}
	if _, _, ok := schedule.ParseClock(av.EndTime); !ok {
		return fmt.Errorf("invalid end_time %q, expected HH:MM", av.EndTime)
	}
	return nil
}
