package service

import (
	"context"
	"fmt"
	"time"

	"slotbook/internal/database"
	"slotbook/internal/domain"
	"slotbook/internal/events"
	"slotbook/internal/models"
	"slotbook/internal/schedule"

	"github.com/rs/zerolog"
)

// BookingService owns slot generation and the booking commit. Slots come
// from the pure generator; the commit is a single insert whose uniqueness
// constraint is the only double-booking guard. The calendar invite is a
// best-effort side effect queued after the insert succeeds.
type BookingService struct {
	store     domain.Store
	eventBus  domain.EventPublisher
	invites   domain.InviteScheduler
	generator *schedule.Generator
	logger    *zerolog.Logger
	now       func() time.Time
}

func NewBookingService(store domain.Store, eventBus domain.EventPublisher, invites domain.InviteScheduler, generator *schedule.Generator, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		store:     store,
		eventBus:  eventBus,
		invites:   invites,
		generator: generator,
		logger:    logger,
		now:       time.Now,
	}
}

// Location returns the reference zone calendar dates are interpreted in.
func (s *BookingService) Location() *time.Location {
	return s.generator.Location()
}

// GetSlots returns the bookable slots for a seller on a calendar date,
// past slots already filtered out. A seller without configured hours gets
// an empty list, not an error.
func (s *BookingService) GetSlots(ctx context.Context, sellerID string, date time.Time) ([]models.TimeSlot, error) {
	avail, err := s.store.GetAvailability(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	return s.generator.Slots(avail, date, s.now()), nil
}

// BookSlot commits the selected slot as an appointment. The slot is
// expected to come from a recent GetSlots result; it is not re-validated
// here. A concurrent booking of the same slot surfaces as
// database.ErrSlotTaken from the store.
func (s *BookingService) BookSlot(ctx context.Context, seller *models.Seller, buyer *models.User, slot models.TimeSlot) (*models.Appointment, error) {
	if !slot.End.After(s.now()) {
		return nil, database.ErrPastDate
	}

	appt := &models.Appointment{
		Title:       fmt.Sprintf("Appointment: %s - %s", buyer.DisplayName(), seller.DisplayName()),
		SellerID:    seller.ID,
		SellerName:  seller.Name,
		SellerEmail: seller.Email,
		BuyerID:     buyer.ID,
		BuyerName:   buyer.Name,
		BuyerEmail:  buyer.Email,
		StartTime:   slot.Start,
		EndTime:     slot.End,
		Status:      models.StatusConfirmed,
	}

	if err := s.store.CreateAppointment(ctx, appt); err != nil {
		return nil, err
	}

	s.publishEvent(events.EventAppointmentCreated, appt)
	s.enqueueInvite(ctx, appt)

	return appt, nil
}

func (s *BookingService) ListAppointments(ctx context.Context, participantID string) ([]*models.Appointment, error) {
	return s.store.ListAppointments(ctx, participantID)
}

func (s *BookingService) ListAppointmentsByRange(ctx context.Context, start, end time.Time) ([]*models.Appointment, error) {
	return s.store.ListAppointmentsByRange(ctx, start, end)
}

func (s *BookingService) publishEvent(eventType string, appt *models.Appointment) {
	if s.eventBus == nil {
		return
	}

	payload := events.AppointmentEventPayload{
		AppointmentID: appt.ID,
		SellerID:      appt.SellerID,
		SellerName:    appt.SellerName,
		BuyerID:       appt.BuyerID,
		BuyerName:     appt.BuyerName,
		StartTime:     appt.StartTime,
		EndTime:       appt.EndTime,
		Status:        appt.Status,
		MeetingLink:   appt.MeetingLink,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("appointment_id", appt.ID).Msg("publish event error")
	}
}

func (s *BookingService) enqueueInvite(ctx context.Context, appt *models.Appointment) {
	if s.invites == nil {
		return
	}

	// Invite delivery is advisory; the appointment record is the source
	// of truth and an enqueue failure only gets logged.
	if err := s.invites.EnqueueInvite(ctx, appt.ID); err != nil {
		s.logger.Error().Err(err).Str("appointment_id", appt.ID).Msg("invite enqueue error")
		return
	}

	s.publishEvent(events.EventInviteCreated, appt)
}
