package service

import (
	"context"
	"time"

	"slotbook/internal/models"

	"github.com/stretchr/testify/mock"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) EnsureUser(ctx context.Context, identity *models.Identity) (*models.User, bool, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.User), args.Bool(1), args.Error(2)
}
func (m *mockStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *mockStore) EnsureSeller(ctx context.Context, seller *models.Seller) (*models.Seller, bool, error) {
	args := m.Called(ctx, seller)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Seller), args.Bool(1), args.Error(2)
}
func (m *mockStore) GetSeller(ctx context.Context, id string) (*models.Seller, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Seller), args.Error(1)
}
func (m *mockStore) ListSellers(ctx context.Context) ([]*models.Seller, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Seller), args.Error(1)
}
func (m *mockStore) GetAvailability(ctx context.Context, sellerID string) (*models.Availability, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Availability), args.Error(1)
}
func (m *mockStore) UpsertAvailability(ctx context.Context, av *models.Availability) error {
	return m.Called(ctx, av).Error(0)
}
func (m *mockStore) CreateAppointment(ctx context.Context, appt *models.Appointment) error {
	return m.Called(ctx, appt).Error(0)
}
func (m *mockStore) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}
func (m *mockStore) ListAppointments(ctx context.Context, participantID string) ([]*models.Appointment, error) {
	args := m.Called(ctx, participantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Appointment), args.Error(1)
}
func (m *mockStore) ListAppointmentsByRange(ctx context.Context, start, end time.Time) ([]*models.Appointment, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Appointment), args.Error(1)
}
func (m *mockStore) SetAppointmentEvent(ctx context.Context, id, eventID, meetingLink string) error {
	return m.Called(ctx, id, eventID, meetingLink).Error(0)
}

type mockInviteScheduler struct {
	mock.Mock
}

func (m *mockInviteScheduler) EnqueueInvite(ctx context.Context, appointmentID string) error {
	return m.Called(ctx, appointmentID).Error(0)
}
