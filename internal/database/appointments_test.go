package database

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"slotbook/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAppointment(seller, buyer string, start time.Time) *models.Appointment {
	return &models.Appointment{
		Title:       "Appointment: Anita - Dr. Rao",
		SellerID:    seller,
		SellerName:  "Dr. Rao",
		SellerEmail: seller + "@example.com",
		BuyerID:     buyer,
		BuyerName:   "Anita",
		BuyerEmail:  buyer + "@example.com",
		StartTime:   start,
		EndTime:     start.Add(models.SlotDuration),
		Status:      models.StatusConfirmed,
	}
}

func TestCreateAppointment(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	appt := testAppointment("seller-1", "buyer-1", start)
	require.NoError(t, db.CreateAppointment(ctx, appt))
	assert.NotEmpty(t, appt.ID, "id is assigned on insert")
	assert.False(t, appt.CreatedAt.IsZero())

	got, err := db.GetAppointment(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, "Appointment: Anita - Dr. Rao", got.Title)
	assert.Equal(t, "Dr. Rao", got.SellerName)
	assert.Equal(t, "buyer-1@example.com", got.BuyerEmail)
	assert.True(t, got.StartTime.Equal(start))
	assert.Equal(t, models.StatusConfirmed, got.Status)
}

func TestCreateAppointmentSlotTaken(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, db.CreateAppointment(ctx, testAppointment("seller-1", "buyer-1", start)))

	// Same seller, same start time: exactly one booking wins.
	err := db.CreateAppointment(ctx, testAppointment("seller-1", "buyer-2", start))
	assert.ErrorIs(t, err, ErrSlotTaken)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM appointments WHERE seller_id = ?`, "seller-1").Scan(&count))
	assert.Equal(t, 1, count)

	// A different seller at the same instant is unaffected.
	require.NoError(t, db.CreateAppointment(ctx, testAppointment("seller-2", "buyer-2", start)))

	// The same seller at a different time is unaffected.
	require.NoError(t, db.CreateAppointment(ctx, testAppointment("seller-1", "buyer-2", start.Add(models.SlotDuration))))
}

func TestCreateAppointmentConcurrentDuplicate(t *testing.T) {
	// File-backed so both goroutines hit the same database.
	logger := zerolog.New(io.Discard)
	db, err := NewDB(filepath.Join(t.TempDir(), "concurrent.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, buyer := range []string{"buyer-1", "buyer-2"} {
		wg.Add(1)
		go func(buyer string) {
			defer wg.Done()
			errs <- db.CreateAppointment(ctx, testAppointment("seller-1", buyer, start))
		}(buyer)
	}
	wg.Wait()
	close(errs)

	var failures int
	for err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, ErrSlotTaken)
			failures++
		}
	}
	assert.Equal(t, 1, failures, "exactly one of two concurrent bookings loses")

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM appointments WHERE seller_id = ?`, "seller-1").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestListAppointmentsForParticipant(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	later := testAppointment("seller-1", "buyer-1", base.Add(2*time.Hour))
	earlier := testAppointment("seller-1", "buyer-2", base)
	asBuyer := testAppointment("seller-2", "seller-1", base.Add(time.Hour))
	unrelated := testAppointment("seller-3", "buyer-3", base)

	for _, a := range []*models.Appointment{later, earlier, asBuyer, unrelated} {
		require.NoError(t, db.CreateAppointment(ctx, a))
	}

	appts, err := db.ListAppointments(ctx, "seller-1")
	require.NoError(t, err)
	require.Len(t, appts, 3, "includes bookings where the participant is the buyer")

	// Ordered by start time ascending.
	assert.Equal(t, earlier.ID, appts[0].ID)
	assert.Equal(t, asBuyer.ID, appts[1].ID)
	assert.Equal(t, later.ID, appts[2].ID)
}

func TestListAppointmentsByRange(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	inside := testAppointment("seller-1", "buyer-1", base.Add(time.Hour))
	before := testAppointment("seller-2", "buyer-1", base.Add(-24*time.Hour))
	after := testAppointment("seller-3", "buyer-1", base.Add(48*time.Hour))

	for _, a := range []*models.Appointment{inside, before, after} {
		require.NoError(t, db.CreateAppointment(ctx, a))
	}

	appts, err := db.ListAppointmentsByRange(ctx, base, base.Add(4*time.Hour))
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, inside.ID, appts[0].ID)
}

func TestSetAppointmentEvent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	appt := testAppointment("seller-1", "buyer-1", time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC))
	require.NoError(t, db.CreateAppointment(ctx, appt))

	require.NoError(t, db.SetAppointmentEvent(ctx, appt.ID, "evt-123", "https://meet.example.com/abc"))

	got, err := db.GetAppointment(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, "evt-123", got.EventID)
	assert.Equal(t, "https://meet.example.com/abc", got.MeetingLink)

	assert.ErrorIs(t, db.SetAppointmentEvent(ctx, "missing", "evt-x", ""), ErrNotFound)
}
