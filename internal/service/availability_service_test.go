package service

import (
	"context"
	"encoding/json"
	"testing"

	"slotbook/internal/events"
	"slotbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSaveAvailability(t *testing.T) {
	store := new(mockStore)
	bus := events.NewEventBus()
	svc := NewAvailabilityService(store, bus, testLogger())

	var published []events.AvailabilityEventPayload
	bus.Subscribe(events.EventAvailabilityUpdated, func(event *events.Event) error {
		var p events.AvailabilityEventPayload
		require.NoError(t, json.Unmarshal(event.Payload, &p))
		published = append(published, p)
		return nil
	})

	av := &models.Availability{
		Days:      map[string]bool{"mon": true, "wed": true},
		StartTime: "09:00",
		EndTime:   "17:00",
	}
	stored := &models.Availability{
		SellerID:  "seller-1",
		Days:      map[string]bool{"mon": true, "wed": true},
		StartTime: "09:00",
		EndTime:   "17:00",
	}
	store.On("UpsertAvailability", mock.Anything, av).Return(nil)
	store.On("GetAvailability", mock.Anything, "seller-1").Return(stored, nil)

	got, err := svc.Save(context.Background(), "seller-1", av)
	require.NoError(t, err)
	assert.Equal(t, "seller-1", got.SellerID)
	assert.Equal(t, "seller-1", av.SellerID, "seller id is stamped before the write")

	require.Len(t, published, 1)
	assert.Equal(t, "09:00", published[0].StartTime)

	store.AssertExpectations(t)
}

func TestSaveAvailabilityRejectsBadTemplate(t *testing.T) {
	store := new(mockStore)
	svc := NewAvailabilityService(store, nil, testLogger())

	cases := []struct {
		name string
		av   *models.Availability
	}{
		{"unknown day code", &models.Availability{Days: map[string]bool{"monday": true}, StartTime: "09:00", EndTime: "17:00"}},
		{"bad start time", &models.Availability{Days: map[string]bool{"mon": true}, StartTime: "9am", EndTime: "17:00"}},
		{"bad end time", &models.Availability{Days: map[string]bool{"mon": true}, StartTime: "09:00", EndTime: "25:00"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Save(context.Background(), "seller-1", tc.av)
			assert.Error(t, err)
		})
	}

	store.AssertNotCalled(t, "UpsertAvailability", mock.Anything, mock.Anything)
}

func TestSaveAvailabilityAllowsDegenerateWindow(t *testing.T) {
	store := new(mockStore)
	svc := NewAvailabilityService(store, nil, testLogger())

	// End before start is stored as-is; slot generation yields nothing for it.
	av := &models.Availability{
		Days:      map[string]bool{"mon": true},
		StartTime: "17:00",
		EndTime:   "09:00",
	}
	store.On("UpsertAvailability", mock.Anything, av).Return(nil)
	store.On("GetAvailability", mock.Anything, "seller-1").Return(av, nil)

	_, err := svc.Save(context.Background(), "seller-1", av)
	require.NoError(t, err)
}

func TestGetAvailabilityNotConfigured(t *testing.T) {
	store := new(mockStore)
	svc := NewAvailabilityService(store, nil, testLogger())

	store.On("GetAvailability", mock.Anything, "seller-x").Return(nil, nil)

	av, err := svc.Get(context.Background(), "seller-x")
	require.NoError(t, err)
	assert.Nil(t, av)
}
