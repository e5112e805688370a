package google

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"slotbook/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// CalendarService creates calendar events with Meet links through a
// service account. Implements domain.CalendarClient.
type CalendarService struct {
	service    *calendar.Service
	calendarID string
	timezone   string
}

func NewCalendarService(credentialsFile, calendarID, timezone string) (*CalendarService, error) {
	ctx := context.Background()

	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %v", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, calendar.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %v", err)
	}

	client := config.Client(ctx)

	srv, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Calendar service: %v", err)
	}

	return &CalendarService{
		service:    srv,
		calendarID: calendarID,
		timezone:   timezone,
	}, nil
}

// TestConnection verifies the calendar is reachable and readable.
func (s *CalendarService) TestConnection(ctx context.Context) error {
	_, err := s.service.Calendars.Get(s.calendarID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %v", err)
	}
	return nil
}

// GetServiceAccountEmail reads the client_email from the credentials file.
// Shown to operators so they can share the calendar with the account.
func (s *CalendarService) GetServiceAccountEmail(credentialsFile string) (string, error) {
	file, err := os.ReadFile(credentialsFile)
	if err != nil {
		return "", err
	}

	var creds struct {
		ClientEmail string `json:"client_email"`
	}

	if err := json.Unmarshal(file, &creds); err != nil {
		return "", err
	}

	return creds.ClientEmail, nil
}

// CreateEvent inserts the event with attendees, a Meet conference request
// and email plus popup reminders. Returns the server-assigned event id and
// the join link when one was provisioned.
func (s *CalendarService) CreateEvent(ctx context.Context, event domain.CalendarEvent) (*domain.CalendarResult, error) {
	attendees := make([]*calendar.EventAttendee, 0, len(event.Attendees))
	for _, email := range event.Attendees {
		attendees = append(attendees, &calendar.EventAttendee{Email: email})
	}

	entry := &calendar.Event{
		Summary:     event.Summary,
		Description: event.Description,
		Start: &calendar.EventDateTime{
			DateTime: event.Start.Format(time.RFC3339),
			TimeZone: s.timezone,
		},
		End: &calendar.EventDateTime{
			DateTime: event.End.Format(time.RFC3339),
			TimeZone: s.timezone,
		},
		Attendees: attendees,
		ConferenceData: &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId: uuid.NewString(),
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{
					Type: "hangoutsMeet",
				},
			},
		},
		Reminders: &calendar.EventReminders{
			UseDefault:      false,
			ForceSendFields: []string{"UseDefault"},
			Overrides: []*calendar.EventReminder{
				{Method: "email", Minutes: 30},
				{Method: "popup", Minutes: 10},
			},
		},
	}

	created, err := s.service.Events.Insert(s.calendarID, entry).
		ConferenceDataVersion(1).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to create calendar event: %v", err)
	}

	return &domain.CalendarResult{
		EventID:     created.Id,
		MeetingLink: created.HangoutLink,
	}, nil
}
