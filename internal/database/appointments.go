package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"slotbook/internal/models"

	"github.com/google/uuid"
)

// CreateAppointment durably inserts a booking. The id is assigned here when
// the caller left it empty. A collision on (seller_id, start_time) returns
// ErrSlotTaken with no partial side effects.
func (db *DB) CreateAppointment(ctx context.Context, appt *models.Appointment) error {
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	now := time.Now()

	query := `INSERT INTO appointments (
                id, event_id, title, seller_id, seller_name, seller_email,
                buyer_id, buyer_name, buyer_email, start_time, end_time,
                meeting_link, status, created_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query,
		appt.ID,
		appt.EventID,
		appt.Title,
		appt.SellerID,
		appt.SellerName,
		appt.SellerEmail,
		appt.BuyerID,
		appt.BuyerName,
		appt.BuyerEmail,
		appt.StartTime,
		appt.EndTime,
		appt.MeetingLink,
		appt.Status,
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	appt.CreatedAt = now
	return nil
}

func (db *DB) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	query := `SELECT id, event_id, title, seller_id, seller_name, seller_email,
                     buyer_id, buyer_name, buyer_email, start_time, end_time,
                     meeting_link, status, created_at
              FROM appointments WHERE id = ?`
	appt, err := scanAppointment(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return appt, nil
}

// ListAppointments returns every appointment the participant takes part in,
// as seller or as buyer, ordered by start time ascending.
func (db *DB) ListAppointments(ctx context.Context, participantID string) ([]*models.Appointment, error) {
	query := `SELECT id, event_id, title, seller_id, seller_name, seller_email,
                     buyer_id, buyer_name, buyer_email, start_time, end_time,
                     meeting_link, status, created_at
              FROM appointments
              WHERE seller_id = ? OR buyer_id = ?
              ORDER BY start_time ASC`
	rows, err := db.QueryContext(ctx, query, participantID, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer rows.Close()

	var appointments []*models.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appointments = append(appointments, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return appointments, nil
}

// ListAppointmentsByRange returns appointments starting inside [start, end],
// ordered by start time. Used by the schedule export.
func (db *DB) ListAppointmentsByRange(ctx context.Context, start, end time.Time) ([]*models.Appointment, error) {
	query := `SELECT id, event_id, title, seller_id, seller_name, seller_email,
                     buyer_id, buyer_name, buyer_email, start_time, end_time,
                     meeting_link, status, created_at
              FROM appointments
              WHERE start_time >= ? AND start_time <= ?
              ORDER BY start_time ASC`
	rows, err := db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments by range: %w", err)
	}
	defer rows.Close()

	var appointments []*models.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appointments = append(appointments, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return appointments, nil
}

// SetAppointmentEvent records the calendar event id and meeting link for a
// booked appointment after the invite side-call succeeds.
func (db *DB) SetAppointmentEvent(ctx context.Context, id, eventID, meetingLink string) error {
	query := `UPDATE appointments SET event_id = ?, meeting_link = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, eventID, meetingLink, id)
	if err != nil {
		return fmt.Errorf("failed to set appointment event: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row rowScanner) (*models.Appointment, error) {
	appt := &models.Appointment{}
	err := row.Scan(
		&appt.ID, &appt.EventID, &appt.Title,
		&appt.SellerID, &appt.SellerName, &appt.SellerEmail,
		&appt.BuyerID, &appt.BuyerName, &appt.BuyerEmail,
		&appt.StartTime, &appt.EndTime,
		&appt.MeetingLink, &appt.Status, &appt.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return appt, nil
}
