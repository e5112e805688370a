package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"slotbook/internal/models"
)

// GetAvailability returns the seller's weekly template, or nil when the
// seller has never configured hours. Absence is not an error.
func (db *DB) GetAvailability(ctx context.Context, sellerID string) (*models.Availability, error) {
	query := `SELECT seller_id, days, start_time, end_time, updated_at
              FROM availability WHERE seller_id = ?`

	var av models.Availability
	var daysJSON string
	err := db.QueryRowContext(ctx, query, sellerID).Scan(
		&av.SellerID, &daysJSON, &av.StartTime, &av.EndTime, &av.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get availability: %w", err)
	}

	if err := json.Unmarshal([]byte(daysJSON), &av.Days); err != nil {
		return nil, fmt.Errorf("failed to parse availability days: %w", err)
	}
	return &av, nil
}

// UpsertAvailability stores the seller's template, replacing any previous
// one. There is exactly one row per seller; repeated writes never duplicate.
func (db *DB) UpsertAvailability(ctx context.Context, av *models.Availability) error {
	daysJSON, err := json.Marshal(av.Days)
	if err != nil {
		return fmt.Errorf("failed to encode availability days: %w", err)
	}

	now := time.Now()
	query := `INSERT INTO availability (seller_id, days, start_time, end_time, updated_at)
              VALUES (?, ?, ?, ?, ?)
              ON CONFLICT(seller_id) DO UPDATE SET
                days = excluded.days,
                start_time = excluded.start_time,
                end_time = excluded.end_time,
                updated_at = excluded.updated_at`
	if _, err := db.ExecContext(ctx, query, av.SellerID, string(daysJSON), av.StartTime, av.EndTime, now); err != nil {
		return fmt.Errorf("failed to upsert availability: %w", err)
	}

	av.UpdatedAt = now
	return nil
}
