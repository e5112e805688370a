package database

import (
	"context"
	"fmt"
	"time"

	"slotbook/internal/models"
)

func (db *DB) CreateInviteTask(ctx context.Context, task *models.InviteTask) error {
	query := `INSERT INTO invite_queue (appointment_id, status, retry_count, last_error, created_at, next_retry_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		task.AppointmentID,
		task.Status,
		task.RetryCount,
		task.LastError,
		now,
		task.NextRetryAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create invite task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	task.ID = id
	task.CreatedAt = now

	return nil
}

func (db *DB) GetPendingInviteTasks(ctx context.Context, limit int) ([]models.InviteTask, error) {
	query := `SELECT id, appointment_id, status, retry_count, last_error, created_at, processed_at, next_retry_at
              FROM invite_queue
              WHERE status IN ('pending', 'retry') AND (next_retry_at IS NULL OR next_retry_at <= ?)
              ORDER BY created_at ASC LIMIT ?`
	rows, err := db.QueryContext(ctx, query, time.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending invite tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.InviteTask
	for rows.Next() {
		var t models.InviteTask
		if err := rows.Scan(
			&t.ID, &t.AppointmentID, &t.Status, &t.RetryCount, &t.LastError,
			&t.CreatedAt, &t.ProcessedAt, &t.NextRetryAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invite task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (db *DB) MarkInviteTaskDone(ctx context.Context, id int64) error {
	query := `UPDATE invite_queue SET status = ?, processed_at = ?, last_error = NULL WHERE id = ?`
	_, err := db.ExecContext(ctx, query, models.TaskStatusDone, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark invite task done: %w", err)
	}
	return nil
}

func (db *DB) MarkInviteTaskRetry(ctx context.Context, id int64, retryCount int, lastError string, nextRetryAt time.Time) error {
	query := `UPDATE invite_queue SET status = ?, retry_count = ?, last_error = ?, next_retry_at = ? WHERE id = ?`
	_, err := db.ExecContext(ctx, query, models.TaskStatusRetry, retryCount, lastError, nextRetryAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark invite task for retry: %w", err)
	}
	return nil
}

func (db *DB) MarkInviteTaskFailed(ctx context.Context, id int64, lastError string) error {
	query := `UPDATE invite_queue SET status = ?, last_error = ?, processed_at = ? WHERE id = ?`
	_, err := db.ExecContext(ctx, query, models.TaskStatusFailed, lastError, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark invite task failed: %w", err)
	}
	return nil
}
