package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"slotbook/internal/models"
)

// EnsureUser fetches the user record for identity.ID, creating it when it
// does not exist yet. The returned bool is true when a record was created.
// Existing records win: a repeat call never overwrites the stored profile.
func (db *DB) EnsureUser(ctx context.Context, identity *models.Identity) (*models.User, bool, error) {
	user, err := db.GetUser(ctx, identity.ID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	now := time.Now()
	query := `INSERT INTO users (id, email, name, avatar, role, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)
              ON CONFLICT(id) DO NOTHING`
	if _, err := db.ExecContext(ctx, query,
		identity.ID, identity.Email, identity.Name, identity.Avatar, identity.Role, now, now,
	); err != nil {
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}

	// Re-read so a racing creator's record is what we hand back.
	user, err = db.GetUser(ctx, identity.ID)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func (db *DB) GetUser(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT id, email, name, avatar, role, created_at, updated_at
              FROM users WHERE id = ?`
	var user models.User
	err := db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.Name, &user.Avatar, &user.Role,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// EnsureSeller mirrors EnsureUser for the sellers directory.
func (db *DB) EnsureSeller(ctx context.Context, seller *models.Seller) (*models.Seller, bool, error) {
	existing, err := db.GetSeller(ctx, seller.ID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	now := time.Now()
	query := `INSERT INTO sellers (id, name, email, avatar, specialty, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)
              ON CONFLICT(id) DO NOTHING`
	if _, err := db.ExecContext(ctx, query,
		seller.ID, seller.Name, seller.Email, seller.Avatar, seller.Specialty, now, now,
	); err != nil {
		return nil, false, fmt.Errorf("failed to create seller: %w", err)
	}

	existing, err = db.GetSeller(ctx, seller.ID)
	if err != nil {
		return nil, false, err
	}
	return existing, true, nil
}

func (db *DB) GetSeller(ctx context.Context, id string) (*models.Seller, error) {
	query := `SELECT id, name, email, avatar, specialty, created_at, updated_at
              FROM sellers WHERE id = ?`
	var seller models.Seller
	err := db.QueryRowContext(ctx, query, id).Scan(
		&seller.ID, &seller.Name, &seller.Email, &seller.Avatar, &seller.Specialty,
		&seller.CreatedAt, &seller.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get seller: %w", err)
	}
	return &seller, nil
}

func (db *DB) ListSellers(ctx context.Context) ([]*models.Seller, error) {
	query := `SELECT id, name, email, avatar, specialty, created_at, updated_at
              FROM sellers ORDER BY name ASC, email ASC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sellers: %w", err)
	}
	defer rows.Close()

	var sellers []*models.Seller
	for rows.Next() {
		s := &models.Seller{}
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Email, &s.Avatar, &s.Specialty,
			&s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan seller: %w", err)
		}
		sellers = append(sellers, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sellers, nil
}
