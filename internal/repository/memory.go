package repository

import (
	"context"
	"sync"
	"time"

	"slotbook/internal/models"
)

// MemorySessionRepository is the in-process fallback session store. Used
// directly when redis is not configured, and as the failover target when
// it is.
type MemorySessionRepository struct {
	sessions   sync.Map
	rateLimits sync.Map
	ttl        time.Duration
}

func NewMemorySessionRepository(ttl time.Duration) *MemorySessionRepository {
	return &MemorySessionRepository{ttl: ttl}
}

func (r *MemorySessionRepository) GetSession(ctx context.Context, token string) (*models.Session, error) {
	val, ok := r.sessions.Load(token)
	if !ok {
		return nil, nil
	}
	session := val.(*models.Session)
	if session.Expired(time.Now()) {
		r.sessions.Delete(token)
		return nil, nil
	}
	return session, nil
}

func (r *MemorySessionRepository) SetSession(ctx context.Context, session *models.Session) error {
	stored := *session
	if stored.ExpiresAt.IsZero() && r.ttl > 0 {
		stored.ExpiresAt = time.Now().Add(r.ttl)
	}
	r.sessions.Store(stored.Token, &stored)
	return nil
}

func (r *MemorySessionRepository) DeleteSession(ctx context.Context, token string) error {
	r.sessions.Delete(token)
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemorySessionRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, ok := r.rateLimits.Load(key)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{count: 1, expiresAt: now.Add(window)}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}

	r.rateLimits.Store(key, entry)
	return entry.count <= limit, nil
}
