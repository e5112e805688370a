package repository

import (
	"context"
	"sync/atomic"
	"time"

	"slotbook/internal/domain"
	"slotbook/internal/models"

	"github.com/rs/zerolog"
)

// FailoverSessionRepository serves from the primary store and falls back
// to the secondary when the primary errors. The primary is probed again
// after a cooldown so a recovered redis takes traffic back.
type FailoverSessionRepository struct {
	primary   domain.SessionRepository
	fallback  domain.SessionRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64 // unix nanos of the last failed probe
}

const failoverRecoveryInterval = time.Minute

func NewFailoverSessionRepository(primary, fallback domain.SessionRepository, logger *zerolog.Logger) *FailoverSessionRepository {
	return &FailoverSessionRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverSessionRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("primary session repository failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().UnixNano())
}

func (r *FailoverSessionRepository) shouldProbe() bool {
	return time.Since(time.Unix(0, r.lastCheck.Load())) > failoverRecoveryInterval
}

func (r *FailoverSessionRepository) GetSession(ctx context.Context, token string) (*models.Session, error) {
	if !r.isDown.Load() {
		session, err := r.primary.GetSession(ctx, token)
		if err == nil {
			return session, nil
		}
		r.markDown(err)
	} else if r.shouldProbe() {
		session, err := r.primary.GetSession(ctx, token)
		if err == nil {
			r.isDown.Store(false)
			return session, nil
		}
		r.lastCheck.Store(time.Now().UnixNano())
	}

	return r.fallback.GetSession(ctx, token)
}

func (r *FailoverSessionRepository) SetSession(ctx context.Context, session *models.Session) error {
	if !r.isDown.Load() {
		err := r.primary.SetSession(ctx, session)
		if err == nil {
			// Mirror into the fallback so tokens survive a later outage.
			_ = r.fallback.SetSession(ctx, session)
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.SetSession(ctx, session)
}

func (r *FailoverSessionRepository) DeleteSession(ctx context.Context, token string) error {
	var primaryErr error
	if !r.isDown.Load() {
		primaryErr = r.primary.DeleteSession(ctx, token)
		if primaryErr != nil {
			r.markDown(primaryErr)
		}
	}
	return r.fallback.DeleteSession(ctx, token)
}

func (r *FailoverSessionRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.markDown(err)
	}
	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}
