package api

import (
	"context"
	"crypto/subtle"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"slotbook/internal/config"
	"slotbook/internal/domain"
	"slotbook/internal/models"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// SessionResolver is the slice of the session repository the HTTP layer
// needs.
type SessionResolver interface {
	GetSession(ctx context.Context, token string) (*models.Session, error)
	SetSession(ctx context.Context, session *models.Session) error
	DeleteSession(ctx context.Context, token string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

var _ SessionResolver = (domain.SessionRepository)(nil)

// HTTPAuth provides service-key auth, session resolution and per-client
// rate limiting.
type HTTPAuth struct {
	cfg      config.APIConfig
	sessions SessionResolver
	limiters sync.Map // map[string]*rate.Limiter
}

func NewHTTPAuth(cfg config.APIConfig, sessions SessionResolver) *HTTPAuth {
	return &HTTPAuth{cfg: cfg, sessions: sessions}
}

// requireServiceKey rejects the request unless it carries a configured
// service key. Comparison is constant-time.
func (a *HTTPAuth) requireServiceKey(w http.ResponseWriter, r *http.Request) bool {
	if len(a.cfg.Auth.ServiceKeys) == 0 {
		writeError(w, http.StatusUnauthorized, "no service keys configured")
		return false
	}

	apiKey := strings.TrimSpace(r.Header.Get(a.apiKeyHeader()))
	if apiKey == "" {
		writeError(w, http.StatusUnauthorized, "missing api key")
		return false
	}

	for _, k := range a.cfg.Auth.ServiceKeys {
		if subtle.ConstantTimeCompare([]byte(k.Key), []byte(apiKey)) == 1 {
			return true
		}
	}

	writeError(w, http.StatusUnauthorized, "invalid api key")
	return false
}

// requireSession resolves the bearer session or writes a 401. Returns nil
// when the response has been written.
func (a *HTTPAuth) requireSession(w http.ResponseWriter, r *http.Request) *models.Session {
	session, err := a.sessionFromRequest(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to resolve session")
		return nil
	}
	if session == nil {
		writeError(w, http.StatusUnauthorized, "valid session required")
		return nil
	}
	return session
}

// sessionFromRequest resolves the bearer token, nil when absent, unknown
// or expired. Only infrastructure failures return an error.
func (a *HTTPAuth) sessionFromRequest(r *http.Request) (*models.Session, error) {
	token := a.bearerToken(r)
	if token == "" {
		return nil, nil
	}

	session, err := a.sessions.GetSession(r.Context(), token)
	if err != nil {
		return nil, err
	}
	if session == nil || session.Expired(time.Now()) {
		return nil, nil
	}
	return session, nil
}

func (a *HTTPAuth) bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get(a.sessionHeader()))
	return strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
}

// RevokeSession drops the stored session for a bearer token.
func (a *HTTPAuth) RevokeSession(ctx context.Context, token string) error {
	return a.sessions.DeleteSession(ctx, token)
}

// allowIssue throttles session issuing per identity, so a leaked service
// key cannot mint tokens in a tight loop.
func (a *HTTPAuth) allowIssue(ctx context.Context, email string) bool {
	allowed, err := a.sessions.CheckRateLimit(ctx, "session_issue:"+email, models.RateLimitRequests, models.RateLimitWindow*time.Second)
	if err != nil {
		return true
	}
	return allowed
}

// IssueSession mints and stores a session token for the user.
func (a *HTTPAuth) IssueSession(ctx context.Context, user *models.User, ttl time.Duration) (*models.Session, error) {
	now := time.Now()
	session := &models.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := a.sessions.SetSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// RateLimit applies a per-client token bucket keyed by api key, bearer
// token or remote host.
func (a *HTTPAuth) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.cfg.RateLimit.RPS > 0 {
			lim := a.getLimiter(a.clientKey(r))
			if !lim.Allow() {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (a *HTTPAuth) apiKeyHeader() string {
	h := strings.TrimSpace(strings.ToLower(a.cfg.Auth.HeaderAPIKey))
	if h == "" {
		h = "x-api-key"
	}
	return h
}

func (a *HTTPAuth) sessionHeader() string {
	h := strings.TrimSpace(strings.ToLower(a.cfg.Auth.SessionHeader))
	if h == "" {
		h = "authorization"
	}
	return h
}

func (a *HTTPAuth) clientKey(r *http.Request) string {
	if apiKey := strings.TrimSpace(r.Header.Get(a.apiKeyHeader())); apiKey != "" {
		return apiKey
	}
	if token := strings.TrimSpace(r.Header.Get(a.sessionHeader())); token != "" {
		return token
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return "unknown"
}

func (a *HTTPAuth) getLimiter(key string) *rate.Limiter {
	if v, ok := a.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	burst := a.cfg.RateLimit.Burst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(a.cfg.RateLimit.RPS), burst)
	actual, loaded := a.limiters.LoadOrStore(key, lim)
	if loaded {
		return actual.(*rate.Limiter)
	}
	return lim
}
