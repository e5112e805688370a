package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"slotbook/internal/access"
	"slotbook/internal/config"
	"slotbook/internal/database"
	"slotbook/internal/metrics"
	"slotbook/internal/models"
	"slotbook/internal/service"

	"github.com/rs/zerolog"
)

// HTTPServer exposes the scheduling API.
type HTTPServer struct {
	cfg          config.APIConfig
	users        *service.UserService
	booking      *service.BookingService
	availability *service.AvailabilityService
	auth         *HTTPAuth
	sessionTTL   time.Duration
	server       *http.Server
	logger       *zerolog.Logger
}

func NewHTTPServer(
	cfg config.APIConfig,
	sessionTTL time.Duration,
	users *service.UserService,
	booking *service.BookingService,
	availability *service.AvailabilityService,
	sessions SessionResolver,
	logger *zerolog.Logger,
) *HTTPServer {
	mux := http.NewServeMux()
	srv := &HTTPServer{
		cfg:          cfg,
		users:        users,
		booking:      booking,
		availability: availability,
		sessionTTL:   sessionTTL,
		logger:       logger,
	}
	srv.auth = NewHTTPAuth(cfg, sessions)

	mux.HandleFunc("/api/v1/sessions", srv.handleSessions)
	mux.HandleFunc("/api/v1/sellers", srv.handleSellers)
	mux.HandleFunc("/api/v1/sellers/", srv.handleSellerSlots)
	mux.HandleFunc("/api/v1/availability", srv.handleAvailability)
	mux.HandleFunc("/api/v1/appointments", srv.handleAppointments)
	mux.HandleFunc("/api/v1/appointments/export", srv.handleExport)
	mux.HandleFunc("/api/v1/navigation", srv.handleNavigation)
	mux.HandleFunc("/healthz", srv.handleHealth)

	handler := srv.loggingMiddleware(srv.auth.RateLimit(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return srv
}

// Handler returns the fully wrapped handler. Used by tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSessions issues sessions for externally verified identities and
// revokes them on logout. Issuing is service-key only: callers are
// trusted backends that already ran the identity check.
func (s *HTTPServer) handleSessions(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("sessions")

	switch r.Method {
	case http.MethodPost:
		s.issueSession(w, r)
	case http.MethodDelete:
		s.revokeSession(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) issueSession(w http.ResponseWriter, r *http.Request) {
	if !s.auth.requireServiceKey(w, r) {
		return
	}

	var identity models.Identity
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&identity); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if !s.auth.allowIssue(r.Context(), identity.Email) {
		writeError(w, http.StatusTooManyRequests, "too many session requests")
		return
	}

	user, _, err := s.users.EnsureProfile(r.Context(), &identity)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := s.auth.IssueSession(r.Context(), user, s.sessionTTL)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to issue session")
		writeError(w, http.StatusInternalServerError, "failed to issue session")
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// revokeSession logs the bearer session out. Unknown tokens still get a
// 204, revocation is idempotent.
func (s *HTTPServer) revokeSession(w http.ResponseWriter, r *http.Request) {
	token := s.auth.bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "bearer token required")
		return
	}

	if err := s.auth.RevokeSession(r.Context(), token); err != nil {
		s.logger.Error().Err(err).Msg("failed to revoke session")
		writeError(w, http.StatusInternalServerError, "failed to revoke session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleSellers(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("sellers")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sellers, err := s.users.ListSellers(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list sellers")
		writeError(w, http.StatusInternalServerError, "failed to list sellers")
		return
	}
	if sellers == nil {
		sellers = []*models.Seller{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"sellers": sellers})
}

// handleSellerSlots serves GET /api/v1/sellers/{id}/slots?date=YYYY-MM-DD.
func (s *HTTPServer) handleSellerSlots(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("slots")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	const prefix = "/api/v1/sellers/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	sellerID, tail, found := strings.Cut(rest, "/")
	if !found || tail != "slots" || sellerID == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	if dateStr == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}
	// Parse in the reference zone, so midnight lands on the requested
	// calendar day rather than the UTC one.
	date, err := time.ParseInLocation("2006-01-02", dateStr, s.booking.Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	slots, err := s.booking.GetSlots(r.Context(), sellerID, date)
	if err != nil {
		s.logger.Error().Err(err).Str("seller_id", sellerID).Msg("failed to get slots")
		writeError(w, http.StatusInternalServerError, "failed to get slots")
		return
	}
	if slots == nil {
		slots = []models.TimeSlot{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"seller_id": sellerID, "date": dateStr, "slots": slots})
}

func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("availability")

	session := s.auth.requireSession(w, r)
	if session == nil {
		return
	}
	if session.Role != models.RoleSeller {
		writeError(w, http.StatusForbidden, "seller role required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		av, err := s.availability.Get(r.Context(), session.UserID)
		if err != nil {
			s.logger.Error().Err(err).Str("seller_id", session.UserID).Msg("failed to get availability")
			writeError(w, http.StatusInternalServerError, "failed to get availability")
			return
		}
		if av == nil {
			writeJSON(w, http.StatusOK, map[string]any{"availability": nil})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"availability": av})

	case http.MethodPut:
		var av models.Availability
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&av); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		stored, err := s.availability.Save(r.Context(), session.UserID, &av)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"availability": stored})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleAppointments(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("appointments")

	session := s.auth.requireSession(w, r)
	if session == nil {
		return
	}

	switch r.Method {
	case http.MethodGet:
		appts, err := s.booking.ListAppointments(r.Context(), session.UserID)
		if err != nil {
			s.logger.Error().Err(err).Str("user_id", session.UserID).Msg("failed to list appointments")
			writeError(w, http.StatusInternalServerError, "failed to list appointments")
			return
		}
		if appts == nil {
			appts = []*models.Appointment{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"appointments": appts})

	case http.MethodPost:
		s.createAppointment(w, r, session)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type bookRequest struct {
	SellerID  string    `json:"seller_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

func (s *HTTPServer) createAppointment(w http.ResponseWriter, r *http.Request, session *models.Session) {
	var body bookRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.SellerID == "" {
		writeError(w, http.StatusBadRequest, "seller_id is required")
		return
	}
	if body.StartTime.IsZero() || body.EndTime.IsZero() {
		writeError(w, http.StatusBadRequest, "start_time and end_time are required")
		return
	}

	seller, err := s.users.GetSeller(r.Context(), body.SellerID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "seller not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load seller")
		return
	}

	buyer, err := s.users.GetUser(r.Context(), session.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	appt, err := s.booking.BookSlot(r.Context(), seller, buyer, models.TimeSlot{
		Start: body.StartTime,
		End:   body.EndTime,
	})
	if err != nil {
		switch {
		case errors.Is(err, database.ErrSlotTaken):
			metrics.IncBookingConflict()
			writeError(w, http.StatusConflict, "slot already booked")
		case errors.Is(err, database.ErrPastDate):
			writeError(w, http.StatusBadRequest, "slot is in the past")
		default:
			s.logger.Error().Err(err).Str("seller_id", body.SellerID).Msg("failed to book slot")
			writeError(w, http.StatusInternalServerError, "failed to book slot")
		}
		return
	}

	metrics.IncBooking()
	writeJSON(w, http.StatusCreated, appt)
}

// handleNavigation answers where the caller may go. Anonymous callers get
// a decision too, so the session here is optional.
func (s *HTTPServer) handleNavigation(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("navigation")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	route := strings.TrimSpace(r.URL.Query().Get("route"))
	if route == "" {
		route = access.RouteHome
	}

	session, err := s.auth.sessionFromRequest(r)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to resolve session")
		writeError(w, http.StatusInternalServerError, "failed to resolve session")
		return
	}

	writeJSON(w, http.StatusOK, access.Resolve(session, route))
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
