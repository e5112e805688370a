package main

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slotbook/internal/api"
	"slotbook/internal/config"
	"slotbook/internal/database"
	"slotbook/internal/domain"
	"slotbook/internal/events"
	"slotbook/internal/google"
	"slotbook/internal/logging"
	"slotbook/internal/metrics"
	"slotbook/internal/repository"
	"slotbook/internal/schedule"
	"slotbook/internal/service"
	"slotbook/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		stdlog.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	sessions := initSessions(cfg, redisClient, &logger)
	calendarClient := initGoogleCalendar(cfg, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	inviteWorker := worker.NewInviteWorker(db, calendarClient, redisClient, worker.RetryPolicy{}, nil)
	if calendarClient != nil {
		go inviteWorker.Start(ctx)
	}

	bus := events.NewEventBus()
	events.RegisterAuditTrail(bus, &logger)
	generator := schedule.NewGenerator(cfg.Location())

	var invites domain.InviteScheduler
	if calendarClient != nil {
		invites = inviteWorker
	}

	users := service.NewUserService(db, bus, &logger)
	booking := service.NewBookingService(db, bus, invites, generator, &logger)
	availability := service.NewAvailabilityService(db, bus, &logger)

	httpServer := api.NewHTTPServer(cfg.API, cfg.Sessions.TTL(), users, booking, availability, sessions, &logger)

	if cfg.Backup.Enabled {
		backup := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backup.Start(ctx)
	}

	startMetrics(ctx, cfg, &logger)

	return startServer(ctx, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)

	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// initSessions prefers redis with an in-memory fallback; without redis the
// in-memory store carries sessions alone.
func initSessions(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.SessionRepository {
	memory := repository.NewMemorySessionRepository(cfg.Sessions.TTL())
	if redisClient == nil {
		return memory
	}

	primary := repository.NewRedisSessionRepository(redisClient, cfg.Sessions.TTL())
	return repository.NewFailoverSessionRepository(primary, memory, logger)
}

func initGoogleCalendar(cfg *config.Config, logger *zerolog.Logger) *google.CalendarService {
	if !cfg.Google.Enabled || cfg.Google.CredentialsFile == "" {
		return nil
	}

	calendarService, err := google.NewCalendarService(
		cfg.Google.CredentialsFile,
		cfg.Google.CalendarID,
		cfg.Booking.Timezone,
	)
	if err != nil {
		logger.Warn().Err(err).Msg("google calendar init failed, continuing without invites")
		return nil
	}

	if err := calendarService.TestConnection(context.Background()); err != nil {
		logger.Warn().Err(err).Msg("google calendar connection test failed, continuing without invites")
		return nil
	}

	info := logger.Info().Str("calendar_id", cfg.Google.CalendarID)
	if email, err := calendarService.GetServiceAccountEmail(cfg.Google.CredentialsFile); err == nil {
		info = info.Str("service_account", email)
	}
	info.Msg("google calendar connected")
	return calendarService
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
