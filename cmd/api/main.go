// Command api serves the room booking HTTP API.
//
// @title Room Booking API
// @version 1.0
// @description Book meeting rooms directly or through a conversational assistant.
// @BasePath /
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"roombooking/config"
	"roombooking/internal/adapters/email"
	"roombooking/internal/adapters/llm"
	deliveryhttp "roombooking/internal/delivery/http"
	"roombooking/internal/delivery/http/controllers"
	"roombooking/internal/delivery/http/middleware"
	"roombooking/internal/domain"
	"roombooking/internal/repository/memory"
	"roombooking/internal/repository/postgres"
	"roombooking/internal/repository/rediscache"
	"roombooking/internal/services"
	"roombooking/internal/session"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := config.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
	logger.Info("server stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	rooms, bookings, closeStore, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.InsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("create mailer: %w", err)
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("load email templates: %w", err)
	}

	generator, closeGenerator, err := llm.NewTextGenerator(ctx, llm.Config{
		Provider:   cfg.AI.Provider,
		Model:      cfg.AI.Model,
		APIKey:     cfg.AI.APIKey,
		BaseURL:    cfg.AI.BaseURL,
		Timeout:    cfg.AI.Timeout,
		MaxRetries: cfg.AI.MaxRetries,
	}, logger)
	if err != nil {
		// The booking API stays usable; the assistant answers with degraded results.
		logger.Error("language model unavailable", zap.String("provider", cfg.AI.Provider), zap.Error(err))
	}
	defer closeGenerator()

	rooms, closeCache, err := cacheRooms(ctx, cfg, rooms, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	emailService := services.NewEmailService(mailer, renderer, logger)
	roomService := services.NewRoomService(rooms, cfg.ServiceTimeout)
	bookingService := services.NewBookingService(bookings, rooms, services.NewBookingValidator(nil), emailService, logger, cfg.ServiceTimeout)
	assistant := services.NewConversationEngine(generator, services.NewPromptBuilder(services.DefaultBookingDuration), nil, logger)

	router := deliveryhttp.NewRouter(
		controllers.NewHealthController(),
		controllers.NewRoomController(logger, roomService),
		controllers.NewBookingController(logger, bookingService),
		controllers.NewAssistantController(logger, assistant, roomService, bookingService, session.NewStore(session.NewMemoryBackend(cfg.SessionTTL))),
	)
	handler := middleware.Recover(logger, middleware.LoggingMiddleware(logger, middleware.CORS(cfg.AllowedOrigins, router)))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr), zap.String("storage", cfg.Storage), zap.String("ai_provider", cfg.AI.Provider))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("server is shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openStorage returns the room and booking repositories selected by cfg.Storage.
func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (domain.RoomRepository, domain.BookingRepository, func(), error) {
	switch cfg.Storage {
	case "memory":
		store := memory.NewStore(memory.DefaultRooms()...)
		logger.Warn("using in-memory storage, bookings are lost on restart")
		return store.Rooms(), store.Bookings(), func() {}, nil
	case "postgres", "":
		db, err := sql.Open("postgres", cfg.DBUrl)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open database: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			_ = db.Close()
			return nil, nil, nil, fmt.Errorf("ping database: %w", err)
		}
		if cfg.MigrateOnStart {
			if err := postgres.Migrate(ctx, db, logger); err != nil {
				_ = db.Close()
				return nil, nil, nil, err
			}
		}
		closeDB := func() {
			if err := db.Close(); err != nil {
				logger.Warn("close database", zap.Error(err))
			}
		}
		return postgres.NewRoomRepository(db), postgres.NewBookingRepository(db), closeDB, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
}

// cacheRooms wraps rooms with the Redis catalogue cache when REDIS_URL is set.
func cacheRooms(ctx context.Context, cfg *config.Config, rooms domain.RoomRepository, logger *zap.Logger) (domain.RoomRepository, func(), error) {
	if cfg.RedisURL == "" {
		return rooms, func() {}, nil
	}
	client, err := rediscache.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	closeClient := func() {
		if err := client.Close(); err != nil {
			logger.Warn("close redis", zap.Error(err))
		}
	}
	return rediscache.NewRoomRepository(rooms, client, cfg.RoomCacheTTL, logger), closeClient, nil
}
