package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/campuspass/campuspass-api/internal/config"
	"github.com/campuspass/campuspass-api/internal/database"
	"github.com/campuspass/campuspass-api/internal/handler"
	"github.com/campuspass/campuspass-api/internal/ledger"
	"github.com/campuspass/campuspass-api/internal/middleware"
	"github.com/campuspass/campuspass-api/internal/models"
	"github.com/campuspass/campuspass-api/internal/repository"
	"github.com/campuspass/campuspass-api/internal/router"
	"github.com/campuspass/campuspass-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Student{}, &models.Event{}, &models.Pass{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient := connectOptionalRedis(cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	natsConn := connectOptionalNATS(cfg, logger)
	if natsConn != nil {
		defer natsConn.Close()
	}

	ledgerStore := ledger.NewStore(cfg.LedgerPath, logger)

	validate := validator.New(validator.WithRequiredStructEnabled())

	eventRepo := repository.NewEventRepository(db)
	passRepo := repository.NewPassRepository(db)
	studentRepo := repository.NewStudentRepository(db)

	eventService := service.NewEventService(eventRepo, validate, logger)
	passService := service.NewPassService(passRepo, eventRepo, studentRepo, validate, logger)
	scanService := service.NewScanService(eventRepo, passRepo, natsConn, logger)
	statsService := service.NewStatsService(ledgerStore, redisClient, cfg.StatsCacheTTL, logger)
	attendanceService := service.NewAttendanceService(ledgerStore, statsService, validate, logger)
	studentService := service.NewStudentService(studentRepo, logger)

	eventHandler := handler.NewEventHandler(eventService, logger)
	passHandler := handler.NewPassHandler(passService, logger)
	scanHandler := handler.NewScanHandler(scanService, logger)
	studentHandler := handler.NewStudentHandler(studentService, logger)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService, statsService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		EventHandler:      eventHandler,
		PassHandler:       passHandler,
		ScanHandler:       scanHandler,
		StudentHandler:    studentHandler,
		AttendanceHandler: attendanceHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

// connectOptionalRedis returns nil when no redis is configured; statistics
// caching simply degrades to uncached aggregation.
func connectOptionalRedis(cfg config.Config, logger zerolog.Logger) *redis.Client {
	if cfg.RedisURL == "" {
		logger.Warn().Msg("redis not configured, statistics caching disabled")
		return nil
	}

	client, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}

	return client
}

// connectOptionalNATS returns nil when no NATS server is configured;
// redemption events are then skipped.
func connectOptionalNATS(cfg config.Config, logger zerolog.Logger) *nats.Conn {
	if cfg.NATSURL == "" {
		logger.Warn().Msg("nats not configured, redemption events disabled")
		return nil
	}

	conn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}

	return conn
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
