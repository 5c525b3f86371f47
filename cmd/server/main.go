package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/pyrecrest/service-booking/internal/application"
	"github.com/pyrecrest/service-booking/internal/common/auth"
	"github.com/pyrecrest/service-booking/internal/common/database"
	"github.com/pyrecrest/service-booking/internal/common/domain"
	"github.com/pyrecrest/service-booking/internal/common/health"
	"github.com/pyrecrest/service-booking/internal/common/kafka"
	"github.com/pyrecrest/service-booking/internal/common/logger"
	"github.com/pyrecrest/service-booking/internal/common/middleware"
	"github.com/pyrecrest/service-booking/internal/config"
	adminDomain "github.com/pyrecrest/service-booking/internal/domain/admin"
	blockedDomain "github.com/pyrecrest/service-booking/internal/domain/blocked"
	bookingDomain "github.com/pyrecrest/service-booking/internal/domain/booking"
	"github.com/pyrecrest/service-booking/internal/domain/property"
	bookingEvents "github.com/pyrecrest/service-booking/internal/events"
	"github.com/pyrecrest/service-booking/internal/handler"
	"github.com/pyrecrest/service-booking/internal/jobs"
	"github.com/pyrecrest/service-booking/internal/lock"
	"github.com/pyrecrest/service-booking/internal/notification"
	"github.com/pyrecrest/service-booking/internal/repository"
	"github.com/pyrecrest/service-booking/internal/repository/memory"
	"github.com/pyrecrest/service-booking/internal/repository/tablestore"
)

const serviceName = "service-booking"

// stores groups the repositories behind the configured store driver.
type stores struct {
	bookings bookingDomain.BookingRepository
	blocked  blockedDomain.Repository
	admins   adminDomain.Repository
	pinger   health.Pinger
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
		zap.String("store", cfg.StoreDriver),
		zap.String("timezone", cfg.Location.String()),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open the configured store
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open store", zap.Error(err))
	}

	catalog, err := property.NewStaticCatalog(cfg.Properties)
	if err != nil {
		log.Fatal("invalid property catalog", zap.Error(err))
	}

	checks := map[string]health.Pinger{"store": st.pinger}

	// Per-property lock: Redis when configured so several replicas serialize creation
	var locker lock.Locker = lock.NewLocalLocker()
	if cfg.RedisConfig.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisConfig.Addr,
			Password: cfg.RedisConfig.Password,
			DB:       cfg.RedisConfig.DB,
		})
		defer func() { _ = client.Close() }()
		redisLocker := lock.NewRedisLocker(client, log)
		locker = redisLocker
		checks["redis"] = redisLocker
		log.Info("using redis lock", zap.String("addr", cfg.RedisConfig.Addr))
	}

	// Email notifications
	var sender notification.Sender = notification.NewLogSender(log)
	if cfg.Mail.SendGridAPIKey != "" {
		sender = notification.NewSendGridSender(cfg.Mail.SendGridAPIKey, cfg.Mail.FromAddress, cfg.Mail.FromName, log)
	}
	emailDispatcher := notification.NewEmailDispatcher(sender, notification.EmailConfig{
		Brand:         cfg.Mail.FromName,
		FromAddress:   cfg.Mail.FromAddress,
		AdminEmail:    cfg.Mail.AdminEmail,
		ApproverEmail: cfg.Mail.ApproverEmail,
		Bank:          cfg.Bank,
		HoldWindow:    cfg.HoldWindow,
	}, log)
	dispatchers := notification.MultiDispatcher{emailDispatcher}

	// Initialize Kafka producer
	if cfg.KafkaConfig.Enabled() {
		kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
		defer func() { _ = kafkaProducer.Close() }()
		dispatchers = append(dispatchers, notification.NewEventDispatcher(kafkaProducer))
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, cfg.JWTConfig.TokenTTL, cfg.ApprovalTTL)

	clock := domain.SystemClock{}

	// Initialize application services
	bookingService := application.NewBookingService(
		st.bookings,
		st.blocked,
		catalog,
		bookingDomain.NewNightlyRatePricing(),
		locker,
		dispatchers,
		clock,
		application.BookingConfig{
			HoldWindow:         cfg.HoldWindow,
			TaxRateBasisPoints: cfg.TaxRateBasisPoints,
			Location:           cfg.Location,
			Bank:               cfg.Bank,
		},
		log,
	)
	adminService := application.NewAdminService(st.admins, jwtManager, emailDispatcher, clock, cfg.PublicBaseURL, log)
	blockedDateService := application.NewBlockedDateService(st.blocked, catalog, clock, log)

	if cfg.SeedAdmin.Email != "" && cfg.SeedAdmin.PasswordHash != "" {
		created, err := adminService.SeedAdmin(ctx, cfg.SeedAdmin.Name, cfg.SeedAdmin.Email, cfg.SeedAdmin.PasswordHash)
		if err != nil {
			log.Fatal("failed to seed admin", zap.Error(err))
		}
		if created {
			log.Info("seed admin created", zap.String("email", cfg.SeedAdmin.Email))
		}
	}

	// Expire lapsed holds in the background
	sweeper := jobs.NewExpirySweeper(bookingService, cfg.SweepInterval, log)
	go func() {
		log.Info("starting expiry sweeper", zap.Duration("interval", cfg.SweepInterval))
		if err := sweeper.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("expiry sweeper error", zap.Error(err))
		}
	}()

	// Initialize and start payment event consumer in a goroutine
	if cfg.KafkaConfig.Enabled() {
		groupID := cfg.KafkaConfig.GroupPrefix + serviceName
		paymentConsumer := bookingEvents.NewPaymentEventConsumer(
			cfg.KafkaConfig.Brokers,
			groupID,
			bookingService,
			log,
		)
		defer func() { _ = paymentConsumer.Close() }()

		go func() {
			log.Info("starting payment event consumer", zap.String("group", groupID))
			if err := paymentConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("payment event consumer error", zap.Error(err))
			}
		}()
	}

	// Setup Gin router
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins...))
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	health.NewHandler(serviceName, checks).RegisterRoutes(router)

	// Register routes
	handler.NewBookingHandler(bookingService).RegisterRoutes(&router.RouterGroup)
	handler.NewPropertyHandler(catalog, bookingService).RegisterRoutes(&router.RouterGroup)
	handler.NewAdminAuthHandler(adminService).RegisterRoutes(&router.RouterGroup)
	handler.NewAdminBookingHandler(bookingService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewBlockedDateHandler(blockedDateService).RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      otelhttp.NewHandler(router, serviceName),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down " + serviceName + "...")

	// Stop background workers
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
}

func openStores(ctx context.Context, cfg *config.ServiceConfig, log *zap.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Warn("using in-memory store; data is lost on restart")
		return &stores{
			bookings: memory.NewBookingRepository(),
			blocked:  memory.NewBlockedDateRepository(),
			admins:   memory.NewAdminRepository(),
			pinger:   health.PingFunc(func(context.Context) error { return nil }),
		}, nil

	case config.StoreAzTables:
		store, err := tablestore.Open(ctx, cfg.TableConfig.ConnectionString, cfg.TableConfig.TableName, log)
		if err != nil {
			return nil, err
		}
		return &stores{
			bookings: store.Bookings(),
			blocked:  store.BlockedDates(),
			admins:   store.Admins(),
			pinger:   store,
		}, nil

	default:
		dbConfig := database.PostgresConfig{
			Host:     cfg.DBConfig.Host,
			Port:     cfg.DBConfig.Port,
			User:     cfg.DBConfig.User,
			Password: cfg.DBConfig.Password,
			DBName:   cfg.DBConfig.DBName,
			SSLMode:  cfg.DBConfig.SSLMode,
		}
		db, err := database.Connect(dbConfig, log)
		if err != nil {
			return nil, err
		}

		// Run database migrations
		if cfg.AppEnv == "development" {
			if err := db.AutoMigrate(&repository.BookingModel{}, &repository.BlockedDateModel{}, &repository.AdminModel{}); err != nil {
				return nil, fmt.Errorf("failed to run auto-migration: %w", err)
			}
			log.Info("database migration completed (dev auto-migrate)")
		} else if err := database.RunMigrations(dbConfig.DatabaseURL(), cfg.MigrationsDir, log); err != nil {
			return nil, err
		}

		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		return &stores{
			bookings: repository.NewGormBookingRepository(db),
			blocked:  repository.NewGormBlockedDateRepository(db),
			admins:   repository.NewGormAdminRepository(db),
			pinger:   health.PingFunc(sqlDB.PingContext),
		}, nil
	}
}
