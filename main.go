// Package main is the entry point for the link-in-bio backend
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/biotap/biotap/app/handlers"
	"github.com/biotap/biotap/app/router"
	"github.com/biotap/biotap/app/scheduler"
	"github.com/biotap/biotap/app/services"
	businessflow "github.com/biotap/biotap/business_flow"
	"github.com/biotap/biotap/config"
	"github.com/biotap/biotap/repository"
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application holds the wired components and their stop functions
type Application struct {
	router    router.Router
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting BioTap application...")

	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Redis client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s", cfg.RedisURL)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeEmailProvider selects the outbound email transport
func initializeEmailProvider(cfg config.EmailConfig) services.EmailProvider {
	switch cfg.Provider {
	case "resend":
		return services.NewResendEmailProvider(cfg.ResendAPIKey, cfg.FromEmail, cfg.SendTimeout)
	default:
		return services.NewMockEmailProvider()
	}
}

// initializeCountryLookup selects the IP geolocation backend
func initializeCountryLookup(cfg config.GeoIPConfig) services.CountryLookup {
	if !cfg.Enabled {
		return services.NewNoopCountryLookup()
	}
	return services.NewHTTPCountryLookup(cfg.Endpoint, cfg.LookupTimeout)
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		stopFuncs = append(stopFuncs, startCacheHealthMonitor(context.Background(), rc, 30*time.Second))
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	linkRepo := repository.NewLinkRepository(db)
	clickRepo := repository.NewClickEventRepository(db)
	emailLogRepo := repository.NewEmailLogRepository(db)

	// Services
	enrichment := services.NewEnrichmentService(initializeCountryLookup(cfg.GeoIP))
	emailService := services.NewEmailService(initializeEmailProvider(cfg.Email), emailLogRepo, cfg.Email)

	// Business flows
	trackClickFlow := businessflow.NewTrackClickFlow(linkRepo, clickRepo, enrichment, repository.NewTxRunner(db))
	analyticsFlow := businessflow.NewAnalyticsFlow(linkRepo, clickRepo, rc, &cfg.Cache)
	linkFlow := businessflow.NewLinkFlow(linkRepo, userRepo)
	userFlow := businessflow.NewUserFlow(userRepo, emailService)

	// Weekly summary scheduler
	summaryScheduler := scheduler.NewWeeklySummaryScheduler(
		userRepo,
		analyticsFlow,
		emailService,
		emailLogRepo,
		cfg.Scheduler.Interval,
	)
	if cfg.Scheduler.Enabled {
		stopFuncs = append(stopFuncs, summaryScheduler.Start(context.Background()))
	}

	// Handlers
	userHandler := handlers.NewUserHandler(userFlow)
	linkHandler := handlers.NewLinkHandler(linkFlow)
	clickHandler := handlers.NewClickHandler(trackClickFlow)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsFlow)
	adminHandler := handlers.NewAdminHandler(summaryScheduler, emailService)

	r := router.NewFiberRouter(cfg, userHandler, linkHandler, clickHandler, analyticsHandler, adminHandler)

	return &Application{
		router:    r,
		server:    r.GetApp(),
		stopFuncs: stopFuncs,
	}, nil
}
