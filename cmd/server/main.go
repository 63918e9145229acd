package main

import (
	"context"
	"log"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/weatherwatch/backend/internal/alerts"
	"github.com/weatherwatch/backend/internal/cache"
	"github.com/weatherwatch/backend/internal/config"
	"github.com/weatherwatch/backend/internal/delivery/http"
	"github.com/weatherwatch/backend/internal/provider"
	"github.com/weatherwatch/backend/internal/repository/postgres"
	"github.com/weatherwatch/backend/internal/scheduler"
	"github.com/weatherwatch/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Database connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var repo service.Repository
	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err == nil {
			repo, err = postgres.NewRepository(ctx, pool)
		}
		if err != nil {
			log.Printf("Warning: Could not connect to database: %v", err)
			pool = nil
		} else {
			log.Println("Connected to PostgreSQL")
		}
	}
	if repo == nil {
		log.Println("Running with in-memory storage only")
		repo = postgres.NewMemoryRepository()
	}
	if pool != nil {
		defer pool.Close()
	}

	// Core pipeline: freshness cache, provider, worker
	readingCache := cache.New(cfg.FreshnessWindow)
	fetcher := provider.NewOpenWeatherClient(cfg.OpenWeatherAPIKey)

	worker := alerts.NewWorker(repo)
	worker.Start()

	// Services
	authSvc := service.NewAuthService(repo, cfg.JWTSecret, cfg.TokenTTL)
	weatherSvc := service.NewWeatherService(readingCache, fetcher, repo, worker)
	alertSvc := service.NewAlertService(repo, repo)
	locationSvc := service.NewLocationService(repo)

	if err := authSvc.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Printf("Warning: admin seeding failed: %v", err)
	}

	// Periodic stale-cache sweep
	sweeper := scheduler.New(readingCache, cfg.SweepInterval)
	if err := sweeper.Start(); err != nil {
		log.Printf("Warning: cache sweep scheduler failed to start: %v", err)
	}

	// Prometheus metrics on a side listener
	go func() {
		mux := nethttp.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		log.Printf("Metrics listening on %s", cfg.MetricsAddr)
		if err := nethttp.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
			log.Printf("Metrics server error: %v", err)
		}
	}()

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:      "WeatherWatch API v1.0",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Routes
	handler := http.NewHandler(authSvc, weatherSvc, alertSvc, locationSvc, repo)
	http.SetupRoutes(app, handler, authSvc)

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// The worker finishes its in-flight reading; queued items are dropped.
	sweeper.Stop()
	worker.Stop()
	log.Println("Server exited gracefully")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
