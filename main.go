package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	database "github.com/zipte-app/zipte-server/app/db"
	appLogger "github.com/zipte-app/zipte-server/app/logger"
	"github.com/zipte-app/zipte-server/app/observability/metrics"
	"github.com/zipte-app/zipte-server/app/tracer"
	"github.com/zipte-app/zipte-server/config"
	"github.com/zipte-app/zipte-server/internal/api/price"
	"github.com/zipte-app/zipte-server/internal/api/property"
	"github.com/zipte-app/zipte-server/internal/api/recommend"
	"github.com/zipte-app/zipte-server/internal/api/scoring"
	api "github.com/zipte-app/zipte-server/internal/router"
)

func main() {
	// --- Initial Loading ---
	// Use standard log until slog is configured, in case godotenv fails
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	// --- Logger Setup ---
	logger := setupLogger()
	slog.SetDefault(logger) // Set globally after initialization

	// --- Application Context & Shutdown ---
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- Observability Setup ---
	tracer.InitTracingAndMetrics(cfg.Handlers.Prometheus.Port)
	metrics.InitAppMetrics()

	// --- Database Setup ---
	dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		os.Exit(1)
	}

	client, err := database.Init(ctx, dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize Mongo client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error("Failed to disconnect Mongo client", slog.Any("error", err))
		}
	}()

	if !database.WaitForDB(ctx, client, logger) {
		logger.Error("Store not ready after waiting, exiting.")
		os.Exit(1)
	}

	// --- Dependency Injection ---
	store := property.NewMongoStore(client.Database(dbConfig.Database))
	propertyRepo := property.NewMongoRepository(
		store,
		cfg.Repositories.Mongo.TransactionsCollection,
		cfg.Repositories.Mongo.PropertiesCollection,
		logger,
	)
	propertyService := property.NewService(propertyRepo, logger)
	propertyHandler := property.NewHandler(propertyService, logger)

	recommendService := recommend.NewService(propertyService, logger)
	recommendHandler := recommend.NewHandler(recommendService, logger)

	scoringService := scoring.NewService(propertyService, cfg.Model.Path, logger)
	scoringHandler := scoring.NewHandler(scoringService, logger)

	priceService := price.NewService(propertyService, logger)
	priceHandler := price.NewHandler(priceService, logger)

	// --- Router Setup ---
	routerConfig := &api.Config{
		PropertyHandler:  propertyHandler,
		RecommendHandler: recommendHandler,
		ScoringHandler:   scoringHandler,
		PriceHandler:     priceHandler,
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
	}
	mainRouter := api.SetupRouter(routerConfig)

	router := chi.NewMux() // Use NewMux for Chi v5
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(appLogger.StructuredLogger(logger)) // Use your slog middleware
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(middleware.Compress(5, "application/json")) // Compress JSON responses
	router.Mount("/", mainRouter)

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		slog.InfoContext(r.Context(), "Root endpoint hit")
		w.Write([]byte("Welcome to the zipte API"))
	})

	// --- HTTP Server Setup ---
	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddress,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError), // Pipe server errors to slog
	}

	// --- Start Server Goroutine ---
	go func() {
		logger.Info("Starting HTTP server", slog.String("address", serverAddress))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server ListenAndServe error", slog.Any("error", err))
			cancel() // Trigger shutdown if server fails unexpectedly
		}
	}()

	// --- Wait for Shutdown Signal ---
	<-ctx.Done() // Block until context is cancelled (Ctrl+C, SIGTERM)

	// --- Graceful Shutdown ---
	logger.Info("Shutdown signal received, starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
	} else {
		logger.Info("HTTP server gracefully stopped")
	}

	// Mongo client is disconnected by the defer above
	logger.Info("Application shut down complete.")
}

// setupLogger configures and returns the application logger.
func setupLogger() *slog.Logger {
	var logger *slog.Logger
	env := os.Getenv("APP_ENV")

	if env == "development" || env == "" { // Default to development if not set
		// Colored logs for development
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug, // More verbose in dev
			TimeFormat: time.Kitchen,
			AddSource:  true, // Show file:line
		}
		logger = slog.New(tint.NewHandler(os.Stdout, tintOpts))
		log.Println("Initialized development logger (tint)") // Use standard log before slog default is set
	} else {
		// JSON logs for production or other environments
		jsonOpts := &slog.HandlerOptions{
			Level:     slog.LevelInfo,
			AddSource: false,
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
		log.Println("Initialized production logger (JSON)")
	}
	return logger
}
