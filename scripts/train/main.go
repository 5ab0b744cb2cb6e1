// Offline training job. Fits the base scoring model on the live joined
// table and atomically replaces the persisted artifact the API reads.
//
//	go run ./scripts/train
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	database "github.com/zipte-app/zipte-server/app/db"
	"github.com/zipte-app/zipte-server/config"
	"github.com/zipte-app/zipte-server/internal/api/property"
	"github.com/zipte-app/zipte-server/internal/api/scoring"
	"github.com/zipte-app/zipte-server/internal/types"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	}))

	ctx := context.Background()

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

	store := property.NewMongoStore(client.Database(dbConfig.Database))
	propertyRepo := property.NewMongoRepository(
		store,
		cfg.Repositories.Mongo.TransactionsCollection,
		cfg.Repositories.Mongo.PropertiesCollection,
		logger,
	)
	propertyService := property.NewService(propertyRepo, logger)
	scoringService := scoring.NewService(propertyService, cfg.Model.Path, logger)

	result, err := scoringService.Train(ctx, types.DefaultWeights, scoring.DefaultSeed)
	if err != nil {
		logger.Error("Training job failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("Training job finished",
		slog.String("artifact", cfg.Model.Path),
		slog.String("version", result.Artifact.Version),
		slog.Int("train_rows", result.TrainRows),
		slog.Int("holdout_rows", result.TestRows),
		slog.Float64("rmse", result.RMSE),
	)
}
