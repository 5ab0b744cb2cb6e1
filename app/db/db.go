package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/zipte-app/zipte-server/config"
)

const defaultRetries = 5

type DatabaseConfig struct {
	ConnectionURL string
	Database      string
}

// NewDatabaseConfig generates the Mongo connection URL from configuration.
func NewDatabaseConfig(cfg *config.Config, logger *slog.Logger) (*DatabaseConfig, error) {
	if cfg == nil || cfg.Repositories.Mongo.Host == "" {
		errMsg := "Mongo configuration is missing or invalid"
		logger.Error(errMsg)
		return nil, errors.New(errMsg)
	}

	connURL := url.URL{
		Scheme: "mongodb",
		Host:   fmt.Sprintf("%s:%s", cfg.Repositories.Mongo.Host, cfg.Repositories.Mongo.Port),
	}
	if cfg.Repositories.Mongo.Username != "" {
		connURL.User = url.UserPassword(cfg.Repositories.Mongo.Username, cfg.Repositories.Mongo.Password)
	}

	// Avoid logging credentials
	logger.Info("Mongo connection URL generated",
		slog.String("host", connURL.Host),
		slog.String("database", cfg.Repositories.Mongo.DB))

	return &DatabaseConfig{
		ConnectionURL: connURL.String(),
		Database:      cfg.Repositories.Mongo.DB,
	}, nil
}

// Init connects the Mongo client. The client is created once per process,
// shared across requests and disconnected on shutdown.
func Init(ctx context.Context, connectionURL string, logger *slog.Logger) (*mongo.Client, error) {
	logger.Info("Initializing Mongo client...")

	opts := options.Client().
		ApplyURI(connectionURL).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		logger.Error("Failed to create Mongo client", slog.Any("error", err))
		return nil, fmt.Errorf("failed creating mongo client: %w", err)
	}

	logger.Info("Mongo client initialized")
	return client, nil
}

// WaitForDB waits for the Mongo deployment to answer pings.
func WaitForDB(ctx context.Context, client *mongo.Client, logger *slog.Logger) bool {
	maxAttempts := defaultRetries
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err := client.Ping(ctx, readpref.Primary())
		if err == nil {
			logger.InfoContext(ctx, "Mongo connection successful")
			return true
		}

		waitDuration := time.Duration(attempts) * 200 * time.Millisecond
		logger.WarnContext(ctx, "Mongo ping failed, retrying...",
			slog.Int("attempt", attempts),
			slog.Int("max_attempts", maxAttempts),
			slog.Duration("wait_duration", waitDuration),
			slog.String("error", err.Error()),
		)
		// Don't wait after the last attempt
		if attempts < maxAttempts {
			time.Sleep(waitDuration)
		}
	}
	logger.ErrorContext(ctx, "Mongo connection failed after multiple retries")
	return false
}
