package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
// Make fields public so they can be accessed from other packages.
type AppMetrics struct {
	RecommendationRequestsTotal   metric.Int64Counter
	RecommendationDurationSeconds metric.Float64Histogram
	StoreQueryDurationSeconds     metric.Float64Histogram
	StoreQueryErrorsTotal         metric.Int64Counter
}

var (
	// Global instance of AppMetrics (initialized once)
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("zipte-server")
		var err error
		m := &AppMetrics{}

		m.RecommendationRequestsTotal, err = meter.Int64Counter(
			"recommendation_requests_total",
			metric.WithDescription("Total number of recommendation requests completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create recommendation_requests_total: %v", err)
		}

		m.RecommendationDurationSeconds, err = meter.Float64Histogram(
			"recommendation_duration_seconds",
			metric.WithDescription("Duration of recommendation requests in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create recommendation_duration_seconds: %v", err)
		}

		m.StoreQueryDurationSeconds, err = meter.Float64Histogram(
			"store_query_duration_seconds",
			metric.WithDescription("Duration of store queries in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create store_query_duration_seconds: %v", err)
		}

		m.StoreQueryErrorsTotal, err = meter.Int64Counter(
			"store_query_errors_total",
			metric.WithDescription("Total number of store query errors"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create store_query_errors_total: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the initialized metrics instance. InitAppMetrics must have run.
func Get() *AppMetrics {
	return appMetrics
}
