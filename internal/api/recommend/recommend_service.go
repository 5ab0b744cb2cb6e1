package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zipte-app/zipte-server/app/observability/metrics"
	"github.com/zipte-app/zipte-server/internal/api/property"
	"github.com/zipte-app/zipte-server/internal/types"
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service defines the similar-apartment recommendation contract.
type Service interface {
	Recommend(ctx context.Context, apartmentName string, topN int) ([]types.Recommendation, error)
}

// ServiceImpl provides the implementation for Service. Each call re-loads
// and re-derives; nothing is cached across requests.
type ServiceImpl struct {
	logger          *slog.Logger
	propertyService property.Service
}

func NewService(propertyService property.Service, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:          logger,
		propertyService: propertyService,
	}
}

// Recommend ranks every other complex by cosine similarity to the named one.
func (s *ServiceImpl) Recommend(ctx context.Context, apartmentName string, topN int) ([]types.Recommendation, error) {
	ctx, span := otel.Tracer("RecommendService").Start(ctx, "Recommend", trace.WithAttributes(
		attribute.String("apartment.name", apartmentName),
		attribute.Int("top_n", topN),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Recommend"), slog.String("apartmentName", apartmentName))
	l.DebugContext(ctx, "Computing similarity recommendations")

	start := time.Now()
	defer s.recordRequest(ctx, start)

	properties, err := s.propertyService.Properties(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to load properties", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load properties")
		return nil, fmt.Errorf("loading properties for recommendation: %w", err)
	}

	rows := BuildFeatures(properties, s.logger)
	recommendations, err := SimilarityRank(rows, apartmentName, topN)
	if err != nil {
		l.WarnContext(ctx, "Similarity ranking failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Similarity ranking failed")
		return nil, err
	}

	l.InfoContext(ctx, "Recommendations computed", slog.Int("count", len(recommendations)))
	span.SetStatus(codes.Ok, "Recommendations computed")
	return recommendations, nil
}

func (s *ServiceImpl) recordRequest(ctx context.Context, start time.Time) {
	m := metrics.Get()
	if m == nil {
		return
	}
	m.RecommendationRequestsTotal.Add(ctx, 1)
	m.RecommendationDurationSeconds.Record(ctx, time.Since(start).Seconds())
}
