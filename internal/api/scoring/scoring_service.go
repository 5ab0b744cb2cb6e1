package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zipte-app/zipte-server/internal/api/property"
	"github.com/zipte-app/zipte-server/internal/api/recommend"
	"github.com/zipte-app/zipte-server/internal/types"
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service defines the blended-score ranking and training contracts.
type Service interface {
	RankByScore(ctx context.Context, prefs types.UserPreferences, weights map[string]float64, topN int) ([]types.ScoredRow, error)
	Train(ctx context.Context, weights types.WeightSchedule, seed int64) (*TrainingResult, error)
}

// ServiceImpl provides the implementation for Service. The model artifact is
// read-only at inference time; training replaces it atomically.
type ServiceImpl struct {
	logger          *slog.Logger
	propertyService property.Service
	modelPath       string
}

func NewService(propertyService property.Service, modelPath string, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:          logger,
		propertyService: propertyService,
		modelPath:       modelPath,
	}
}

// RankByScore loads fresh records, scores them with the persisted model and
// blends in the caller's preference weights. A missing artifact fails with
// ErrModelUnavailable; the similarity endpoint is the explicit fallback.
func (s *ServiceImpl) RankByScore(ctx context.Context, prefs types.UserPreferences, weights map[string]float64, topN int) ([]types.ScoredRow, error) {
	ctx, span := otel.Tracer("ScoringService").Start(ctx, "RankByScore", trace.WithAttributes(
		attribute.Int("top_n", topN),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "RankByScore"))

	schedule, err := types.ParseWeightSchedule(weights)
	if err != nil {
		l.WarnContext(ctx, "Invalid weight schedule", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid weight schedule")
		return nil, err
	}

	artifact, err := LoadArtifact(s.modelPath)
	if err != nil {
		l.ErrorContext(ctx, "Model artifact unavailable", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Model artifact unavailable")
		return nil, err
	}
	span.SetAttributes(attribute.String("model.version", artifact.Version))

	joined, err := s.propertyService.Joined(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load joined records")
		return nil, fmt.Errorf("loading records for scoring: %w", err)
	}
	if len(joined) == 0 {
		err := fmt.Errorf("%w: no joined records to score", types.ErrDataUnavailable)
		l.WarnContext(ctx, "No joined records to score")
		span.RecordError(err)
		span.SetStatus(codes.Error, "No joined records to score")
		return nil, err
	}

	rows := recommend.BuildScoringRows(joined, s.logger)
	rows, base := s.predict(ctx, artifact.Model, rows)

	adjusted, err := Blend(base, rows, prefs, schedule)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Blending failed")
		return nil, err
	}

	ranked := Rank(rows, base, adjusted, topN)
	l.InfoContext(ctx, "Candidates ranked",
		slog.Int("scored", len(rows)),
		slog.Int("returned", len(ranked)),
		slog.String("model_version", artifact.Version),
	)
	span.SetStatus(codes.Ok, "Candidates ranked")
	return ranked, nil
}

// predict computes base scores, excluding malformed rows instead of aborting
// the whole ranking.
func (s *ServiceImpl) predict(ctx context.Context, model *Model, rows []types.ScoringRow) ([]types.ScoringRow, []float64) {
	x := designMatrix(rows, model.Districts)

	kept := make([]types.ScoringRow, 0, len(rows))
	base := make([]float64, 0, len(rows))
	for i, row := range rows {
		if !finiteVector(x[i]) {
			s.logger.WarnContext(ctx, "Skipping malformed row at inference",
				slog.String("complexCode", row.ComplexCode), slog.String("name", row.Name))
			continue
		}
		kept = append(kept, row)
		base = append(base, model.predictVector(x[i]))
	}
	return kept, base
}

// Train fits a fresh base model on the live joined table and atomically
// replaces the persisted artifact. Meant for the offline batch job, not the
// request path.
func (s *ServiceImpl) Train(ctx context.Context, weights types.WeightSchedule, seed int64) (*TrainingResult, error) {
	ctx, span := otel.Tracer("ScoringService").Start(ctx, "Train")
	defer span.End()

	l := s.logger.With(slog.String("method", "Train"))

	joined, err := s.propertyService.Joined(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load training records")
		return nil, fmt.Errorf("loading records for training: %w", err)
	}

	rows := recommend.BuildScoringRows(joined, s.logger)
	result, err := Train(rows, weights, seed, s.logger)
	if err != nil {
		l.ErrorContext(ctx, "Training failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Training failed")
		return nil, fmt.Errorf("training base model: %w", err)
	}

	if err := SaveArtifact(s.modelPath, result.Artifact); err != nil {
		l.ErrorContext(ctx, "Failed to persist model artifact", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to persist model artifact")
		return nil, err
	}

	l.InfoContext(ctx, "Model artifact replaced",
		slog.String("path", s.modelPath),
		slog.String("version", result.Artifact.Version),
		slog.Float64("rmse", result.RMSE),
	)
	span.SetStatus(codes.Ok, "Model trained and persisted")
	return result, nil
}

func finiteVector(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
