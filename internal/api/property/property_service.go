package property

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/zipte-app/zipte-server/app/observability/metrics"
	"github.com/zipte-app/zipte-server/internal/types"
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service is the record-loading contract the engine packages build on.
// Records are read-only snapshots fetched fresh per request.
type Service interface {
	Properties(ctx context.Context) ([]types.PropertyRecord, error)
	Transactions(ctx context.Context) ([]types.TransactionRecord, error)
	Joined(ctx context.Context) ([]types.JoinedRecord, error)
	FindByName(ctx context.Context, name string) (types.PropertyRecord, error)
}

// ServiceImpl provides the implementation for Service.
type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
}

func NewService(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *ServiceImpl) Properties(ctx context.Context) ([]types.PropertyRecord, error) {
	ctx, span := otel.Tracer("PropertyService").Start(ctx, "Properties")
	defer span.End()

	l := s.logger.With(slog.String("method", "Properties"))

	start := time.Now()
	records, err := s.repo.LoadProperties(ctx)
	s.recordQuery(ctx, start, err)
	if err != nil {
		l.ErrorContext(ctx, "Failed to load properties", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load properties")
		return nil, err
	}

	l.DebugContext(ctx, "Properties loaded", slog.Int("count", len(records)))
	return records, nil
}

func (s *ServiceImpl) Transactions(ctx context.Context) ([]types.TransactionRecord, error) {
	ctx, span := otel.Tracer("PropertyService").Start(ctx, "Transactions")
	defer span.End()

	l := s.logger.With(slog.String("method", "Transactions"))

	start := time.Now()
	records, err := s.repo.LoadTransactions(ctx)
	s.recordQuery(ctx, start, err)
	if err != nil {
		l.ErrorContext(ctx, "Failed to load transactions", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load transactions")
		return nil, err
	}

	l.DebugContext(ctx, "Transactions loaded", slog.Int("count", len(records)))
	return records, nil
}

// Joined loads both collections concurrently and joins them on the exact
// coordinate tuple. Rows without a coordinate on either side never match.
func (s *ServiceImpl) Joined(ctx context.Context) ([]types.JoinedRecord, error) {
	ctx, span := otel.Tracer("PropertyService").Start(ctx, "Joined")
	defer span.End()

	l := s.logger.With(slog.String("method", "Joined"))

	var (
		properties   []types.PropertyRecord
		transactions []types.TransactionRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		properties, err = s.Properties(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		transactions, err = s.Transactions(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load collections for join")
		return nil, err
	}

	byCoordinate := make(map[string]types.PropertyRecord, len(properties))
	for _, p := range properties {
		if p.Coordinate == nil {
			continue
		}
		byCoordinate[p.Coordinate.Key()] = p
	}

	joined := make([]types.JoinedRecord, 0, len(transactions))
	for _, t := range transactions {
		if t.Coordinate == nil {
			continue
		}
		p, ok := byCoordinate[t.Coordinate.Key()]
		if !ok {
			continue
		}
		joined = append(joined, types.JoinedRecord{Property: p, Transaction: t})
	}

	l.InfoContext(ctx, "Collections joined",
		slog.Int("properties", len(properties)),
		slog.Int("transactions", len(transactions)),
		slog.Int("joined", len(joined)),
	)
	return joined, nil
}

func (s *ServiceImpl) FindByName(ctx context.Context, name string) (types.PropertyRecord, error) {
	ctx, span := otel.Tracer("PropertyService").Start(ctx, "FindByName")
	defer span.End()

	l := s.logger.With(slog.String("method", "FindByName"), slog.String("name", name))

	record, err := s.repo.FindByName(ctx, name)
	if err != nil {
		l.WarnContext(ctx, "Property lookup failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Property lookup failed")
		return types.PropertyRecord{}, fmt.Errorf("finding property %q: %w", name, err)
	}

	span.SetStatus(codes.Ok, "Property found")
	return record, nil
}

func (s *ServiceImpl) recordQuery(ctx context.Context, start time.Time, err error) {
	m := metrics.Get()
	if m == nil {
		return
	}
	m.StoreQueryDurationSeconds.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		m.StoreQueryErrorsTotal.Add(ctx, 1)
	}
}

// Dong extracts the administrative district token (ending in "동") from an
// address, matching the grouping the price aggregates use. Empty when the
// address carries no such token.
func Dong(address string) string {
	for _, token := range strings.Fields(address) {
		if strings.HasSuffix(token, "동") && token != "동" {
			return token
		}
	}
	return ""
}
