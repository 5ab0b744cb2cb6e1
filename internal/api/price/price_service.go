package price

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/zipte-app/zipte-server/internal/api/property"
	"github.com/zipte-app/zipte-server/internal/types"
)

// pyeong is the traditional Korean floor-area unit the aggregates are
// denominated in (1 pyeong = 3.3 m²).
const pyeongInSquareMeters = 3.3

// Size categories bucket the exclusive floor area in pyeong with
// left-closed bins [0,15), [15,25), [25,40), [40,∞).
const (
	SizeUnder15 = "15평_이하"
	Size15To25  = "15~25평"
	Size25To40  = "25~40평"
	SizeOver40  = "40평_초과"
)

// MonthlyPrice is the average price-per-pyeong for one month.
type MonthlyPrice struct {
	Month          string  `json:"month"`
	PricePerPyeong float64 `json:"price_per_pyeong"`
}

// MonthlySizePrice is the average price-per-pyeong for one month and size
// category.
type MonthlySizePrice struct {
	Month          string  `json:"month"`
	SizeCategory   string  `json:"size_category"`
	PricePerPyeong float64 `json:"price_per_pyeong"`
}

// HistoryEntry is one dated transaction for a specific complex and area.
type HistoryEntry struct {
	ComplexCode string  `json:"complex_code"`
	Name        string  `json:"name"`
	DealDate    string  `json:"deal_date"`
	Address     string  `json:"address"`
	Area        float64 `json:"area"`
	Floor       int     `json:"floor"`
	Amount      int     `json:"amount"`
}

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service serves price aggregates over the transaction collection.
type Service interface {
	MonthlyChange(ctx context.Context, dong string, years int) ([]MonthlyPrice, error)
	MonthlyChangeBySize(ctx context.Context, dong, size string, years int) ([]MonthlySizePrice, error)
	ComplexHistory(ctx context.Context, aptName string, area float64, years int) ([]HistoryEntry, error)
}

// ServiceImpl computes aggregates on demand and keeps the responses in a
// short-lived TTL cache. The recommendation pipeline stays uncached; only
// these groupby endpoints benefit.
type ServiceImpl struct {
	logger          *slog.Logger
	propertyService property.Service
	cache           *cache.Cache
	now             func() time.Time
}

func NewService(propertyService property.Service, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:          logger,
		propertyService: propertyService,
		cache:           cache.New(5*time.Minute, 10*time.Minute),
		now:             time.Now,
	}
}

// MonthlyChange returns the monthly average price-per-pyeong for one
// district over the last N years.
func (s *ServiceImpl) MonthlyChange(ctx context.Context, dong string, years int) ([]MonthlyPrice, error) {
	ctx, span := otel.Tracer("PriceService").Start(ctx, "MonthlyChange")
	defer span.End()
	span.SetAttributes(attribute.String("dong", dong), attribute.Int("years", years))

	l := s.logger.With(slog.String("method", "MonthlyChange"), slog.String("dong", dong))

	key := fmt.Sprintf("change:%s:%d", dong, years)
	if cached, ok := s.cache.Get(key); ok {
		l.DebugContext(ctx, "Serving monthly change from cache")
		return cached.([]MonthlyPrice), nil
	}

	transactions, err := s.propertyService.Transactions(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load transactions")
		return nil, err
	}

	targetYear := s.now().Year() - years
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, t := range transactions {
		if property.Dong(t.Address) != dong || t.Year() < targetYear {
			continue
		}
		month := monthOf(t.DealDate)
		if month == "" {
			continue
		}
		sums[month] += pricePerPyeong(t)
		counts[month]++
	}

	result := make([]MonthlyPrice, 0, len(sums))
	for month, sum := range sums {
		result = append(result, MonthlyPrice{Month: month, PricePerPyeong: sum / float64(counts[month])})
	}
	sort.Slice(result, func(a, b int) bool { return result[a].Month < result[b].Month })

	s.cache.Set(key, result, cache.DefaultExpiration)
	l.InfoContext(ctx, "Monthly change computed", slog.Int("months", len(result)))
	return result, nil
}

// MonthlyChangeBySize is MonthlyChange restricted to one size category.
func (s *ServiceImpl) MonthlyChangeBySize(ctx context.Context, dong, size string, years int) ([]MonthlySizePrice, error) {
	ctx, span := otel.Tracer("PriceService").Start(ctx, "MonthlyChangeBySize")
	defer span.End()
	span.SetAttributes(attribute.String("dong", dong), attribute.String("size", size), attribute.Int("years", years))

	l := s.logger.With(slog.String("method", "MonthlyChangeBySize"), slog.String("dong", dong), slog.String("size", size))

	key := fmt.Sprintf("change-size:%s:%s:%d", dong, size, years)
	if cached, ok := s.cache.Get(key); ok {
		l.DebugContext(ctx, "Serving monthly size change from cache")
		return cached.([]MonthlySizePrice), nil
	}

	transactions, err := s.propertyService.Transactions(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load transactions")
		return nil, err
	}

	targetYear := s.now().Year() - years
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, t := range transactions {
		if property.Dong(t.Address) != dong || t.Year() < targetYear {
			continue
		}
		if SizeCategory(t.Area) != size {
			continue
		}
		month := monthOf(t.DealDate)
		if month == "" {
			continue
		}
		sums[month] += pricePerPyeong(t)
		counts[month]++
	}

	result := make([]MonthlySizePrice, 0, len(sums))
	for month, sum := range sums {
		result = append(result, MonthlySizePrice{
			Month:          month,
			SizeCategory:   size,
			PricePerPyeong: sum / float64(counts[month]),
		})
	}
	sort.Slice(result, func(a, b int) bool { return result[a].Month < result[b].Month })

	s.cache.Set(key, result, cache.DefaultExpiration)
	l.InfoContext(ctx, "Monthly size change computed", slog.Int("months", len(result)))
	return result, nil
}

// ComplexHistory returns the dated transactions for one complex and exact
// area over the last N years, joined on the coordinate tuple.
func (s *ServiceImpl) ComplexHistory(ctx context.Context, aptName string, area float64, years int) ([]HistoryEntry, error) {
	ctx, span := otel.Tracer("PriceService").Start(ctx, "ComplexHistory")
	defer span.End()
	span.SetAttributes(attribute.String("apt.name", aptName), attribute.Float64("area", area))

	l := s.logger.With(slog.String("method", "ComplexHistory"), slog.String("aptName", aptName))

	joined, err := s.propertyService.Joined(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load joined records")
		return nil, err
	}

	targetYear := s.now().Year() - years
	entries := make([]HistoryEntry, 0)
	for _, j := range joined {
		if j.Property.Name != aptName || j.Transaction.Area != area || j.Transaction.Year() < targetYear {
			continue
		}
		entries = append(entries, HistoryEntry{
			ComplexCode: j.Property.ComplexCode,
			Name:        j.Property.Name,
			DealDate:    j.Transaction.DealDate,
			Address:     j.Property.Address,
			Area:        j.Transaction.Area,
			Floor:       j.Transaction.Floor,
			Amount:      j.Transaction.Amount,
		})
	}
	sort.SliceStable(entries, func(a, b int) bool { return entries[a].DealDate < entries[b].DealDate })

	l.InfoContext(ctx, "Complex history computed", slog.Int("entries", len(entries)))
	return entries, nil
}

// SizeCategory buckets an area in m² into the pyeong size categories.
func SizeCategory(area float64) string {
	pyeong := area / pyeongInSquareMeters
	switch {
	case pyeong < 15:
		return SizeUnder15
	case pyeong < 25:
		return Size15To25
	case pyeong < 40:
		return Size25To40
	default:
		return SizeOver40
	}
}

// pricePerPyeong guards against zero areas so a bad row yields 0, not Inf.
func pricePerPyeong(t types.TransactionRecord) float64 {
	if t.Area <= 0 {
		return 0
	}
	return float64(t.Amount) / (t.Area / pyeongInSquareMeters)
}

func monthOf(dealDate string) string {
	if len(dealDate) < 7 {
		return ""
	}
	return dealDate[:7]
}
