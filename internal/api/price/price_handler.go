package price

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/zipte-app/zipte-server/internal/api"
	"github.com/zipte-app/zipte-server/internal/types"
)

type Handler struct {
	priceService Service
	logger       *slog.Logger
}

func NewHandler(priceService Service, logger *slog.Logger) *Handler {
	return &Handler{
		priceService: priceService,
		logger:       logger,
	}
}

// MonthlyChange serves the monthly average price-per-pyeong for a district.
func (h *Handler) MonthlyChange(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("MonthlyChange").Start(r.Context(), "MonthlyChange", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/price/change"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "MonthlyChange"))

	dong := r.URL.Query().Get("dong")
	years, err := yearsParam(r)
	if dong == "" || err != nil {
		l.ErrorContext(ctx, "Invalid query parameters", slog.String("dong", dong), slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "dong and a positive integer years are required")
		return
	}

	result, err := h.priceService.MonthlyChange(ctx, dong, years)
	if err != nil {
		h.writeError(ctx, w, r, err, "Failed to compute monthly change")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

// MonthlyChangeBySize serves the same aggregate restricted to one size
// category.
func (h *Handler) MonthlyChangeBySize(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("MonthlyChangeBySize").Start(r.Context(), "MonthlyChangeBySize", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/price/change/size"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "MonthlyChangeBySize"))

	dong := r.URL.Query().Get("dong")
	size := r.URL.Query().Get("size")
	years, err := yearsParam(r)
	if dong == "" || size == "" || err != nil {
		l.ErrorContext(ctx, "Invalid query parameters",
			slog.String("dong", dong), slog.String("size", size), slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "dong, size and a positive integer years are required")
		return
	}

	result, err := h.priceService.MonthlyChangeBySize(ctx, dong, size, years)
	if err != nil {
		h.writeError(ctx, w, r, err, "Failed to compute monthly size change")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

// ComplexHistory serves dated transactions for one complex and area.
func (h *Handler) ComplexHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ComplexHistory").Start(r.Context(), "ComplexHistory", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/price/apt"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "ComplexHistory"))

	name := r.URL.Query().Get("apt_name")
	area, areaErr := strconv.ParseFloat(r.URL.Query().Get("size"), 64)
	years, yearsErr := yearsParam(r)
	if name == "" || areaErr != nil || yearsErr != nil {
		l.ErrorContext(ctx, "Invalid query parameters", slog.String("apt_name", name))
		api.ErrorResponse(w, r, http.StatusBadRequest, "apt_name, a numeric size and a positive integer years are required")
		return
	}

	result, err := h.priceService.ComplexHistory(ctx, name, area, years)
	if err != nil {
		h.writeError(ctx, w, r, err, "Failed to compute complex history")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, r *http.Request, err error, message string) {
	if errors.Is(err, types.ErrDataUnavailable) {
		h.logger.ErrorContext(ctx, "Store unavailable", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusServiceUnavailable, "Store unavailable")
		return
	}
	h.logger.ErrorContext(ctx, message, slog.Any("error", err))
	api.ErrorResponse(w, r, http.StatusInternalServerError, message)
}

func yearsParam(r *http.Request) (int, error) {
	years, err := strconv.Atoi(r.URL.Query().Get("years"))
	if err != nil {
		return 0, err
	}
	if years <= 0 {
		return 0, strconv.ErrRange
	}
	return years, nil
}
