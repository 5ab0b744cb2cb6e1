package recommend

import (
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
	recommendService Service
	logger           *slog.Logger
}

func NewHandler(recommendService Service, logger *slog.Logger) *Handler {
	return &Handler{
		recommendService: recommendService,
		logger:           logger,
	}
}

// Recommendations returns the top-N complexes most similar to the named one.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("Recommendations").Start(r.Context(), "Recommendations", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/apt/recommendations"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Recommendations"))

	name := r.URL.Query().Get("apartment_name")
	if name == "" {
		l.ErrorContext(ctx, "Missing apartment_name query parameter")
		api.ErrorResponse(w, r, http.StatusBadRequest, "apartment_name is required")
		return
	}

	topN := 0
	if raw := r.URL.Query().Get("top_n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			l.ErrorContext(ctx, "Invalid top_n query parameter", slog.String("top_n", raw))
			api.ErrorResponse(w, r, http.StatusBadRequest, "top_n must be an integer")
			return
		}
		topN = parsed
	}

	recommendations, err := h.recommendService.Recommend(ctx, name, topN)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrPropertyNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "Apartment not found")
		case errors.Is(err, types.ErrDataUnavailable):
			l.ErrorContext(ctx, "Store unavailable", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusServiceUnavailable, "Store unavailable")
		default:
			l.ErrorContext(ctx, "Failed to compute recommendations", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to compute recommendations")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"recommendations": recommendations,
	})
}
