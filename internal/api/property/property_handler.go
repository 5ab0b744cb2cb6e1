package property

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/zipte-app/zipte-server/internal/api"
	"github.com/zipte-app/zipte-server/internal/types"
)

type Handler struct {
	propertyService Service
	logger          *slog.Logger
}

func NewHandler(propertyService Service, logger *slog.Logger) *Handler {
	return &Handler{
		propertyService: propertyService,
		logger:          logger,
	}
}

// Find returns the full canonical record for one complex by name.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("Find").Start(r.Context(), "Find", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/find"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Find"))

	name := r.URL.Query().Get("kapt_name")
	if name == "" {
		l.ErrorContext(ctx, "Missing kapt_name query parameter")
		api.ErrorResponse(w, r, http.StatusBadRequest, "kapt_name is required")
		return
	}

	record, err := h.propertyService.FindByName(ctx, name)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrPropertyNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "Data not found")
		case errors.Is(err, types.ErrDataUnavailable):
			l.ErrorContext(ctx, "Store unavailable", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusServiceUnavailable, "Store unavailable")
		default:
			l.ErrorContext(ctx, "Failed to find property", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to find property")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, record)
}
