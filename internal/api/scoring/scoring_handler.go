package scoring

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
	scoringService Service
	logger         *slog.Logger
}

func NewHandler(scoringService Service, logger *slog.Logger) *Handler {
	return &Handler{
		scoringService: scoringService,
		logger:         logger,
	}
}

type scoreRequest struct {
	UserPreferences types.UserPreferences `json:"user_preferences"`
	Weights         map[string]float64    `json:"weights"`
	TopN            int                   `json:"top_n"`
}

// Scores ranks candidates by the blended model + preference score.
func (h *Handler) Scores(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("Scores").Start(r.Context(), "Scores", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/apt/scores"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Scores"))

	var req scoreRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Weights) == 0 {
		l.ErrorContext(ctx, "Missing weights")
		api.ErrorResponse(w, r, http.StatusBadRequest, "weights are required")
		return
	}

	ranked, err := h.scoringService.RankByScore(ctx, req.UserPreferences, req.Weights, req.TopN)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrInvalidPreference):
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, types.ErrModelUnavailable):
			l.ErrorContext(ctx, "Model unavailable", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusServiceUnavailable, "Scoring model unavailable")
		case errors.Is(err, types.ErrDataUnavailable):
			l.ErrorContext(ctx, "Store unavailable", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusServiceUnavailable, "Store unavailable")
		default:
			l.ErrorContext(ctx, "Failed to rank by score", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to rank by score")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"results": ranked,
	})
}
