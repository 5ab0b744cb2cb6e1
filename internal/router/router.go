package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/zipte-app/zipte-server/internal/api/price"
	"github.com/zipte-app/zipte-server/internal/api/property"
	"github.com/zipte-app/zipte-server/internal/api/recommend"
	"github.com/zipte-app/zipte-server/internal/api/scoring"
)

// Config contains dependencies needed for the router setup
type Config struct {
	PropertyHandler  *property.Handler
	RecommendHandler *recommend.Handler
	ScoringHandler   *scoring.Handler
	PriceHandler     *price.Handler
	AllowedOrigins   []string
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are expected to be
// applied *before* mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any major browsers
	}))

	// Heartbeat/Health check endpoint
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/apt", func(r chi.Router) {
			r.Get("/recommendations", cfg.RecommendHandler.Recommendations)
			r.Post("/scores", cfg.ScoringHandler.Scores)
		})

		r.Get("/find", cfg.PropertyHandler.Find)

		r.Route("/price", func(r chi.Router) {
			r.Get("/change", cfg.PriceHandler.MonthlyChange)
			r.Get("/change/size", cfg.PriceHandler.MonthlyChangeBySize)
			r.Get("/apt", cfg.PriceHandler.ComplexHistory)
		})
	})

	return r
}
