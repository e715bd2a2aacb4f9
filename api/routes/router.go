package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/investrahq/investra-backend/api/controllers"
	"github.com/investrahq/investra-backend/api/middleware"
	"github.com/investrahq/investra-backend/pkg/config"
	"github.com/investrahq/investra-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter mounts the operational surface of the service. Domain
// operations are driven by internal callers and workers, not HTTP.
func NewRouter(cfg *config.Config, logg *logger.Logger, dbP, redisP pinger) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	return r
}
