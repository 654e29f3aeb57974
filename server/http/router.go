package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"catalog-matcher/internal/config"
	matchHnd "catalog-matcher/internal/match/handler"
	"catalog-matcher/internal/middleware"
	"catalog-matcher/internal/store"
	"catalog-matcher/server/http/handlers"
)

func NewRouter(cfg config.Config, logger zerolog.Logger, st store.Catalog) *chi.Mux {
	r := chi.NewRouter()

	// order matters: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(int64(cfg.MaxUploadMB) * 1024 * 1024))

	r.Get("/health", handlers.Health)

	r.Post("/reconcile", matchHnd.Reconcile(cfg, logger, st))

	return r
}
