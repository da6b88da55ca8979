package api

import (
	"net/http"
	"storefront_server/api/middleware"
	"storefront_server/config"
	"storefront_server/services"
	"storefront_server/structs"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
	chiware "github.com/go-chi/chi/v5/middleware"
)

func App(cfg *structs.Config, sm *services.ServiceManager) chi.Router {
	r := chi.NewRouter()

	// create loggers
	mwLogger := config.NewLogger(false)
	standardLogger := config.NewLogger(true)

	mw := middleware.NewMiddleware(cfg, mwLogger, sm)

	// Core infra
	r.Use(chiware.RequestID)
	r.Use(chiware.RealIP)
	r.Use(chiware.Recoverer)

	// Limits & security
	r.Use(mw.BodyLimit(cfg.Server.MaxBodyBytes))
	r.Use(mw.SecurityHeaders())

	// Observability
	r.Use(mw.RequestLogger())
	r.Use(middleware.MetricsMiddleware)

	// CORS (must be before auth / csrf)
	r.Use(mw.SetupCORS().Handler)

	r.Use(mw.RateLimitMiddleware())
	r.Use(mw.SessionMiddleware)
	r.Use(mw.LocaleMiddleware)
	r.Use(mw.CSRFMiddleware())

	NewRouterManager(standardLogger, cfg, sm, mw).RegisterRoutes(r)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		gecho.NotFound(w,
			gecho.WithMessage("Page not found"),
			gecho.Send(),
		)
	})

	return r
}
