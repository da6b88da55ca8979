package middleware

import (
	"net/http"
	"storefront_server/services"
	"storefront_server/structs"

	"github.com/MonkyMars/gecho"
)

type Middleware struct {
	logger      *gecho.Logger
	cfg         *structs.Config
	authService *services.AuthService
	cache       services.Cache
}

func NewMiddleware(cfg *structs.Config, logger *gecho.Logger, sm *services.ServiceManager) *Middleware {
	return &Middleware{
		logger:      logger,
		cfg:         cfg,
		authService: sm.AuthService,
		cache:       sm.Cache,
	}
}

// RequestLogger logs every request through gecho.
func (mw *Middleware) RequestLogger() func(http.Handler) http.Handler {
	return gecho.Handlers.CreateLoggingMiddleware(mw.logger)
}
