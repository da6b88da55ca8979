package auth

import (
	"storefront_server/api/middleware"
	"storefront_server/services"
	"storefront_server/structs"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type AuthRoutesManager struct {
	logger      *gecho.Logger
	authService *services.AuthService
	cfg         *structs.Config
	mw          *middleware.Middleware
}

func NewAuthRoutesManager(
	logger *gecho.Logger,
	authService *services.AuthService,
	cfg *structs.Config,
	mw *middleware.Middleware,
) *AuthRoutesManager {
	return &AuthRoutesManager{
		logger:      logger,
		authService: authService,
		cfg:         cfg,
		mw:          mw,
	}
}

func (arm *AuthRoutesManager) RegisterRoutes(r chi.Router) {
	r.Get("/csrf", arm.HandleCSRF)

	r.Get("/login", arm.ShowLogin)
	r.Post("/login", arm.HandleLogin)
	r.Get("/register", arm.ShowRegister)
	r.Post("/register", arm.HandleRegister)
	r.Get("/logout", arm.HandleLogout)

	r.Group(func(r chi.Router) {
		r.Use(arm.mw.RequireSession)
		r.Get("/account", arm.ShowAccount)
		r.Post("/account", arm.HandleAccountUpdate)
	})
}
