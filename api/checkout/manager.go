package checkout

import (
	"storefront_server/api/middleware"
	"storefront_server/services"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type CheckoutRoutesManager struct {
	logger          *gecho.Logger
	checkoutService *services.CheckoutService
	mw              *middleware.Middleware
}

func NewCheckoutRoutesManager(
	logger *gecho.Logger,
	checkoutService *services.CheckoutService,
	mw *middleware.Middleware,
) *CheckoutRoutesManager {
	return &CheckoutRoutesManager{
		logger:          logger,
		checkoutService: checkoutService,
		mw:              mw,
	}
}

func (crm *CheckoutRoutesManager) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(crm.mw.RequireSession)
		r.Get("/checkout", crm.ShowCheckout)
		r.Post("/checkout", crm.ShowCheckout)
		r.Post("/confirm-checkout", crm.ConfirmCheckout)
	})
}
