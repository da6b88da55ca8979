package basket

import (
	"storefront_server/services"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

// BasketRoutesManager serves the cookie-held basket. None of its routes need
// a session; the basket belongs to the browser.
type BasketRoutesManager struct {
	logger          *gecho.Logger
	productService  *services.ProductService
	checkoutService *services.CheckoutService
}

func NewBasketRoutesManager(
	logger *gecho.Logger,
	productService *services.ProductService,
	checkoutService *services.CheckoutService,
) *BasketRoutesManager {
	return &BasketRoutesManager{
		logger:          logger,
		productService:  productService,
		checkoutService: checkoutService,
	}
}

func (brm *BasketRoutesManager) RegisterRoutes(r chi.Router) {
	r.Get("/basket", brm.ShowBasket)
	r.Post("/add-to-basket", brm.AddToBasket)
	r.Post("/update-basket", brm.UpdateBasket)
	r.Post("/delete-from-basket", brm.DeleteFromBasket)
}
