package api

import (
	"storefront_server/api/auth"
	"storefront_server/api/basket"
	"storefront_server/api/checkout"
	"storefront_server/api/health"
	"storefront_server/api/middleware"
	"storefront_server/api/orders"
	"storefront_server/api/products"
	"storefront_server/services"
	"storefront_server/structs"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type routerManager struct {
	productRoutes  *products.ProductRoutesManager
	basketRoutes   *basket.BasketRoutesManager
	checkoutRoutes *checkout.CheckoutRoutesManager
	orderRoutes    *orders.OrderRoutesManager
	authRoutes     *auth.AuthRoutesManager
	healthRoutes   *health.HealthRoutesManager
}

func NewRouterManager(
	logger *gecho.Logger,
	cfg *structs.Config,
	sm *services.ServiceManager,
	mw *middleware.Middleware,
) *routerManager {
	return &routerManager{
		productRoutes:  products.NewProductRoutesManager(logger, sm.ProductService, mw),
		basketRoutes:   basket.NewBasketRoutesManager(logger, sm.ProductService, sm.CheckoutService),
		checkoutRoutes: checkout.NewCheckoutRoutesManager(logger, sm.CheckoutService, mw),
		orderRoutes:    orders.NewOrderRoutesManager(logger, sm.OrderService, mw),
		authRoutes:     auth.NewAuthRoutesManager(logger, sm.AuthService, cfg, mw),
		healthRoutes:   health.NewHealthRoutesManager(sm.HealthService),
	}
}

func (rm *routerManager) RegisterRoutes(r chi.Router) {
	rm.productRoutes.RegisterRoutes(r)
	rm.basketRoutes.RegisterRoutes(r)
	rm.checkoutRoutes.RegisterRoutes(r)
	rm.orderRoutes.RegisterRoutes(r)
	rm.authRoutes.RegisterRoutes(r)
	rm.healthRoutes.RegisterRoutes(r)
}
