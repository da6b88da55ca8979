package services

import (
	"storefront_server/database"
	"storefront_server/structs"

	"github.com/MonkyMars/gecho"
)

type ServiceManager struct {
	AuthService     *AuthService
	Cache           Cache
	HealthService   *HealthService
	ProductService  *ProductService
	CheckoutService *CheckoutService
	OrderService    *OrderService
}

func NewServiceManager(logger *gecho.Logger, cfg *structs.Config, store database.Store, cache Cache) *ServiceManager {
	productService := NewProductService(logger, cfg, store, cache)

	return &ServiceManager{
		AuthService:     NewAuthService(cfg, logger, store, cache),
		Cache:           cache,
		HealthService:   NewHealthService(logger, store, cache),
		ProductService:  productService,
		CheckoutService: NewCheckoutService(logger, store, productService),
		OrderService:    NewOrderService(logger, store),
	}
}

// NewCache picks Redis when caching is enabled, the in-process cache
// otherwise.
func NewCache(logger *gecho.Logger, cfg *structs.Config) Cache {
	if cfg.Cache.Enabled {
		return NewCacheService(logger, cfg)
	}
	return NewMemoryCache()
}
