package config

import (
	"storefront_server/structs"
	"sync"
	"time"
)

var (
	configInstance *structs.Config
	configOnce     sync.Once
)

// GetConfig returns the process-wide configuration, read from the
// environment on first use.
func GetConfig() *structs.Config {
	configOnce.Do(func() {
		configInstance = Load()
	})
	return configInstance
}

// Load builds a fresh Config from the environment. Tests use it to get a
// private copy they can modify.
func Load() *structs.Config {
	return &structs.Config{
		Server: &structs.ServerConfig{
			AppName:         getEnvAsString("APP_NAME", "Storefront"),
			Environment:     getEnvAsString("APP_ENV", "development"),
			Port:            getEnvAsString("APP_PORT", ":8082"),
			ReadTimeout:     getEnvAsTimeDuration("SERVER_READ_TIME_OUT", 15*time.Second),
			WriteTimeout:    getEnvAsTimeDuration("SERVER_WRITE_TIME_OUT", 15*time.Second),
			IdleTimeout:     getEnvAsTimeDuration("SERVER_IDLE_TIME_OUT", 60*time.Second),
			ShutdownTimeout: getEnvAsTimeDuration("SERVER_SHUTDOWN_TIME_OUT", 10*time.Second),
			MaxHeaderBytes:  getEnvAsInt("SERVER_MAX_HEADER_BYTES", 1<<20), // 1 MB
			MaxBodyBytes:    getEnvAsInt64("SERVER_MAX_BODY_BYTES", 1<<20),
			CookieDomain:    getEnvAsString("COOKIE_DOMAIN", ""),
			DefaultLocale:   getEnvAsString("DEFAULT_LOCALE", "en"),
		},
		Cors: &structs.CorsConfig{
			AllowOrigins:     getEnvAsSlice("CORS_ALLOW_ORIGINS", []string{"http://localhost:8082"}),
			AllowMethods:     getEnvAsSlice("CORS_ALLOW_METHODS", []string{"GET", "POST", "OPTIONS"}),
			AllowHeaders:     getEnvAsSlice("CORS_ALLOW_HEADERS", []string{"Origin", "Content-Type", "Accept", "X-CSRF-Token"}),
			AllowCredentials: getEnvAsBool("CORS_ALLOW_CREDENTIALS", true),
			ExposedHeaders:   getEnvAsSlice("CORS_EXPOSED_HEADERS", []string{"Content-Length", "X-RateLimit-Remaining"}),
			MaxAge:           getEnvAsInt("CORS_MAX_AGE", 300),
		},
		Database: &structs.DatabaseConfig{
			Driver:       getEnvAsString("DB_DRIVER", "postgres"),
			Host:         getEnvAsString("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnvAsString("DB_USER", "postgres"),
			Password:     getEnvAsString("DB_PASSWORD", "password"),
			Name:         getEnvAsString("DB_NAME", "storefront_db"),
			SSLMode:      getEnvAsString("DB_SSL_MODE", "disable"),
			MaxConns:     getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:     getEnvAsInt("DB_MIN_CONNS", 2),
			MaxLifetime:  getEnvAsTimeDuration("DB_MAX_LIFETIME", 30*time.Minute),
			MaxIdleTime:  getEnvAsTimeDuration("DB_MAX_IDLE_TIME", 5*time.Minute),
			SlowQuery:    getEnvAsTimeDuration("DB_SLOW_QUERY", time.Second),
			AutoMigrate:  getEnvAsBool("DB_AUTO_MIGRATE", true),
			QueryTimeout: getEnvAsTimeDuration("DB_QUERY_TIMEOUT", 5*time.Second),
		},
		Auth: &structs.AuthConfig{
			SessionTokenSecret: getEnvAsString("AUTH_SESSION_TOKEN_SECRET", "default_session_secret"),
			SessionExpiry:      getEnvAsTimeDuration("AUTH_SESSION_EXPIRY", 24*time.Hour),
			CacheUserTTL:       getEnvAsTimeDuration("AUTH_CACHE_USER_TTL", 10*time.Minute),
		},
		Basket: &structs.BasketConfig{
			CookieName:   getEnvAsString("BASKET_COOKIE_NAME", "basket"),
			CookieExpiry: getEnvAsTimeDuration("BASKET_COOKIE_EXPIRY", 24*time.Hour),
		},
		Cache: &structs.CacheConfig{
			Enabled:         getEnvAsBool("CACHE_ENABLED", true),
			Address:         getEnvAsString("CACHE_ADDRESS", "localhost:6379"),
			Username:        getEnvAsString("CACHE_USERNAME", ""),
			Password:        getEnvAsString("CACHE_PASSWORD", ""),
			DB:              getEnvAsInt("CACHE_DB", 0),
			PoolSize:        getEnvAsInt("CACHE_POOL_SIZE", 10),
			MinIdleConns:    getEnvAsInt("CACHE_MIN_IDLE_CONNS", 2),
			MaxIdleConns:    getEnvAsInt("CACHE_MAX_IDLE_CONNS", 5),
			PoolTimeout:     getEnvAsTimeDuration("CACHE_POOL_TIMEOUT", 4*time.Second),
			IdleTimeout:     getEnvAsTimeDuration("CACHE_IDLE_TIMEOUT", 5*time.Minute),
			DialTimeout:     getEnvAsTimeDuration("CACHE_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:     getEnvAsTimeDuration("CACHE_READ_TIMEOUT", 3*time.Second),
			WriteTimeout:    getEnvAsTimeDuration("CACHE_WRITE_TIMEOUT", 3*time.Second),
			MaxRetries:      getEnvAsInt("CACHE_MAX_RETRIES", 3),
			MinRetryBackoff: getEnvAsTimeDuration("CACHE_MIN_RETRY_BACKOFF", 8*time.Millisecond),
			MaxRetryBackoff: getEnvAsTimeDuration("CACHE_MAX_RETRY_BACKOFF", 512*time.Millisecond),
			ProductListTTL:  getEnvAsTimeDuration("CACHE_PRODUCT_LIST_TTL", 5*time.Minute),
			ProductTTL:      getEnvAsTimeDuration("CACHE_PRODUCT_TTL", 10*time.Minute),
		},
		RateLimit: &structs.RateLimitConfig{
			Enabled:         getEnvAsBool("RATE_LIMIT_ENABLED", true),
			AuthLimit:       getEnvAsInt("RATE_LIMIT_AUTH_LIMIT", 10),
			AuthWindow:      getEnvAsTimeDuration("RATE_LIMIT_AUTH_WINDOW", time.Minute),
			CheckoutLimit:   getEnvAsInt("RATE_LIMIT_CHECKOUT_LIMIT", 20),
			CheckoutWindow:  getEnvAsTimeDuration("RATE_LIMIT_CHECKOUT_WINDOW", time.Minute),
			ExpensiveLimit:  getEnvAsInt("RATE_LIMIT_EXPENSIVE_LIMIT", 120),
			ExpensiveWindow: getEnvAsTimeDuration("RATE_LIMIT_EXPENSIVE_WINDOW", time.Minute),
			GeneralLimit:    getEnvAsInt("RATE_LIMIT_GENERAL_LIMIT", 300),
			GeneralWindow:   getEnvAsTimeDuration("RATE_LIMIT_GENERAL_WINDOW", time.Minute),
		},
		Security: &structs.SecurityConfig{
			CSRFEnabled: getEnvAsBool("CSRF_ENABLED", true),
			CSRFExpiry:  getEnvAsTimeDuration("CSRF_EXPIRY", 24*time.Hour),
		},
		Catalog: &structs.CatalogConfig{
			FeaturedProductIDs: getEnvAsInt64Slice("CATALOG_FEATURED_IDS", []int64{1, 20, 32}),
			MaxPerPage:         getEnvAsInt("CATALOG_MAX_PER_PAGE", 100),
		},
	}
}

func GetLogLevel() string {
	if IsProduction() {
		return "info"
	}
	return "debug"
}

func IsProduction() bool {
	return GetConfig().Server.Environment == "production"
}
