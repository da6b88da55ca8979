package structs

import "time"

type Config struct {
	Server    *ServerConfig
	Cors      *CorsConfig
	Database  *DatabaseConfig
	Auth      *AuthConfig
	Basket    *BasketConfig
	Cache     *CacheConfig
	RateLimit *RateLimitConfig
	Security  *SecurityConfig
	Catalog   *CatalogConfig
}

type ServerConfig struct {
	AppName         string        // Storefront
	Environment     string        // development, production
	Port            string        // :8082
	ReadTimeout     time.Duration // 15s
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxHeaderBytes  int // in bytes
	MaxBodyBytes    int64
	CookieDomain    string // empty means host-only cookies
	DefaultLocale   string
}

type CorsConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int // in seconds
}

type DatabaseConfig struct {
	Driver       string // postgres, memory
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxConns     int
	MinConns     int
	MaxLifetime  time.Duration
	MaxIdleTime  time.Duration
	SlowQuery    time.Duration
	AutoMigrate  bool
	QueryTimeout time.Duration
}

type AuthConfig struct {
	SessionTokenSecret string
	SessionExpiry      time.Duration
	CacheUserTTL       time.Duration
}

type BasketConfig struct {
	CookieName   string
	CookieExpiry time.Duration // sliding, reset on every write
}

type CacheConfig struct {
	Enabled         bool // false selects the in-process cache
	Address         string
	Username        string
	Password        string
	DB              int
	PoolSize        int
	MinIdleConns    int
	MaxIdleConns    int
	PoolTimeout     time.Duration
	IdleTimeout     time.Duration
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	MaxRetries      int
	MinRetryBackoff time.Duration
	MaxRetryBackoff time.Duration
	ProductListTTL  time.Duration
	ProductTTL      time.Duration
}

type RateLimitConfig struct {
	Enabled         bool
	AuthLimit       int
	AuthWindow      time.Duration
	CheckoutLimit   int
	CheckoutWindow  time.Duration
	ExpensiveLimit  int
	ExpensiveWindow time.Duration
	GeneralLimit    int
	GeneralWindow   time.Duration
}

type SecurityConfig struct {
	CSRFEnabled bool
	CSRFExpiry  time.Duration
}

type CatalogConfig struct {
	FeaturedProductIDs []int64
	MaxPerPage         int
}
