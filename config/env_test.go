package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvAsTimeDuration(t *testing.T) {
	t.Setenv("TEST_DURATION_STRING", "90m")
	t.Setenv("TEST_DURATION_SECONDS", "30")
	t.Setenv("TEST_DURATION_GARBAGE", "soon")

	assert.Equal(t, 90*time.Minute, getEnvAsTimeDuration("TEST_DURATION_STRING", time.Second))
	assert.Equal(t, 30*time.Second, getEnvAsTimeDuration("TEST_DURATION_SECONDS", time.Second))
	assert.Equal(t, time.Second, getEnvAsTimeDuration("TEST_DURATION_GARBAGE", time.Second))
	assert.Equal(t, time.Hour, getEnvAsTimeDuration("TEST_DURATION_UNSET", time.Hour))
}

func TestGetEnvAsSlices(t *testing.T) {
	t.Setenv("TEST_ORIGINS", " http://a.test , ,http://b.test")
	t.Setenv("TEST_IDS", "3, x, 7")

	assert.Equal(t, []string{"http://a.test", "http://b.test"}, getEnvAsSlice("TEST_ORIGINS", nil))
	assert.Equal(t, []int64{3, 7}, getEnvAsInt64Slice("TEST_IDS", nil))
	assert.Equal(t, []int64{1, 20, 32}, getEnvAsInt64Slice("TEST_IDS_UNSET", []int64{1, 20, 32}))
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "basket", cfg.Basket.CookieName)
	assert.Equal(t, 24*time.Hour, cfg.Basket.CookieExpiry)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionExpiry)
	assert.Equal(t, []int64{1, 20, 32}, cfg.Catalog.FeaturedProductIDs)
	assert.Equal(t, "en", cfg.Server.DefaultLocale)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("BASKET_COOKIE_EXPIRY", "2h")
	t.Setenv("CATALOG_FEATURED_IDS", "5,6")

	cfg := Load()

	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, 2*time.Hour, cfg.Basket.CookieExpiry)
	assert.Equal(t, []int64{5, 6}, cfg.Catalog.FeaturedProductIDs)
}
