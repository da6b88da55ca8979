package config

import (
	"sync"

	"github.com/MonkyMars/gecho"
)

var (
	logger     *gecho.Logger
	loggerOnce sync.Once
)

func InitializeLogger() *gecho.Logger {
	loggerOnce.Do(func() {
		logger = NewLogger(true)
	})
	return logger
}

// GetLogger initializes the logger on first use, which is what package
// tests rely on.
func GetLogger() *gecho.Logger {
	return InitializeLogger()
}

// NewLogger builds a gecho logger at the configured level.
func NewLogger(showCaller bool) *gecho.Logger {
	level := gecho.ParseLogLevel(GetLogLevel())
	return gecho.NewLogger(gecho.NewConfig(gecho.WithShowCaller(showCaller), gecho.WithLogLevel(level)))
}
