package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"storefront_server/api"
	"storefront_server/config"
	"storefront_server/database"
	"storefront_server/database/memstore"
	"storefront_server/services"
	"storefront_server/structs"
	"syscall"

	"github.com/MonkyMars/gecho"
	"github.com/joho/godotenv"
)

var logger *gecho.Logger
var cfg *structs.Config

// init loads environment variables and initializes config and logger
func init() {
	envErr := godotenv.Load()

	cfg = config.GetConfig()
	logger = config.InitializeLogger()

	if envErr != nil {
		logger.Warn("No .env file found or error loading .env file, proceeding with system environment variables")
	}
}

func main() {
	store, err := openStore(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", gecho.Field("error", err))
	}

	cache := services.NewCache(logger, cfg)
	sm := services.NewServiceManager(logger, cfg, store, cache)

	srv := &http.Server{
		Addr:           cfg.Server.Port,
		Handler:        api.App(cfg, sm),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	done := setupGracefulShutdown(logger, srv)

	logger.Info(fmt.Sprintf("Starting server (%s) on %s", cfg.Server.AppName, cfg.Server.Port))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Failed to start server", gecho.Field("error", err))
	}
	<-done

	if err := cache.Close(); err != nil {
		logger.Warn("Failed to close cache", gecho.Field("error", err))
	}
	if err := store.Close(); err != nil {
		logger.Warn("Failed to close database", gecho.Field("error", err))
	}
	logger.Info("Server stopped")
}

// openStore connects the configured store. The in-memory store starts
// empty and is meant for local runs and demos.
func openStore(cfg *structs.Config) (database.Store, error) {
	if cfg.Database.Driver == "memory" {
		logger.Warn("Using in-memory store, data is lost on restart")
		return memstore.New(), nil
	}

	db, err := database.Connect(cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.QueryTimeout)
		defer cancel()
		if err := database.CreateSchema(ctx, db.DB); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
		logger.Info("Database schema is up to date")
	}

	return database.NewPgStore(db, cfg.Database.QueryTimeout), nil
}

// setupGracefulShutdown drains in-flight requests on SIGINT/SIGTERM. The
// returned channel closes once shutdown has finished.
func setupGracefulShutdown(logger *gecho.Logger, srv *http.Server) <-chan struct{} {
	done := make(chan struct{})
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer close(done)
		sig := <-c
		logger.Info("Received shutdown signal", gecho.Field("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Graceful shutdown failed", gecho.Field("error", err))
		}
	}()

	return done
}
