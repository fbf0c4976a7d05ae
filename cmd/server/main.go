// backend-go/cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/reactive-resume/backend-go/internal/api"
	"github.com/andresuchdata/reactive-resume/backend-go/internal/config"
	"github.com/andresuchdata/reactive-resume/backend-go/internal/storage"
	"github.com/andresuchdata/reactive-resume/backend-go/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	logger.Configure(cfg.Log.Level, cfg.Log.Format)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Optional asset ledger and presign cache
	collaborators, err := storage.OpenCollaborators(cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer collaborators.Close()

	// Storage wiring: a missing key aborts startup before any network call.
	storageModule, err := storage.NewModule(cfg, collaborators.Assets, collaborators.Presign)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to configure storage")
	}
	logger.Log.Info().Str("storage", storageModule.Config.String()).Str("driver", cfg.Storage.Driver).Msg("Storage client configured")

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 30*time.Second)
	if err := storageModule.Service.Bootstrap(bootCtx); err != nil {
		cancelBoot()
		logger.Log.Fatal().Err(err).Msg("There was an error while creating the storage bucket")
	}
	cancelBoot()

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{
		StorageService:    storageModule.Service,
		StorageController: storageModule.Controller,
	}, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
