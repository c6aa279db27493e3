// backend-go/cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/buildstok/inventory/backend-go/internal/api"
	"github.com/buildstok/inventory/backend-go/internal/cache"
	"github.com/buildstok/inventory/backend-go/internal/config"
	"github.com/buildstok/inventory/backend-go/internal/forecast"
	"github.com/buildstok/inventory/backend-go/internal/repository/postgres"
	"github.com/buildstok/inventory/backend-go/internal/service"
	"github.com/buildstok/inventory/backend-go/internal/storage"
	"github.com/buildstok/inventory/backend-go/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	logger.Configure(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	materialRepo := postgres.NewMaterialRepository(db.DB)
	consumptionRepo := postgres.NewConsumptionRepository(db.DB)
	engine := forecast.NewEngine(materialRepo, consumptionRepo, cfg.Forecast.Workers)

	forecastCache, err := cache.NewForecastCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Forecast cache unavailable, continuing without it")
		forecastCache = cache.NewNoopForecastCache()
	}

	forecastService := service.NewForecastService(engine, forecastCache)
	exportService := service.NewExportService(forecastService, newExportStorage(cfg), cfg.Export.Dir)

	router := api.NewRouter(&api.Services{
		ForecastService: forecastService,
		ExportService:   exportService,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

func newExportStorage(cfg *config.Config) storage.ObjectStorage {
	if cfg.Export.Endpoint == "" {
		return nil
	}

	client, err := storage.NewS3Client(storage.S3Config{
		Endpoint:  cfg.Export.Endpoint,
		AccessKey: cfg.Export.AccessKey,
		SecretKey: cfg.Export.SecretKey,
		Bucket:    cfg.Export.Bucket,
		Region:    cfg.Export.Region,
		UseSSL:    cfg.Export.UseSSL,
	})
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Export storage unavailable, exports stay local")
		return nil
	}

	return client
}
