// backend-go/cmd/api/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/mux"

	"github.com/jpfamus/famus-report-analysis/backend-go/internal/api"
	"github.com/jpfamus/famus-report-analysis/backend-go/internal/cache"
	"github.com/jpfamus/famus-report-analysis/backend-go/internal/config"
	"github.com/jpfamus/famus-report-analysis/backend-go/internal/drive"
	"github.com/jpfamus/famus-report-analysis/backend-go/internal/repository/postgres"
	"github.com/jpfamus/famus-report-analysis/backend-go/internal/service"
	"github.com/jpfamus/famus-report-analysis/backend-go/pkg/logger"
)

func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.App.LogLevel)

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

	reportCache, err := cache.NewReportCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("cache unavailable, continuing without it")
		reportCache = cache.NewNoopReportCache()
	}

	reportService := service.NewReportService(postgres.NewReportRepository(db), reportCache)

	router := api.NewRouter(&api.Services{
		ReportService: reportService,
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

	adminSrv := startAdminServer(cfg)

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if adminSrv != nil {
		if err := adminSrv.Shutdown(ctx); err != nil {
			logger.Log.Error().Err(err).Msg("Admin server forced to shutdown")
		}
	}
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

// startAdminServer exposes the Drive admin endpoints on a separate listener
// when the integration is enabled. Returns nil when disabled.
func startAdminServer(cfg *config.Config) *http.Server {
	if !cfg.Drive.Enabled {
		return nil
	}

	driveService, err := drive.NewService(cfg.Drive)
	if err != nil {
		logger.Log.Error().Err(err).Msg("drive service init failed, admin endpoints disabled")
		return nil
	}

	r := mux.NewRouter()
	drive.NewHandler(driveService, cfg.Drive.FolderID, cfg.Drive.DownloadDir).RegisterRoutes(r)
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	adminSrv := &http.Server{
		Addr:    ":" + cfg.Server.AdminPort,
		Handler: r,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.AdminPort).Msg("Starting admin server")
		if err := adminSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error().Err(err).Msg("Admin server stopped")
		}
	}()

	return adminSrv
}
