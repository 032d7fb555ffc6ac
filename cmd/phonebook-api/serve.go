package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/phonebook-api/internal/handler"
	"github.com/noah-isme/phonebook-api/internal/middleware"
	"github.com/noah-isme/phonebook-api/internal/repository"
	"github.com/noah-isme/phonebook-api/internal/service"
	"github.com/noah-isme/phonebook-api/pkg/cache"
	"github.com/noah-isme/phonebook-api/pkg/config"
	"github.com/noah-isme/phonebook-api/pkg/database"
	"github.com/noah-isme/phonebook-api/pkg/export"
	"github.com/noah-isme/phonebook-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/phonebook-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/phonebook-api/pkg/middleware/requestid"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, contact cache disabled", zap.Error(err))
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Contacts.CacheTTL, logr, cfg.Contacts.CacheEnabled && redisClient != nil)
	validate := validator.New()

	contactRepo := repository.NewContactRepository(db, metricsSvc)
	contactSvc := service.NewContactService(contactRepo, cacheSvc, metricsSvc, validate, logr, service.ContactServiceConfig{
		PageSize:    cfg.Contacts.PageSize,
		MaxPageSize: cfg.Contacts.MaxPageSize,
		CacheTTL:    cfg.Contacts.CacheTTL,
	})
	exportSvc := service.NewExportService(contactRepo, logr, export.NewCSVExporter(), export.NewPDFExporter(), export.NewXLSXExporter())
	authSvc := service.NewAuthService(service.AuthConfig{
		OperatorEmail:        cfg.Auth.OperatorEmail,
		OperatorPasswordHash: cfg.Auth.OperatorPasswordHash,
		AccessTokenSecret:    cfg.JWT.Secret,
		AccessTokenExpiry:    cfg.JWT.Expiration,
	}, validate, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsSvc, "/metrics"))
	}

	handler.RegisterRoutes(r, handler.RouterConfig{
		APIPrefix:   cfg.APIPrefix,
		AuthEnabled: cfg.Auth.Enabled,
		Docs:        cfg.Env != config.EnvProduction,
		Metrics:     cfg.Metrics.Enabled,
	}, handler.Handlers{
		Contacts: handler.NewContactHandler(contactSvc, exportSvc),
		Zodiac:   handler.NewZodiacHandler(),
		Auth:     handler.NewAuthHandler(authSvc),
		Metrics:  handler.NewMetricsHandler(metricsSvc),
		Tokens:   authSvc,
		DB:       db,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "auth", cfg.Auth.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logr.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logr.Error("server failed", zap.Error(err))
		return err
	}
	return nil
}
