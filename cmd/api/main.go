package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"github.com/learninghub-api/internal/application/catalog"
	"github.com/learninghub-api/internal/application/notification"
	"github.com/learninghub-api/internal/application/resource"
	"github.com/learninghub-api/internal/config"
	"github.com/learninghub-api/internal/infrastructure/sns"
	"github.com/learninghub-api/internal/infrastructure/storage"
	"github.com/learninghub-api/internal/pkg/logger"
	transporthttp "github.com/learninghub-api/internal/transport/http"
	appmiddleware "github.com/learninghub-api/internal/transport/http/middleware"
)

const serviceName = "learninghub-api"

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	policies := resource.NewPolicies(cfg.Collections)
	handle, err := storage.Open(context.Background(), cfg, storage.Options{
		Indexes:    policies.Indexes(),
		Registerer: reg,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to open document store", err)
		os.Exit(1)
	}
	defer func() {
		if err := handle.Close(context.Background()); err != nil {
			logg.Error(context.Background(), "error closing document store", err)
		}
	}()

	var publisher notification.Publisher
	if cfg.Broadcast.TopicARN != "" {
		client, err := sns.NewClient(context.Background(), cfg.AWS)
		if err != nil {
			logg.Warn(context.Background(), "SNS publisher not available: "+err.Error())
		} else {
			publisher = sns.NewBroadcastPublisher(client, cfg.Broadcast.TopicARN)
		}
	}

	limiter := appmiddleware.NewRateLimiter(rate.Limit(cfg.Broadcast.RateLimit), cfg.Broadcast.RateBurst)
	defer limiter.Stop()

	router := transporthttp.NewRouter(cfg, &transporthttp.Deps{
		Services: catalog.New(handle.Store, policies, catalog.Options{
			Publisher: publisher,
			Logger:    logg,
		}),
		Logger:           logg,
		Gatherer:         reg,
		BroadcastLimiter: limiter,
	})

	addr := ":" + cfg.App.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":    cfg.App.Env,
		"addr":   addr,
		"driver": handle.Driver,
	})

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logg.Error(ctx, "api server stopped unexpectedly", err)
	case <-quit:
		logg.Info(ctx, "shutting down api server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "forced shutdown", err)
	}
	logg.Info(ctx, "api server stopped")
}
