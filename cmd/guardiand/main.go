package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"travel-guardian-backend/config"
	"travel-guardian-backend/internal/api"
	"travel-guardian-backend/internal/db"
	"travel-guardian-backend/internal/notify"
	"travel-guardian-backend/internal/provider"
	"travel-guardian-backend/internal/scheduler"
	"travel-guardian-backend/internal/store"
	"travel-guardian-backend/pkg/logger"
	"travel-guardian-backend/pkg/metrics"
)

func main() {
	log := logger.NewLogger()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal("failed to load configuration", "path", configPath, "error", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", "error", err)
	}
	log.Info("configuration loaded", "path", configPath)

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		log.Fatal("failed to initialize database", "error", err)
	}
	log.Info("database initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	m := metrics.NewMetrics("travel_guardian")

	// Notification channels. Web push is always on when VAPID keys exist;
	// mail and SMS gateways plug in behind their sender interfaces.
	var channels []notify.Channel
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions := &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		channels = append(channels, notify.NewWebPushChannel(appStore, webpushOptions, log))
	} else {
		log.Warn("VAPID keys not configured, web push disabled")
	}

	dispatcher := notify.NewPool(cfg.WorkerPool.NotificationSize, channels, log, m)
	dispatcher.Start(ctx)

	adapter := provider.NewHTTPAdapter(&cfg.Provider, log)
	engine := scheduler.NewEngine(appStore, adapter, dispatcher, log, m, cfg.Monitor, cfg.WorkerPool.Size)

	if cfg.Monitor.Enabled {
		go runMonitorLoop(ctx, engine, cfg.Monitor.Interval, log)
	} else {
		log.Info("background monitor disabled, cycles run on trigger only")
	}

	handler := api.NewHandler(appStore, engine, cfg.Monitor.Secret, cfg.Push.PublicKey, log)
	router := api.NewRouter(handler, cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info("HTTP server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("shutdown signal received, stopping services")

	cancel() // stops the monitor loop and notification workers

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal("HTTP server shutdown failed", "error", err)
	}

	log.Info("server gracefully stopped")
}

// runMonitorLoop triggers a cycle immediately and then on every tick until
// the context is cancelled.
func runMonitorLoop(ctx context.Context, engine *scheduler.Engine, interval time.Duration, log logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := engine.RunCycle(ctx); err != nil {
			log.Error("scheduled monitoring cycle failed", "error", err)
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}
