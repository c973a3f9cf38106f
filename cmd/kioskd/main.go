// Command kioskd runs the kiosk's headless services: catalog refresh, the
// connectivity probe, the offline-queue drain, the nightly terminal batch
// close, and the metrics endpoint. The ordering engine itself is a library
// driven by the UI layer's event handlers.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/poslite/kiosk/internal/catalog"
	"github.com/poslite/kiosk/internal/config"
	"github.com/poslite/kiosk/internal/connectivity"
	"github.com/poslite/kiosk/internal/payment"
	"github.com/poslite/kiosk/internal/storage/sqlite"
	"github.com/poslite/kiosk/internal/submit"
	"github.com/poslite/kiosk/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.StationID)

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	settings, err := config.Resolve(ctx, cfg, store)
	if err != nil {
		slog.Error("Failed to resolve settings", "error", err)
		os.Exit(1)
	}
	slog.Info("Settings resolved",
		"storeId", settings.StoreID,
		"mode", settings.KioskMode,
		"terminal", settings.TerminalIP)

	// Catalog: fetch now so the UI has a menu on boot, cache-backed offline.
	menuClient := catalog.NewClient(settings.APIBaseURL, settings.DBName)
	menuService := catalog.NewService(menuClient, store)
	if _, err := menuService.Refresh(ctx); err != nil {
		slog.Error("No catalog available", "error", err)
		os.Exit(1)
	}

	uploader := submit.NewClient(settings.TransServerURL, settings.DBName, cfg.TransAuth)
	monitor := connectivity.NewMonitor(settings.TransServerURL, cfg.TransAuth, cfg.ProbeInterval)
	syncer := submit.NewSyncer(store, uploader, cfg.SyncInterval)
	monitor.Subscribe(func(online bool) {
		if online {
			syncer.Kick()
		}
	})
	go monitor.Run(ctx)
	go syncer.Run(ctx)

	terminal := payment.NewPaxTerminal(settings.TerminalIP, settings.TerminalPort, cfg.TerminalTimeout)
	go batchCloseLoop(ctx, terminal, cfg.BatchCloseHour)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
	go func() {
		slog.Info("Metrics server starting", "address", cfg.MetricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Metrics server failed", "error", err)
		}
	}()

	slog.Info("Kiosk services ready", "station", cfg.StationID, "mode", settings.KioskMode)
	<-ctx.Done()

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
}

// batchCloseLoop settles the terminal batch once a day at the configured
// hour. A failed settlement retries the next day; the terminal holds the
// batch open until then.
func batchCloseLoop(ctx context.Context, terminal payment.Terminal, hour int) {
	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
		if !next.After(now) {
			next = next.Add(24 * time.Hour)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Until(next)):
		}

		closeCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		if err := terminal.CloseBatch(closeCtx); err != nil {
			slog.Error("Batch close failed", "error", err)
		}
		cancel()
	}
}
