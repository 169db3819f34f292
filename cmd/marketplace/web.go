package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marketplace/internal/cache"
	"marketplace/internal/catalog"
	"marketplace/internal/config"
	"marketplace/internal/sitemap"
	"marketplace/internal/static"
	"marketplace/internal/storefront"
	"marketplace/internal/templates"
)

func runServer(cfg *config.Config, api api, addr string) error {
	c, err := cache.MakeCache(cfg.Cache, cfg.Azure)
	if err != nil {
		return fmt.Errorf("failed to create cache: %w", err)
	}

	mux, err := newMux(cfg, api, c)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           WithMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("Serving Marketplace", "address", addr, "cache", cfg.Cache.Backend, "mocks", cfg.Mocks.Enable)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case sig := <-shutdown:
		slog.Info("Shutdown signal received", "signal", sig)
		return gracefulShutdown(server)
	}
}

// newMux wires every route of the storefront. c may be nil.
func newMux(cfg *config.Config, api api, c cache.Cache) (*http.ServeMux, error) {
	static.Init()
	if err := templates.Init(); err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	store := catalog.NewStore(api, c, cfg.Cache.TTL)

	mux := http.NewServeMux()
	static.Register(mux)
	storefront.NewHandler(store, api, cfg.UI).Register(mux)
	sitemap.New(store, cfg.UI.PublicURL).Register(mux)

	ready := newReadiness()
	ready.Add("catalog api", api)
	ready.Add("catalog store", store)
	if r, ok := c.(Readyable); ok {
		ready.Add("cache", r)
	}
	mux.Handle("GET /ready", ready)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux, nil
}

func gracefulShutdown(svr *http.Server) error {
	// Give outstanding requests 25 seconds to complete (kubernetes has 30 second grace period)
	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := svr.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown error", "error", err)
		if closeErr := svr.Close(); closeErr != nil {
			slog.Error("Server close error", "error", closeErr)
		}
		return err
	}
	slog.Info("Server stopped")
	return nil
}
