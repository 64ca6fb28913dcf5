// Package api serves a small HTTP surface over a save store, for inspecting
// and editing save data while a game is in development.
//
// All routes live under /api/v1 and accept an optional X-API-Key header.
// Prometheus metrics are exposed unauthenticated on /metrics.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

// NewRouter builds the HTTP routes for server
func NewRouter(server *Server) http.Handler {
	metrics := server.metrics

	gatherer := server.config.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(metrics.InstrumentAuthMiddleware(apiKeyMiddleware(server.config.APIKey)))

		r.Get("/health", metrics.InstrumentHandler("GET", "/api/v1/health", server.handleHealth))

		r.Get("/saves", metrics.InstrumentHandler("GET", "/api/v1/saves", server.handleListSaves))
		r.Get("/saves/{name}", metrics.InstrumentHandler("GET", "/api/v1/saves/{name}", server.handleGetSave))
		r.Head("/saves/{name}", metrics.InstrumentHandler("HEAD", "/api/v1/saves/{name}", server.handleHeadSave))
		r.Put("/saves/{name}", metrics.InstrumentHandler("PUT", "/api/v1/saves/{name}", server.handlePutSave))
		r.Delete("/saves/{name}", metrics.InstrumentHandler("DELETE", "/api/v1/saves/{name}", server.handleDeleteSave))
		r.Get("/saves/{name}/info", metrics.InstrumentHandler("GET", "/api/v1/saves/{name}/info", server.handleSaveInfo))
	})

	return r
}

// StartServer serves the API until ctx is cancelled, then shuts down gracefully
func StartServer(ctx context.Context, store ISaveStore, config ServerConfig) error {
	reg := config.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	server := NewServer(store, config, NewMetrics(reg))

	addr := fmt.Sprintf("%s:%d", config.Bind, config.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(server),
		ReadHeaderTimeout: 10 * time.Second,
	}

	server.logger.WithField("addr", addr).Info("starting saveslot API server")

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	server.logger.Info("shutting down saveslot API server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown api server: %w", err)
	}
	return nil
}
