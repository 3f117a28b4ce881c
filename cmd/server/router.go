package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	platformmetrics "twigascan/internal/platform/metrics"
	scanhandler "twigascan/internal/scan/handler"
	scanmetrics "twigascan/internal/scan/metrics"
	"twigascan/pkg/platform/httputil"
	"twigascan/pkg/platform/middleware/device"
	"twigascan/pkg/platform/middleware/metadata"
	"twigascan/pkg/platform/middleware/request"
	"twigascan/pkg/platform/middleware/requesttime"
)

type healthChecker interface {
	Health(ctx context.Context) map[string]string
}

type routerDeps struct {
	service     scanhandler.Service
	logger      *slog.Logger
	metrics     *scanmetrics.Metrics
	registry    *prometheus.Registry
	health      healthChecker
	scanTimeout time.Duration
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(d.logger))
	r.Use(request.Logger(d.logger))
	r.Use(request.LatencyMiddleware(d.metrics))
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(device.Middleware)

	r.Get("/health", healthHandler(d.health))
	r.Handle("/metrics", platformmetrics.Handler(d.registry))
	r.Group(func(r chi.Router) {
		r.Use(request.Timeout(d.scanTimeout))
		scanhandler.New(d.service, d.logger).Register(r)
	})
	return r
}

func healthHandler(h healthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := h.Health(r.Context())
		status := http.StatusOK
		for _, v := range checks {
			if v != "ok" {
				status = http.StatusServiceUnavailable
			}
		}
		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		httputil.WriteJSON(w, status, map[string]any{"status": state, "checks": checks})
	}
}
