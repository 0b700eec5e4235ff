package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/angeloszaimis/health-monitor/internal/handler"
)

func setupRouter(log *slog.Logger, liveness, status, metrics http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(handler.RequestLogger(log))

	r.Method(http.MethodGet, "/health", liveness)
	r.Method(http.MethodGet, "/status", status)
	r.Method(http.MethodGet, "/metrics", metrics)

	return r
}
