// Flakyservice is a test HTTP target for exercising the health monitor
// locally. Its /health endpoint can be switched between healthy and
// failing at runtime.
//
// Usage:
//
//	go run ./scripts/flakyservice -port 8081
//	curl -X POST localhost:8081/toggle
//
// With -fail-every N the endpoint fails every Nth request on its own.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"

	"github.com/angeloszaimis/health-monitor/pkg/logger"
)

func main() {
	port := flag.Int("port", 8081, "port to listen on")
	failEvery := flag.Int("fail-every", 0, "fail every Nth health request (0 disables)")
	flag.Parse()

	log := logger.New("info", false, "dev")

	var failing atomic.Bool
	var hits atomic.Int64

	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		if failing.Load() || (*failEvery > 0 && n%int64(*failEvery) == 0) {
			log.Info("health request", slog.Int64("hit", n), slog.String("result", "fail"))
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		log.Info("health request", slog.Int64("hit", n), slog.String("result", "ok"))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Post("/toggle", func(w http.ResponseWriter, r *http.Request) {
		for {
			cur := failing.Load()
			if failing.CompareAndSwap(cur, !cur) {
				log.Info("toggled", slog.Bool("failing", !cur))
				fmt.Fprintf(w, "failing=%t\n", !cur)
				return
			}
		}
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Info("starting flaky service", slog.String("address", addr))
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Error("server failed", slog.Any("err", err))
	}
}
