package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/rjsplit/splitr/internal/config"
	"github.com/rjsplit/splitr/internal/ledger"
	"github.com/rjsplit/splitr/internal/middleware"
	"github.com/rjsplit/splitr/internal/server"
	"github.com/rjsplit/splitr/internal/service"
	"github.com/rjsplit/splitr/internal/storage"
	"github.com/rjsplit/splitr/internal/storage/sqlite"
	"github.com/rjsplit/splitr/pkg/logging"
)

func main() {
	logging.Setup()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	// Session persistence is optional; without it the ledger is memory-only.
	var sessions storage.SessionStore
	if cfg.DBPath != "" {
		store, err := sqlite.New(cfg.DBPath)
		if err != nil {
			slog.Error("Failed to initialize session storage", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		sessions = store
		slog.Info("Session storage initialized", "database", cfg.DBPath)
	}

	svc := service.New(ledger.NewStore(), sessions)
	if err := svc.Restore(context.Background()); err != nil {
		slog.Error("Failed to restore session", "error", err)
		os.Exit(1)
	}

	mux := server.New(svc).Routes()
	mux.Handle("GET /metrics", promhttp.Handler())

	handler := middleware.Logging(middleware.CORS(middleware.Metrics(mux)))

	// h2c allows HTTP/2 without TLS for clients that want it.
	h2cHandler := h2c.NewHandler(handler, &http2.Server{})

	addr := fmt.Sprintf(":%s", cfg.Port)
	slog.Info("Server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
