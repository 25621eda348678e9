package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/gamebridge/internal/bridge"
	"github.com/rickgao/gamebridge/internal/config"
	"github.com/rickgao/gamebridge/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/bridge.local.yaml", "path to config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	logger.Info("starting bridge",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)
	logger.Info("configuration loaded",
		"listen", fmt.Sprintf("%s:%d", cfg.Listen.Host, cfg.Listen.Port),
		"backend", fmt.Sprintf("%s:%d", cfg.Backend.Host, cfg.Backend.Port),
		"room_capacity", cfg.Rooms.Capacity,
		"tls", cfg.Listen.TLS.Enabled(),
	)

	// Create context cancelled by shutdown signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	srv := bridge.NewServer(cfg, logger)

	healthSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Health.Port),
		Handler: createHealthHandler(cfg.Health.Path, srv),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Run(gctx)
	})

	g.Go(func() error {
		logger.Info("starting health server", "port", cfg.Health.Port)
		if err := healthSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer shutdownCancel()
		return healthSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("bridge exited with error", "error", err)
		os.Exit(1)
	}

	logger.Info("bridge stopped")
}

// loadConfig reads the config file, or falls back to defaults when the
// default path does not exist so the bridge runs out of the box.
func loadConfig(path string) (*config.BridgeConfig, error) {
	cfg, err := config.LoadAndValidate(path)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

// logLevel maps the config string to a slog level.
func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// createHealthHandler exposes liveness plus runtime counters.
func createHealthHandler(path string, srv *bridge.Server) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		snapshot := srv.Stats().Snapshot()
		resp := map[string]interface{}{
			"status":   "ok",
			"version":  version.Version,
			"commit":   version.Commit,
			"rooms":    srv.Rooms().Count(),
			"sessions": srv.Sessions().Count(),
			"counters": snapshot,
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, "encode failed", http.StatusInternalServerError)
		}
	})
	return mux
}
