package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/scrapeui/api"
	"github.com/use-agent/scrapeui/config"
	"github.com/use-agent/scrapeui/engine"
	"github.com/use-agent/scrapeui/scraper"
	"github.com/use-agent/scrapeui/session"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	closeLog := initLogger(cfg.Log)
	defer closeLog()
	slog.Info("scrapeui starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"noSandbox", cfg.Browser.NoSandbox,
	)

	// ── 3. Quick-selector presets ───────────────────────────────────
	presets, err := config.LoadPresets(cfg.PresetsFile)
	if err != nil {
		slog.Error("failed to load presets", "file", cfg.PresetsFile, "error", err)
		os.Exit(1)
	}

	// ── 4. Strategy registry + orchestrator ─────────────────────────
	// Browsers are launched per call, so nothing is started here.
	registry := engine.NewDefaultRegistry(cfg.Browser, cfg.Engine)
	sc := scraper.New(registry)

	// ── 5. Session store ────────────────────────────────────────────
	store := session.New(cfg.Session.MaxSessions, cfg.Session.TTL, cfg.Session.HistorySize)
	defer store.Stop()

	// ── 6. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(sc, store, presets, cfg, startTime)

	// ── 7. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 8. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Browser jobs can run for a minute; give them time to tear down.
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("scrapeui stopped")
}

// initLogger configures slog based on the LogConfig. When a log file is
// configured, output is teed into a rotating file. The returned func closes
// the file.
func initLogger(cfg config.LogConfig) func() {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var (
		out     io.Writer = os.Stdout
		closeFn           = func() {}
	)
	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    20, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
		}
		out = io.MultiWriter(os.Stdout, rotator)
		closeFn = func() { _ = rotator.Close() }
	}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	slog.SetDefault(slog.New(handler))
	return closeFn
}
