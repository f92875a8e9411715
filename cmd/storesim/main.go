// Command storesim runs the store chain simulation with its journal and
// HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/talgya/storefront/internal/api"
	"github.com/talgya/storefront/internal/config"
	"github.com/talgya/storefront/internal/engine"
	"github.com/talgya/storefront/internal/entropy"
	"github.com/talgya/storefront/internal/journal"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: .env: %v\n", err)
	}
	slog.SetDefault(newLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT")))

	slog.Info("storefront: retail chain simulation")

	// ── Configuration ────────────────────────────────────────────────
	cfgPath := envOrDefault("STORESIM_CONFIG", "storesim.yaml")
	cfg, err := config.Load(cfgPath)
	switch {
	case errors.Is(err, config.ErrNoConfigFile):
		slog.Info("no config file, using defaults", "path", cfgPath)
	case err != nil:
		slog.Error("failed to load config", "path", cfgPath, "error", err)
		os.Exit(1)
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}
	slog.Info("config loaded",
		"difficulty", cfg.Difficulty,
		"seed", cfg.Seed,
		"tick_interval", cfg.TickInterval,
		"world_event_every", cfg.WorldEventEvery,
	)

	// ── Journal ──────────────────────────────────────────────────────
	if dir := filepath.Dir(cfg.DBPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			slog.Error("failed to create data directory", "dir", dir, "error", err)
			os.Exit(1)
		}
	}
	jrnl, err := journal.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open journal", "error", err)
		os.Exit(1)
	}
	defer jrnl.Close()
	if _, err := jrnl.StartRun(cfg.Difficulty, cfg.Seed); err != nil {
		slog.Error("failed to start run", "error", err)
		os.Exit(1)
	}
	slog.Info("journal opened", "path", cfg.DBPath)

	// ── World ────────────────────────────────────────────────────────
	rng := entropy.FromConfig(cfg.RandomOrgKey, cfg.Seed)
	world := engine.NewWorld(cfg.Balance, rng)
	world.AddSink(jrnl)

	eng := engine.NewEngine()
	eng.Interval = cfg.TickInterval
	eng.WorldEventEvery = cfg.WorldEventEvery
	eng.OnHour = func(uint64) { world.AdvanceHour() }
	eng.OnWorldEvent = func(uint64) { world.TriggerWorldEvent() }

	// Bankruptcy ends the run.
	world.Subscribe(func(s engine.Snapshot) {
		if s.Bankrupt {
			eng.Stop()
		}
	})

	// ── HTTP API ─────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn("STORESIM_ADMIN_KEY not set; command endpoints will be disabled")
	}
	apiServer := &api.Server{
		World:    world,
		Eng:      eng,
		Journal:  jrnl,
		Port:     cfg.APIPort,
		AdminKey: cfg.AdminKey,
	}
	apiServer.Start()

	// ── Start ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\n%s is open for business.\n", world.Snapshot().Stores[0].Name)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.APIPort)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("API shutdown failed", "error", err)
	}

	snap := world.Snapshot()
	slog.Info("simulation finished",
		"clock", engine.SimTime(snap.Time),
		"total_cash", snap.TotalCash.StringFixed(2),
		"stores", len(snap.Stores),
		"bankrupt", snap.Bankrupt,
	)
	if snap.Bankrupt {
		fmt.Println("Game over: the chain went bankrupt.")
		return
	}
	fmt.Println("Simulation stopped.")
}

// newLogger builds the process logger from LOG_LEVEL (debug, info, warn,
// error) and LOG_FORMAT (text or json).
func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(envValue(level, "info")))); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func envValue(v, defaultVal string) string {
	if v == "" {
		return defaultVal
	}
	return v
}

func envOrDefault(key, defaultVal string) string {
	return envValue(os.Getenv(key), defaultVal)
}
