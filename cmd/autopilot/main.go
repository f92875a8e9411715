// Command autopilot plays the store chain through the HTTP API.
// It observes chain state, decides on restocks and repairs with a fixed
// policy, and acts via the command endpoints.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/talgya/storefront/internal/autopilot"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: .env: %v\n", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Configuration from environment.
	apiURL := envOrDefault("STORESIM_API_URL", "http://localhost:8080")
	adminKey := os.Getenv("STORESIM_ADMIN_KEY")
	intervalSec := envIntOrDefault("AUTOPILOT_INTERVAL", 5)
	memoryPath := envOrDefault("AUTOPILOT_MEMORY", "autopilot_memory.json")

	if adminKey == "" {
		slog.Error("STORESIM_ADMIN_KEY is required")
		os.Exit(1)
	}

	policy := autopilot.DefaultPolicy()
	policy.RestockBelow = envIntOrDefault("AUTOPILOT_RESTOCK_BELOW", policy.RestockBelow)
	policy.RestockTarget = envIntOrDefault("AUTOPILOT_RESTOCK_TARGET", policy.RestockTarget)
	if v := os.Getenv("AUTOPILOT_CASH_RESERVE"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			policy.CashReserve = d
		}
	}

	interval := time.Duration(intervalSec) * time.Second

	slog.Info("autopilot starting",
		"api_url", apiURL,
		"interval", interval,
		"restock_below", policy.RestockBelow,
		"restock_target", policy.RestockTarget,
		"cash_reserve", policy.CashReserve.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	observer := autopilot.NewObserver(apiURL)
	actor := autopilot.NewActor(apiURL, adminKey)
	memory := autopilot.LoadMemory(memoryPath)

	// Wait for storesim API to be ready before first cycle.
	slog.Info("waiting for storesim API...")
	if !waitForAPI(ctx, apiURL) {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		rec, err := autopilot.RunCycle(ctx, observer, actor, policy)
		if err != nil {
			slog.Error("cycle failed", "error", err)
		} else {
			memory.Record(rec)
			if err := memory.Save(memoryPath); err != nil {
				slog.Error("failed to write autopilot memory", "error", err)
			}
			slog.Info("cycle complete",
				"crisis", rec.CrisisLevel,
				"accepted", rec.Accepted,
				"planned", rec.Planned,
				"accept_rate", fmt.Sprintf("%.2f", memory.AcceptRate()),
			)
			if rec.CrisisLevel == autopilot.LevelBankrupt {
				fmt.Println("Chain is bankrupt. Autopilot stopped.")
				return
			}
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			slog.Info("received signal, shutting down")
			fmt.Println("Autopilot stopped.")
			return
		}
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

// waitForAPI polls the storesim status endpoint with exponential backoff
// until it responds. Gives up after 5 minutes or when ctx is cancelled.
func waitForAPI(ctx context.Context, apiURL string) bool {
	backoff := 2 * time.Second
	maxBackoff := 30 * time.Second
	deadline := time.Now().Add(5 * time.Minute)

	for {
		resp, err := http.Get(apiURL + "/api/v1/status")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				slog.Info("storesim API is ready")
				return true
			}
		}
		if time.Now().After(deadline) {
			slog.Error("storesim API did not become ready within 5 minutes")
			return false
		}
		slog.Info("storesim not ready, retrying...", "backoff", backoff)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return false
		}
		backoff = min(backoff*2, maxBackoff)
	}
}
