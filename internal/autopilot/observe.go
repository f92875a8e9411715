// Package autopilot implements a rule-based player for the store chain.
// It observes the chain via the API, decides which restocks and repairs to
// make, and acts via the command endpoints.
package autopilot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// Observation holds all data collected during an observation cycle.
type Observation struct {
	Status  ChainStatus    `json:"status"`
	History []Notification `json:"history"`
}

// ChainStatus mirrors GET /api/v1/status.
type ChainStatus struct {
	Time          uint64          `json:"time"`
	Clock         string          `json:"clock"`
	Speed         float64         `json:"speed"`
	Trend         string          `json:"trend"`
	EconomyFactor float64         `json:"economy_factor"`
	TotalCash     decimal.Decimal `json:"total_cash"`
	DebtState     string          `json:"debt_state"`
	Bankrupt      bool            `json:"bankrupt"`
	MaxStores     int             `json:"max_stores"`
	Stores        []StoreInfo     `json:"stores"`
}

// StoreInfo mirrors one entry of the status stores list.
type StoreInfo struct {
	Index         int             `json:"index"`
	Name          string          `json:"name"`
	Cash          decimal.Decimal `json:"cash"`
	BrokenMachine bool            `json:"broken_machine"`
	Reputation    int             `json:"reputation"`
	Open          bool            `json:"open"`
	Stock         []StockInfo     `json:"stock"`
}

// StockInfo mirrors one shelf line.
type StockInfo struct {
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Units        int             `json:"units"`
	RestockPrice decimal.Decimal `json:"restock_price"`
	SellPrice    decimal.Decimal `json:"sell_price"`
}

// Notification mirrors items from GET /api/v1/notifications.
type Notification struct {
	Tick     uint64 `json:"tick"`
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Observer fetches chain state from the API.
type Observer struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewObserver creates an Observer targeting the given API base URL.
func NewObserver(baseURL string) *Observer {
	return &Observer{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Observe fetches status and recent notifications.
func (o *Observer) Observe(ctx context.Context) (*Observation, error) {
	obs := &Observation{}

	if err := o.fetchJSON(ctx, "/api/v1/status", &obs.Status); err != nil {
		return nil, fmt.Errorf("fetch status: %w", err)
	}
	if err := o.fetchJSON(ctx, "/api/v1/notifications?limit=20", &obs.History); err != nil {
		return nil, fmt.Errorf("fetch notifications: %w", err)
	}

	return obs, nil
}

// fetchJSON GETs a path and decodes the JSON response into target.
func (o *Observer) fetchJSON(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
