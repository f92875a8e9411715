package autopilot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// CommandResult is the response from a command endpoint.
type CommandResult struct {
	Accepted      bool           `json:"accepted"`
	Notifications []Notification `json:"notifications"`
}

// Actor executes actions via the command API.
type Actor struct {
	BaseURL    string
	AdminKey   string
	HTTPClient *http.Client
}

// NewActor creates an Actor targeting the given API base URL with bearer auth.
func NewActor(baseURL, adminKey string) *Actor {
	return &Actor{
		BaseURL:  baseURL,
		AdminKey: adminKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Act sends one action to its command endpoint.
func (a *Actor) Act(ctx context.Context, action Action) (*CommandResult, error) {
	var (
		path string
		body any = struct{}{}
	)
	switch action.Kind {
	case ActionRestock:
		path = fmt.Sprintf("/api/v1/stores/%d/restock", action.Store)
		body = map[string]any{"sku": action.SKU, "quantity": action.Quantity}
	case ActionFix:
		path = fmt.Sprintf("/api/v1/stores/%d/fix", action.Store)
	default:
		return nil, fmt.Errorf("unknown action kind %q", action.Kind)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal action: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.AdminKey)

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s failed (%d): %s", action.Kind, resp.StatusCode, string(respBody))
	}

	var result CommandResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &result, nil
}
