// Package entropy supplies the randomness behind every stochastic branch of the
// simulation: theft, breakdowns, customer choices, trends and economic shocks.
// The simulation only ever sees a Source, so tests can script the dice.
package entropy

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const (
	randomOrgURL = "https://api.random.org/json-rpc/4/invoke"
	batchSize    = 100
	lowWater     = 10
)

// Client draws floats from a pool filled by random.org's
// generateDecimalFractions call. An empty pool after a failed refill falls
// through to crypto/rand, so Float never blocks on the network twice.
type Client struct {
	apiKey   string
	endpoint string
	http     *http.Client

	mu   sync.Mutex
	pool []float64
	seq  int
}

// NewClient returns nil for an empty key; a nil *Client still works as a
// crypto/rand source.
func NewClient(apiKey string) *Client {
	if apiKey == "" {
		return nil
	}
	return &Client{
		apiKey:   apiKey,
		endpoint: randomOrgURL,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

// Enabled reports whether draws go to random.org at all.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

func (c *Client) Float() float64 {
	if !c.Enabled() {
		return cryptoRandFloat()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.pool) < lowWater {
		if err := c.refill(); err != nil {
			slog.Debug("random.org refill failed", "pool", len(c.pool), "error", err)
		}
	}
	if len(c.pool) == 0 {
		return cryptoRandFloat()
	}
	v := c.pool[0]
	c.pool = c.pool[1:]
	return v
}

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
	ID      int       `json:"id"`
}

type rpcParams struct {
	APIKey        string `json:"apiKey"`
	N             int    `json:"n"`
	DecimalPlaces int    `json:"decimalPlaces"`
}

type rpcResponse struct {
	Result *struct {
		Random struct {
			Data []float64 `json:"data"`
		} `json:"random"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// refill is called with c.mu held.
func (c *Client) refill() error {
	c.seq++
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "generateDecimalFractions",
		Params:  rpcParams{APIKey: c.apiKey, N: batchSize, DecimalPlaces: 6},
		ID:      c.seq,
	})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	resp, err := c.http.Post(c.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("random.org status %d", resp.StatusCode)
	}

	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if out.Error != nil {
		return fmt.Errorf("random.org error %d: %s", out.Error.Code, out.Error.Message)
	}
	if out.Result == nil {
		return fmt.Errorf("random.org response has no result")
	}

	added := 0
	for _, v := range out.Result.Random.Data {
		// Six-place rounding can yield exactly 1.0.
		if v >= 0 && v < 1 {
			c.pool = append(c.pool, v)
			added++
		}
	}
	slog.Debug("random.org pool refilled", "added", added, "pool", len(c.pool))
	return nil
}

// cryptoRandFloat maps 53 random bits onto [0, 1).
func cryptoRandFloat() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0.5
	}
	return float64(binary.BigEndian.Uint64(buf[:])>>11) / (1 << 53)
}
