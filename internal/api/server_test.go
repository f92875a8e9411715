package api

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/storefront/internal/catalog"
	"github.com/talgya/storefront/internal/config"
	"github.com/talgya/storefront/internal/engine"
	"github.com/talgya/storefront/internal/entropy"
	"github.com/talgya/storefront/internal/journal"
)

const testKey = "test-key"

func newTestServer(t *testing.T, configure func(*Server)) (*Server, *httptest.Server) {
	t.Helper()
	s := &Server{
		World:    engine.NewWorld(config.Default(), entropy.NewSequence(0.99)),
		Eng:      engine.NewEngine(),
		AdminKey: testKey,
	}
	if configure != nil {
		configure(s)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func post(t *testing.T, ts *httptest.Server, path, key string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, ts.URL+path, bytes.NewReader(buf))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, ts *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestStatus(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp := get(t, ts, "/api/v1/status")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	status := decode[statusResponse](t, resp)
	assert.Equal(t, uint64(0), status.Time)
	assert.Equal(t, "Day 1, 00:00", status.Clock)
	assert.Equal(t, "solvent", status.DebtState)
	assert.Equal(t, 1.0, status.Speed)
	require.Len(t, status.Stores, 1)
	assert.True(t, status.TotalCash.Equal(status.Stores[0].Cash))
}

func TestStores(t *testing.T) {
	_, ts := newTestServer(t, nil)

	stores := decode[[]engine.StoreSnapshot](t, get(t, ts, "/api/v1/stores"))
	require.Len(t, stores, 1)
	assert.Equal(t, catalog.DefaultStoreName, stores[0].Name)

	one := decode[engine.StoreSnapshot](t, get(t, ts, "/api/v1/stores/0"))
	assert.Equal(t, stores[0].ID, one.ID)

	assert.Equal(t, http.StatusNotFound, get(t, ts, "/api/v1/stores/3").StatusCode)
	assert.Equal(t, http.StatusNotFound, get(t, ts, "/api/v1/stores/abc").StatusCode)
}

func TestCatalog(t *testing.T) {
	_, ts := newTestServer(t, nil)

	body := decode[map[string]json.RawMessage](t, get(t, ts, "/api/v1/catalog"))
	var goods []catalog.Good
	require.NoError(t, json.Unmarshal(body["goods"], &goods))
	assert.Len(t, goods, len(catalog.Goods()))
	assert.Contains(t, body, "global_upgrades")
}

func TestCommandsRequireKey(t *testing.T) {
	_, ts := newTestServer(t, nil)
	body := map[string]any{"sku": "chips", "quantity": 1}

	assert.Equal(t, http.StatusUnauthorized, post(t, ts, "/api/v1/stores/0/restock", "", body).StatusCode)
	assert.Equal(t, http.StatusUnauthorized, post(t, ts, "/api/v1/stores/0/restock", "wrong", body).StatusCode)

	_, open := newTestServer(t, func(s *Server) { s.AdminKey = "" })
	assert.Equal(t, http.StatusForbidden, post(t, open, "/api/v1/stores/0/restock", "", body).StatusCode)
}

func TestRestockCommand(t *testing.T) {
	s, ts := newTestServer(t, nil)

	resp := post(t, ts, "/api/v1/stores/0/restock", testKey, map[string]any{"sku": "chips", "quantity": 100})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[commandResult](t, resp).Accepted)

	store := s.World.Snapshot().Stores[0]
	assert.Equal(t, 150, store.Stock[0].Units)
	assert.Equal(t, "4920", store.Cash.String())

	resp = post(t, ts, "/api/v1/stores/0/restock", testKey, map[string]any{"sku": "coffee", "quantity": 1})
	result := decode[commandResult](t, resp)
	assert.False(t, result.Accepted)
	require.NotEmpty(t, result.Notifications)
	assert.Equal(t, "Main Street does not carry Ca Phe Sua.", result.Notifications[0].Message)
}

func TestRestockCommand_BadJSON(t *testing.T) {
	_, ts := newTestServer(t, nil)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/stores/0/restock", strings.NewReader("{"))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+testKey)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPriceCommand(t *testing.T) {
	s, ts := newTestServer(t, nil)

	result := decode[commandResult](t, post(t, ts, "/api/v1/prices", testKey, map[string]any{"sku": "chips", "price": "abc"}))
	assert.False(t, result.Accepted)
	assert.Equal(t, "Invalid price for Bánh mì.", result.Notifications[0].Message)

	result = decode[commandResult](t, post(t, ts, "/api/v1/prices", testKey, map[string]any{"sku": "chips", "price": "2.5"}))
	assert.True(t, result.Accepted)
	assert.Equal(t, "2.5", s.World.Snapshot().GlobalPrices[catalog.SKUChips].String())

	result = decode[commandResult](t, post(t, ts, "/api/v1/prices", testKey, map[string]any{"sku": "sodas", "price": 3}))
	assert.True(t, result.Accepted)
	assert.Equal(t, "3", s.World.Snapshot().GlobalPrices[catalog.SKUSodas].String())
}

func TestUpgradeAndStoreCommands(t *testing.T) {
	s, ts := newTestServer(t, nil)

	result := decode[commandResult](t, post(t, ts, "/api/v1/stores", testKey, map[string]any{"tier": "small", "location": "suburb"}))
	assert.False(t, result.Accepted)
	assert.Equal(t, "Max stores reached.", result.Notifications[0].Message)

	result = decode[commandResult](t, post(t, ts, "/api/v1/upgrades", testKey, map[string]any{"id": "marketing"}))
	assert.True(t, result.Accepted)
	assert.True(t, s.World.Snapshot().Marketing)

	result = decode[commandResult](t, post(t, ts, "/api/v1/stores/0/upgrades", testKey, map[string]any{"id": "premiumCoffee"}))
	assert.True(t, result.Accepted)
	assert.Len(t, s.World.Snapshot().Stores[0].Stock, 4)

	result = decode[commandResult](t, post(t, ts, "/api/v1/stores/0/fix", testKey, struct{}{}))
	assert.False(t, result.Accepted)
}

func TestSpeed(t *testing.T) {
	s, ts := newTestServer(t, nil)

	resp := post(t, ts, "/api/v1/speed", testKey, map[string]any{"speed": 0})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0.0, s.Eng.Speed())

	assert.Equal(t, http.StatusBadRequest, post(t, ts, "/api/v1/speed", testKey, map[string]any{"speed": 5000}).StatusCode)

	got := decode[map[string]float64](t, get(t, ts, "/api/v1/speed"))
	assert.Equal(t, 0.0, got["speed"])

	_, noEng := newTestServer(t, func(s *Server) { s.Eng = nil })
	assert.Equal(t, http.StatusServiceUnavailable, get(t, noEng, "/api/v1/speed").StatusCode)
}

func TestCommandRateLimit(t *testing.T) {
	_, ts := newTestServer(t, func(s *Server) { s.CommandLimit = 2 })
	body := map[string]any{"id": "nothing"}

	assert.Equal(t, http.StatusOK, post(t, ts, "/api/v1/upgrades", testKey, body).StatusCode)
	assert.Equal(t, http.StatusOK, post(t, ts, "/api/v1/upgrades", testKey, body).StatusCode)
	resp := post(t, ts, "/api/v1/upgrades", testKey, body)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))

	// Reads are never limited.
	assert.Equal(t, http.StatusOK, get(t, ts, "/api/v1/status").StatusCode)
}

func TestNotifications(t *testing.T) {
	s, ts := newTestServer(t, nil)
	for i := 0; i < 4; i++ {
		s.World.Restock(0, catalog.SKUCoffee, 1)
	}

	notes := decode[[]engine.Notification](t, get(t, ts, "/api/v1/notifications?limit=2"))
	assert.Len(t, notes, 2)
	notes = decode[[]engine.Notification](t, get(t, ts, "/api/v1/notifications"))
	assert.Len(t, notes, 4)

	assert.Equal(t, http.StatusBadRequest, get(t, ts, "/api/v1/notifications?limit=zero").StatusCode)
}

func TestNotificationsAndReportsFromJournal(t *testing.T) {
	j, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	_, err = j.StartRun("normal", 0)
	require.NoError(t, err)

	s, ts := newTestServer(t, func(s *Server) { s.Journal = j })
	s.World.AddSink(j)
	for i := 0; i < 8; i++ {
		s.World.Restock(0, catalog.SKUCoffee, 1)
	}
	for i := 0; i < 24; i++ {
		s.World.AdvanceHour()
	}

	notes := decode[[]engine.Notification](t, get(t, ts, "/api/v1/notifications?limit=50"))
	assert.Len(t, notes, 8, "journal keeps more than the in-memory log")

	reports := decode[[]engine.DailyReport](t, get(t, ts, "/api/v1/reports"))
	require.Len(t, reports, 1)
	assert.Equal(t, 1, reports[0].Day)
}

func TestReportsWithoutJournal(t *testing.T) {
	_, ts := newTestServer(t, nil)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, ts, "/api/v1/reports").StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	_, ts := newTestServer(t, nil)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/v1/prices", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestStream(t *testing.T) {
	s, ts := newTestServer(t, nil)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first engine.Snapshot
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, uint64(0), first.Time)

	s.World.AdvanceHour()

	var next engine.Snapshot
	require.NoError(t, conn.ReadJSON(&next))
	assert.Equal(t, uint64(1), next.Time)
}

func TestParsePrice(t *testing.T) {
	assert.Equal(t, 1.25, parsePrice(json.RawMessage(`1.25`)))
	assert.Equal(t, 1.25, parsePrice(json.RawMessage(`" 1.25 "`)))
	assert.True(t, math.IsNaN(parsePrice(json.RawMessage(`"abc"`))))
	assert.True(t, math.IsNaN(parsePrice(nil)))
}

func TestRateLimiter_WindowResets(t *testing.T) {
	now := time.Unix(1000, 0)
	rl := NewRateLimiter(1, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"))
	assert.Equal(t, 61, rl.RetryAfter("1.2.3.4"))

	now = now.Add(time.Minute)
	assert.True(t, rl.Allow("1.2.3.4"))
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", clientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientIP(r))
}
