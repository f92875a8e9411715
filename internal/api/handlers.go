package api

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/talgya/storefront/internal/catalog"
	"github.com/talgya/storefront/internal/engine"
)

// statusResponse is the snapshot plus scheduler state.
type statusResponse struct {
	engine.Snapshot
	Clock         string  `json:"clock"`
	Speed         float64 `json:"speed"`
	Running       bool    `json:"running"`
	StreamClients int32   `json:"stream_clients"`
}

// commandResult reports whether a command was accepted and what the world
// said about it.
type commandResult struct {
	Accepted      bool                  `json:"accepted"`
	Notifications []engine.Notification `json:"notifications"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.World.Snapshot()
	resp := statusResponse{
		Snapshot:      snap,
		Clock:         engine.SimTime(snap.Time),
		StreamClients: s.activeStreams(),
	}
	if s.Eng != nil {
		resp.Speed = s.Eng.Speed()
		resp.Running = s.Eng.Running()
	}
	writeJSON(w, resp)
}

func (s *Server) handleStores(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.World.Snapshot().Stores)
}

func (s *Server) handleStore(w http.ResponseWriter, r *http.Request) {
	idx, ok := storeIndex(w, r)
	if !ok {
		return
	}
	stores := s.World.Snapshot().Stores
	if idx >= len(stores) {
		http.Error(w, "store not found", http.StatusNotFound)
		return
	}
	writeJSON(w, stores[idx])
}

// handleNotifications returns recent notifications. With a journal attached,
// limit may exceed the in-memory retention.
func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 1000 {
			http.Error(w, "limit must be 1-1000", http.StatusBadRequest)
			return
		}
		limit = n
	}

	if s.Journal != nil && limit > 0 {
		notes, err := s.Journal.RecentNotifications(limit)
		if err == nil {
			writeJSON(w, notes)
			return
		}
		slog.Warn("journal read failed, serving in-memory log", "error", err)
	}

	notes := s.World.Snapshot().Notifications
	if limit > 0 && limit < len(notes) {
		notes = notes[:limit]
	}
	writeJSON(w, notes)
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	if s.Journal == nil {
		http.Error(w, "journal disabled", http.StatusServiceUnavailable)
		return
	}
	run := r.URL.Query().Get("run")
	if run == "" {
		run = s.Journal.RunID()
	}
	reports, err := s.Journal.DailyReports(run)
	if err != nil {
		slog.Error("daily reports query failed", "run", run, "error", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, reports)
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"goods":           catalog.Goods(),
		"tiers":           catalog.Tiers(),
		"locations":       catalog.Locations(),
		"store_upgrades":  catalog.StoreUpgrades(),
		"global_upgrades": catalog.GlobalUpgrades(),
	})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if s.Eng == nil {
		http.Error(w, "scheduler not attached", http.StatusServiceUnavailable)
		return
	}
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Eng.SetSpeed(req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

func (s *Server) handleRestock(w http.ResponseWriter, r *http.Request) {
	idx, ok := storeIndex(w, r)
	if !ok {
		return
	}
	var req struct {
		SKU      catalog.SKU `json:"sku"`
		Quantity int         `json:"quantity"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.reply(w, s.World.Restock(idx, req.SKU, req.Quantity))
}

func (s *Server) handleStoreUpgrade(w http.ResponseWriter, r *http.Request) {
	idx, ok := storeIndex(w, r)
	if !ok {
		return
	}
	var req struct {
		ID string `json:"id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.reply(w, s.World.PurchaseStoreUpgrade(idx, req.ID))
}

func (s *Server) handleFix(w http.ResponseWriter, r *http.Request) {
	idx, ok := storeIndex(w, r)
	if !ok {
		return
	}
	s.reply(w, s.World.FixMachine(idx))
}

func (s *Server) handleGlobalUpgrade(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.reply(w, s.World.PurchaseGlobalUpgrade(req.ID))
}

func (s *Server) handleOpenStore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tier     string `json:"tier"`
		Location string `json:"location"`
		Name     string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.reply(w, s.World.OpenStore(req.Tier, req.Location, strings.TrimSpace(req.Name)))
}

// handlePrice accepts the price as a JSON number or string. Anything that
// does not parse is handed to the world as NaN, which it refuses with a
// notification.
func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SKU   catalog.SKU     `json:"sku"`
		Price json.RawMessage `json:"price"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.reply(w, s.World.SetGlobalPrice(req.SKU, parsePrice(req.Price)))
}

func parsePrice(raw json.RawMessage) float64 {
	text := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func (s *Server) reply(w http.ResponseWriter, accepted bool) {
	writeJSON(w, commandResult{
		Accepted:      accepted,
		Notifications: s.World.Snapshot().Notifications,
	})
}

func storeIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	idx, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		http.Error(w, "invalid store index", http.StatusBadRequest)
		return 0, false
	}
	return idx, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return false
	}
	return true
}
