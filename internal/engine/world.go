package engine

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/talgya/storefront/internal/catalog"
	"github.com/talgya/storefront/internal/config"
	"github.com/talgya/storefront/internal/entropy"
)

// World is the whole game state. Every exported method is one atomic
// operation; callers on different goroutines are serialized.
type World struct {
	mu    sync.Mutex
	pubMu sync.Mutex // Orders delivery to sinks and subscribers

	balance config.Balance
	rng     entropy.Source

	stores        []*Store // Index 0 pays for global upgrades and new stores
	trend         catalog.SKU
	economyFactor float64
	globalPrices  map[catalog.SKU]decimal.Decimal
	maxStores     int
	marketing     bool
	bulkPurchase  bool
	globalOwned   map[string]int // Upgrade ID → times bought

	time      uint64  // Simulated hours since start
	debtStart *uint64 // Set while aggregate cash is in debt
	bankrupt  bool

	log     *NotificationLog
	pending []Notification
	reports []DailyReport
	dirty   bool

	sinks     []Sink
	listeners map[uint64]func(Snapshot)
	nextSubID uint64
}

// DailyReport summarizes the chain at a day boundary.
type DailyReport struct {
	Day           int             `json:"day"`
	Tick          uint64          `json:"tick"`
	TotalCash     decimal.Decimal `json:"total_cash"`
	EconomyFactor float64         `json:"economy_factor"`
	Trend         catalog.SKU     `json:"trend"`
	Stores        []StoreReport   `json:"stores"`
}

// StoreReport is one store's line in a DailyReport.
type StoreReport struct {
	Name       string          `json:"name"`
	Cash       decimal.Decimal `json:"cash"`
	Reputation int             `json:"reputation"`
	Units      int             `json:"units"`
	Broken     bool            `json:"broken"`
}

// NewWorld creates a fresh game with the starter store.
func NewWorld(b config.Balance, rng entropy.Source) *World {
	tier, _ := catalog.LookupTier(catalog.DefaultTier)
	loc, _ := catalog.LookupLocation(catalog.DefaultLocation)

	prices := make(map[catalog.SKU]decimal.Decimal)
	for _, g := range catalog.BaseGoods() {
		prices[g.SKU] = g.StartingPrice
	}

	return &World{
		balance:       b,
		rng:           rng,
		stores:        []*Store{newStore(catalog.DefaultStoreName, tier, loc, b)},
		economyFactor: 1.0,
		globalPrices:  prices,
		maxStores:     1,
		globalOwned:   make(map[string]int),
		log:           NewNotificationLog(b.NotificationRetention),
		listeners:     make(map[uint64]func(Snapshot)),
	}
}

// AddSink registers a sink for every future notification and daily report.
func (w *World) AddSink(s Sink) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sinks = append(w.sinks, s)
}

func (w *World) hour() int { return int(w.time % 24) }
func (w *World) day() int  { return int(w.time/24) + 1 }

func (w *World) totalCash() decimal.Decimal {
	total := decimal.Zero
	for _, s := range w.stores {
		total = total.Add(s.Cash)
	}
	return total
}

func (w *World) debtFloor() decimal.Decimal {
	return decimal.NewFromFloat(-w.balance.DebtLimit)
}

func (w *World) store(index int) (*Store, bool) {
	if index < 0 || index >= len(w.stores) {
		return nil, false
	}
	return w.stores[index], true
}

// AdvanceHour is the master tick: one simulated hour for every store, then
// the debt check. Does nothing once bankrupt.
func (w *World) AdvanceHour() {
	w.mu.Lock()
	defer w.commit()

	if w.bankrupt {
		return
	}
	w.dirty = true
	w.time++

	for _, s := range w.stores {
		s.simulateTick(w)
	}
	w.checkDebt()

	if w.hour() == 0 {
		w.closeDay()
	}
}

// closeDay logs the daily report and queues it for sinks.
func (w *World) closeDay() {
	r := DailyReport{
		Day:           w.day() - 1,
		Tick:          w.time,
		TotalCash:     w.totalCash(),
		EconomyFactor: w.economyFactor,
		Trend:         w.trend,
	}
	units := 0
	for _, s := range w.stores {
		n := s.totalUnits()
		units += n
		r.Stores = append(r.Stores, StoreReport{
			Name:       s.Name,
			Cash:       s.Cash,
			Reputation: s.Reputation,
			Units:      n,
			Broken:     s.Status.BrokenMachine,
		})
	}
	w.reports = append(w.reports, r)

	total, _ := r.TotalCash.Float64()
	slog.Info("daily report",
		"day", r.Day,
		"stores", len(w.stores),
		"total_cash", "$"+humanize.CommafWithDigits(total, 2),
		"units", humanize.Comma(int64(units)),
		"trend", trendName(w.trend),
		"economy", fmt.Sprintf("%.2f", w.economyFactor),
	)
}

// commit releases the world lock and then hands queued notifications, daily
// reports and a fresh snapshot to sinks and subscribers. Subscribers may read
// the World but must not call its mutators synchronously.
func (w *World) commit() {
	pending, reports := w.pending, w.reports
	w.pending, w.reports = nil, nil
	publish := w.dirty || len(pending) > 0
	w.dirty = false

	var snap Snapshot
	var listeners []func(Snapshot)
	if publish && len(w.listeners) > 0 {
		snap = w.snapshotLocked()
		for _, fn := range w.listeners {
			listeners = append(listeners, fn)
		}
	}
	sinks := append([]Sink(nil), w.sinks...)

	w.mu.Unlock()
	w.pubMu.Lock()
	defer w.pubMu.Unlock()

	for _, sink := range sinks {
		for _, n := range pending {
			if err := sink.RecordNotification(n); err != nil {
				slog.Error("sink failed", "category", n.Category, "error", err)
			}
		}
		for _, r := range reports {
			if err := sink.RecordDailyReport(r); err != nil {
				slog.Error("sink failed", "category", "daily_report", "error", err)
			}
		}
	}
	for _, fn := range listeners {
		fn(snap)
	}
}

func trendName(sku catalog.SKU) string {
	if sku == "" {
		return "None"
	}
	return catalog.DisplayName(sku)
}
