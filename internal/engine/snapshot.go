package engine

import (
	"github.com/shopspring/decimal"

	"github.com/talgya/storefront/internal/catalog"
)

// Snapshot is a read-only copy of the world for rendering and the API.
type Snapshot struct {
	Time           uint64                          `json:"time"`
	Day            int                             `json:"day"`
	Hour           int                             `json:"hour"`
	Trend          catalog.SKU                     `json:"trend,omitempty"`
	TrendName      string                          `json:"trend_name"`
	EconomyFactor  float64                         `json:"economy_factor"`
	GlobalPrices   map[catalog.SKU]decimal.Decimal `json:"global_prices"`
	MaxStores      int                             `json:"max_stores"`
	Marketing      bool                            `json:"marketing"`
	BulkPurchase   bool                            `json:"bulk_purchase"`
	GlobalUpgrades map[string]int                  `json:"global_upgrades"`
	TotalCash      decimal.Decimal                 `json:"total_cash"`
	DebtState      string                          `json:"debt_state"`
	DebtStartTime  *uint64                         `json:"debt_start_time,omitempty"`
	Bankrupt       bool                            `json:"bankrupt"`
	Stores         []StoreSnapshot                 `json:"stores"`
	Notifications  []Notification                  `json:"notifications"`
}

// StoreSnapshot is one store as seen from outside.
type StoreSnapshot struct {
	Index           int             `json:"index"`
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Tier            string          `json:"tier"`
	Location        string          `json:"location"`
	Open            bool            `json:"open"`
	Cash            decimal.Decimal `json:"cash"`
	MaintenanceCost decimal.Decimal `json:"maintenance_cost"`
	Rent            decimal.Decimal `json:"rent"`
	Cashiers        int             `json:"cashiers"`
	BrokenMachine   bool            `json:"broken_machine"`
	Reputation      int             `json:"reputation"`
	SecurityCameras bool            `json:"security_cameras"`
	Upgrades        map[string]bool `json:"upgrades"`
	Stock           []StockLine     `json:"stock"`
}

// StockLine is one SKU on a store's shelves. RestockPrice is the current
// per-unit cost after the economy factor and any bulk discount.
type StockLine struct {
	SKU          catalog.SKU     `json:"sku"`
	Name         string          `json:"name"`
	Units        int             `json:"units"`
	Wholesale    decimal.Decimal `json:"wholesale"`
	RestockPrice decimal.Decimal `json:"restock_price"`
	SellPrice    decimal.Decimal `json:"sell_price"`
}

// Snapshot copies the current state.
func (w *World) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// Bankrupt reports whether the game is over.
func (w *World) Bankrupt() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bankrupt
}

func (w *World) snapshotLocked() Snapshot {
	snap := Snapshot{
		Time:           w.time,
		Day:            w.day(),
		Hour:           w.hour(),
		Trend:          w.trend,
		TrendName:      trendName(w.trend),
		EconomyFactor:  w.economyFactor,
		GlobalPrices:   make(map[catalog.SKU]decimal.Decimal, len(w.globalPrices)),
		MaxStores:      w.maxStores,
		Marketing:      w.marketing,
		BulkPurchase:   w.bulkPurchase,
		GlobalUpgrades: make(map[string]int, len(w.globalOwned)),
		TotalCash:      w.totalCash(),
		DebtState:      w.debtState().String(),
		Bankrupt:       w.bankrupt,
		Notifications:  w.log.Recent(),
	}
	for sku, p := range w.globalPrices {
		snap.GlobalPrices[sku] = p
	}
	for id, n := range w.globalOwned {
		snap.GlobalUpgrades[id] = n
	}
	if w.debtStart != nil {
		start := *w.debtStart
		snap.DebtStartTime = &start
	}

	for i, s := range w.stores {
		ss := StoreSnapshot{
			Index:           i,
			ID:              s.ID.String(),
			Name:            s.Name,
			Tier:            s.Tier.Name,
			Location:        s.Location.Name,
			Open:            s.Location.IsOpen(w.hour()),
			Cash:            s.Cash,
			MaintenanceCost: s.MaintenanceCost,
			Rent:            s.Location.Rent,
			Cashiers:        s.Staff.Cashiers,
			BrokenMachine:   s.Status.BrokenMachine,
			Reputation:      s.Reputation,
			SecurityCameras: s.SecurityCameras,
			Upgrades:        make(map[string]bool, len(s.Upgrades)),
		}
		for id, owned := range s.Upgrades {
			ss.Upgrades[id] = owned
		}
		for _, sku := range s.skus {
			ss.Stock = append(ss.Stock, StockLine{
				SKU:          sku,
				Name:         catalog.DisplayName(sku),
				Units:        s.Inventory[sku],
				Wholesale:    s.PurchasePrices[sku],
				RestockPrice: w.restockUnitCost(s.PurchasePrices[sku]),
				SellPrice:    w.globalPrices[sku],
			})
		}
		snap.Stores = append(snap.Stores, ss)
	}
	return snap
}

// Subscription is a registered snapshot listener.
type Subscription struct {
	w  *World
	id uint64
}

// Subscribe calls fn with a fresh snapshot after every operation that changed
// the world. fn runs on the mutating goroutine after the world lock is
// released; it may read the World but must not mutate it synchronously.
func (w *World) Subscribe(fn func(Snapshot)) *Subscription {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextSubID++
	w.listeners[w.nextSubID] = fn
	return &Subscription{w: w, id: w.nextSubID}
}

// Cancel stops further deliveries. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	delete(s.w.listeners, s.id)
}
