package engine

import (
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/talgya/storefront/internal/catalog"
	"github.com/talgya/storefront/internal/config"
)

// Staff is the store's workforce. Cashiers drive base customer throughput.
type Staff struct {
	Cashiers int `json:"cashiers"`
}

// Status holds operational flags. A broken machine halts sales and
// automated restocking until fixed.
type Status struct {
	BrokenMachine bool `json:"broken_machine"`
}

// Store is one retail location's economic state.
type Store struct {
	ID              uuid.UUID
	Name            string
	Tier            catalog.Tier
	Location        catalog.Location
	Cash            decimal.Decimal // May go negative; debt is judged on the aggregate
	Inventory       map[catalog.SKU]int
	PurchasePrices  map[catalog.SKU]decimal.Decimal
	MaintenanceCost decimal.Decimal // Charged weekly with rent
	Staff           Staff
	Status          Status
	Reputation      int             // Always within [-100, 100]
	Upgrades        map[string]bool // One entry per catalog store upgrade

	// SecurityCameras lowers the shoplifting chance. No upgrade grants it yet.
	SecurityCameras bool

	skus []catalog.SKU // Inventory keys in the order they were stocked
}

func newStore(name string, tier catalog.Tier, loc catalog.Location, b config.Balance) *Store {
	s := &Store{
		ID:              uuid.New(),
		Name:            name,
		Tier:            tier,
		Location:        loc,
		Cash:            decimal.NewFromFloat(b.StartingCash),
		Inventory:       make(map[catalog.SKU]int),
		PurchasePrices:  make(map[catalog.SKU]decimal.Decimal),
		MaintenanceCost: decimal.NewFromFloat(math.Ceil(2 * tier.InventoryScale)),
		Staff:           Staff{Cashiers: 1},
		Upgrades:        make(map[string]bool),
	}
	for _, g := range catalog.BaseGoods() {
		s.stock(g.SKU, g.Wholesale)
		s.Inventory[g.SKU] = int(math.Floor(float64(g.StartingUnits) * tier.InventoryScale))
	}
	for _, u := range catalog.StoreUpgrades() {
		s.Upgrades[u.ID] = false
	}
	return s
}

// stock starts carrying a SKU at zero units. Inventory and PurchasePrices
// always gain keys together.
func (s *Store) stock(sku catalog.SKU, wholesale decimal.Decimal) {
	if _, ok := s.Inventory[sku]; ok {
		return
	}
	s.Inventory[sku] = 0
	s.PurchasePrices[sku] = wholesale
	s.skus = append(s.skus, sku)
}

// SKUs returns the stocked SKUs in the order they were added.
func (s *Store) SKUs() []catalog.SKU {
	out := make([]catalog.SKU, len(s.skus))
	copy(out, s.skus)
	return out
}

func (s *Store) adjustReputation(delta int) {
	s.Reputation += delta
	if s.Reputation > 100 {
		s.Reputation = 100
	}
	if s.Reputation < -100 {
		s.Reputation = -100
	}
}

func (s *Store) hasEffect(effect catalog.StoreEffect) bool {
	for _, u := range catalog.StoreUpgrades() {
		if u.Effect == effect && s.Upgrades[u.ID] {
			return true
		}
	}
	return false
}

func (s *Store) totalUnits() int {
	n := 0
	for _, qty := range s.Inventory {
		n += qty
	}
	return n
}

// simulateTick applies one simulated hour to the store. Weekly costs are
// charged regardless of opening hours; everything else needs the doors open
// and a working machine.
func (s *Store) simulateTick(w *World) {
	if w.time%w.balance.HoursPerWeek == 0 {
		s.payWeeklyCosts(w)
	}

	if !s.Location.IsOpen(w.hour()) {
		return
	}

	s.checkShoplifting(w)
	if s.checkBreakdown(w) {
		return
	}

	if s.hasEffect(catalog.EffectAutomatedRestock) {
		for _, sku := range s.skus {
			s.Inventory[sku]++
		}
	}

	s.serveCustomers(w)
}

func (s *Store) fixMachine() bool {
	if !s.Status.BrokenMachine {
		return false
	}
	s.Status.BrokenMachine = false
	return true
}
