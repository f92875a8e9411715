package engine

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/talgya/storefront/internal/catalog"
)

// Restock buys quantity units of sku for the store at storeIndex.
func (w *World) Restock(storeIndex int, sku catalog.SKU, quantity int) bool {
	w.mu.Lock()
	defer w.commit()

	if w.bankrupt {
		return false
	}
	s, ok := w.store(storeIndex)
	if !ok {
		w.notify(CategoryRestock, "No such store.")
		return false
	}
	if s.restockItem(sku, quantity, w) {
		w.dirty = true
		return true
	}
	return false
}

// OpenStore opens a new location paid for by the first store. Affordability
// is judged on aggregate cash.
func (w *World) OpenStore(tierID, locationID, name string) bool {
	w.mu.Lock()
	defer w.commit()

	if w.bankrupt {
		return false
	}
	if len(w.stores) >= w.maxStores {
		w.notify(CategoryStore, "Max stores reached.")
		return false
	}
	tier, ok := catalog.LookupTier(tierID)
	if !ok {
		w.notify(CategoryStore, fmt.Sprintf("Unknown store size %q.", tierID))
		return false
	}
	loc, ok := catalog.LookupLocation(locationID)
	if !ok {
		w.notify(CategoryStore, fmt.Sprintf("Unknown location %q.", locationID))
		return false
	}
	total := w.totalCash()
	if total.LessThan(tier.Cost) {
		w.notify(CategoryStore, fmt.Sprintf("Need $%s, have $%s.", tier.Cost, total.StringFixed(2)))
		return false
	}

	w.stores[0].Cash = w.stores[0].Cash.Sub(tier.Cost)
	if name == "" {
		name = loc.Name + " Branch"
	}
	w.stores = append(w.stores, newStore(name, tier, loc, w.balance))
	w.notify(CategoryStore, fmt.Sprintf("Opened %s in %s for $%s.", tier.Name, loc.Name, tier.Cost))
	return true
}

// SetGlobalPrice sets the chain-wide sell price of a SKU. Negative and
// non-finite values are refused.
func (w *World) SetGlobalPrice(sku catalog.SKU, value float64) bool {
	w.mu.Lock()
	defer w.commit()

	if w.bankrupt {
		return false
	}
	if _, ok := catalog.LookupGood(sku); !ok {
		w.notify(CategoryPrice, fmt.Sprintf("Unknown item %q.", sku))
		return false
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		w.notify(CategoryPrice, fmt.Sprintf("Invalid price for %s.", catalog.DisplayName(sku)))
		return false
	}
	w.globalPrices[sku] = decimal.NewFromFloat(value)
	w.dirty = true
	return true
}

// FixMachine repairs a broken machine at no cost.
func (w *World) FixMachine(storeIndex int) bool {
	w.mu.Lock()
	defer w.commit()

	if w.bankrupt {
		return false
	}
	s, ok := w.store(storeIndex)
	if !ok || !s.fixMachine() {
		return false
	}
	w.notify(CategoryStore, fmt.Sprintf("%s equipment fixed.", s.Name))
	return true
}
