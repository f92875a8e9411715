package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/talgya/storefront/internal/catalog"
)

// PurchaseGlobalUpgrade buys a chain-wide upgrade with the first store's cash.
func (w *World) PurchaseGlobalUpgrade(id string) bool {
	w.mu.Lock()
	defer w.commit()

	if w.bankrupt {
		return false
	}
	up, ok := catalog.LookupGlobalUpgrade(id)
	payer := w.stores[0]
	if !ok || (!up.Repeatable && w.globalOwned[id] > 0) || payer.Cash.LessThan(up.Cost) {
		w.notify(CategoryPurchase, "Cannot purchase upgrade.")
		return false
	}

	payer.Cash = payer.Cash.Sub(up.Cost)
	w.applyGlobalUpgrade(up)
	w.globalOwned[id]++
	w.notify(CategoryPurchase, fmt.Sprintf("Purchased global upgrade: %s", up.Name))
	return true
}

func (w *World) applyGlobalUpgrade(up catalog.GlobalUpgrade) {
	switch up.Effect {
	case catalog.EffectMarketing:
		w.marketing = true
	case catalog.EffectBulkPurchase:
		w.bulkPurchase = true
	case catalog.EffectStoreSlot:
		w.maxStores++
	}
}

// PurchaseStoreUpgrade buys an upgrade for one store with that store's cash.
func (w *World) PurchaseStoreUpgrade(storeIndex int, id string) bool {
	w.mu.Lock()
	defer w.commit()

	if w.bankrupt {
		return false
	}
	s, ok := w.store(storeIndex)
	if !ok {
		w.notify(CategoryPurchase, "Cannot purchase store upgrade.")
		return false
	}
	up, ok := catalog.LookupStoreUpgrade(id)
	if !ok || s.Upgrades[id] || s.Cash.LessThan(up.Cost) {
		w.notify(CategoryPurchase, "Cannot purchase store upgrade.")
		return false
	}

	s.Cash = s.Cash.Sub(up.Cost)
	w.applyStoreUpgrade(s, up)
	w.notify(CategoryPurchase, fmt.Sprintf("%s purchased: %s", s.Name, up.Name))
	return true
}

// applyStoreUpgrade marks the upgrade owned and applies its effect. A new SKU
// gets a zero shelf, its wholesale price, and a default sell price if the
// chain has none yet.
func (w *World) applyStoreUpgrade(s *Store, up catalog.StoreUpgrade) {
	s.Upgrades[up.ID] = true
	switch up.Effect {
	case catalog.EffectAutomatedRestock:
		// Read by simulateTick through the Upgrades map.
	case catalog.EffectUnlockSKU:
		s.stock(up.SKU, up.Wholesale)
		if _, ok := w.globalPrices[up.SKU]; !ok {
			mult := decimal.NewFromFloat(w.balance.DefaultSellMultiplier)
			w.globalPrices[up.SKU] = s.PurchasePrices[up.SKU].Mul(mult)
		}
	}
}
