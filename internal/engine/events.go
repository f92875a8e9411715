package engine

import (
	"fmt"
	"math"

	"github.com/talgya/storefront/internal/catalog"
	"github.com/talgya/storefront/internal/entropy"
)

// TriggerWorldEvent rolls the exogenous shocks: a new demand trend drawn from
// the first store's shelves, and a drift of the economy factor. Both can fire
// in the same pass.
func (w *World) TriggerWorldEvent() {
	w.mu.Lock()
	defer w.commit()

	if w.bankrupt {
		return
	}

	if entropy.Chance(w.rng, w.balance.TrendChance) && len(w.stores) > 0 {
		if skus := w.stores[0].skus; len(skus) > 0 {
			w.trend = skus[entropy.Intn(w.rng, len(skus))]
			w.dirty = true
			w.notify(CategoryWorld, fmt.Sprintf("Trend Alert: %s!", catalog.DisplayName(w.trend)))
		}
	}

	if entropy.Chance(w.rng, w.balance.EconomyShockChance) {
		drift := entropy.Uniform(w.rng, -w.balance.EconomyDrift, w.balance.EconomyDrift)
		w.economyFactor = math.Max(w.balance.EconomyFloor, w.economyFactor+drift)
		w.dirty = true
		w.notify(CategoryWorld, fmt.Sprintf("Economy factor: %.2f", w.economyFactor))
	}
}
