// Market: hourly customer demand and sale resolution for a store.

package engine

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/talgya/storefront/internal/catalog"
	"github.com/talgya/storefront/internal/entropy"
)

// customerCount returns how many customers visit this hour.
func (s *Store) customerCount(w *World) int {
	b := w.balance
	base := float64(b.BaseCustomers+s.Staff.Cashiers) * s.Location.TrafficMod
	if w.marketing {
		base *= b.MarketingBoost
	}
	if w.trend != "" && s.Inventory[w.trend] > 0 {
		base *= b.TrendBoost
	}
	base *= 1 + float64(s.Reputation)/100
	if base <= 0 {
		return 0
	}
	return int(math.Floor(base))
}

// wantedGoods draws each customer's desired SKU. A customer wants the trend
// with TrendPreference probability, otherwise any stocked SKU.
func (s *Store) wantedGoods(w *World, customers int) []catalog.SKU {
	wants := make([]catalog.SKU, 0, customers)
	for i := 0; i < customers; i++ {
		if w.trend != "" && entropy.Chance(w.rng, w.balance.TrendPreference) {
			wants = append(wants, w.trend)
			continue
		}
		if len(s.skus) == 0 {
			continue
		}
		wants = append(wants, s.skus[entropy.Intn(w.rng, len(s.skus))])
	}
	return wants
}

// sell resolves one customer. The customer walks away when the shelf price is
// more than a random markup (between the tolerance bounds) over the
// current wholesale cost.
func (s *Store) sell(w *World, sku catalog.SKU) bool {
	price := w.globalPrices[sku]
	cost := s.PurchasePrices[sku].Mul(decimal.NewFromFloat(w.economyFactor))
	markup := entropy.Uniform(w.rng, w.balance.PriceToleranceMin, w.balance.PriceToleranceMax)
	if price.GreaterThan(cost.Mul(decimal.NewFromFloat(markup))) {
		return false
	}
	if s.Inventory[sku] <= 0 {
		return false
	}
	s.Inventory[sku]--
	s.Cash = s.Cash.Add(price)
	return true
}

// serveCustomers runs demand generation, sales, and trend reputation feedback.
func (s *Store) serveCustomers(w *World) {
	wants := s.wantedGoods(w, s.customerCount(w))

	soldTrend := false
	for _, sku := range wants {
		if s.sell(w, sku) && sku == w.trend {
			soldTrend = true
		}
	}

	if w.trend == "" {
		return
	}
	if soldTrend {
		s.adjustReputation(1)
		return
	}
	// Only a stocked-out trend hurts; a store that never carried it is not blamed.
	if stock, ok := s.Inventory[w.trend]; ok && stock == 0 {
		s.adjustReputation(-1)
	}
}
