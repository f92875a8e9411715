package engine

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/talgya/storefront/internal/catalog"
)

// restockUnitCost is what one unit of wholesale price costs right now.
func (w *World) restockUnitCost(wholesale decimal.Decimal) decimal.Decimal {
	unit := wholesale.Mul(decimal.NewFromFloat(w.economyFactor))
	if w.bulkPurchase {
		unit = unit.Mul(decimal.NewFromFloat(1 - w.balance.BulkDiscount))
	}
	return unit
}

// restockItem buys quantity units of sku for the store. The purchase must keep
// aggregate cash at or above the debt floor and be covered by the store's own
// cash.
func (s *Store) restockItem(sku catalog.SKU, quantity int, w *World) bool {
	if quantity <= 0 {
		return false
	}
	wholesale, ok := s.PurchasePrices[sku]
	if !ok {
		w.notify(CategoryRestock, fmt.Sprintf("%s does not carry %s.", s.Name, catalog.DisplayName(sku)))
		return false
	}

	total := w.restockUnitCost(wholesale).Mul(decimal.NewFromInt(int64(quantity)))

	if w.totalCash().Sub(total).LessThan(w.debtFloor()) {
		w.notify(CategoryDebt, "Debt limit reached—cannot restock that much.")
		return false
	}
	if s.Cash.LessThan(total) {
		w.notify(CategoryRestock, fmt.Sprintf("%s needs $%s, has $%s.",
			s.Name, total.StringFixed(2), s.Cash.StringFixed(2)))
		return false
	}

	s.Inventory[sku] += quantity
	s.Cash = s.Cash.Sub(total)
	slog.Debug("restocked", "store", s.Name, "sku", sku, "qty", quantity, "total", total.StringFixed(2))
	return true
}
