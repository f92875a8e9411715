// Disruptions: rent, shoplifting and equipment failure.

package engine

import (
	"fmt"

	"github.com/talgya/storefront/internal/catalog"
	"github.com/talgya/storefront/internal/entropy"
)

// payWeeklyCosts deducts rent and maintenance. This can push cash negative.
func (s *Store) payWeeklyCosts(w *World) {
	s.Cash = s.Cash.Sub(s.Location.Rent).Sub(s.MaintenanceCost)
	w.notify(CategoryRent, fmt.Sprintf("%s paid rent $%s + maintenance $%s.",
		s.Name, s.Location.Rent, s.MaintenanceCost))
}

// checkShoplifting may steal one unit of a random SKU. Theft of an empty
// shelf goes unnoticed.
func (s *Store) checkShoplifting(w *World) {
	chance := w.balance.TheftChance
	if s.SecurityCameras {
		chance = w.balance.CameraTheftChance
	}
	if !entropy.Chance(w.rng, chance) || len(s.skus) == 0 {
		return
	}

	sku := s.skus[entropy.Intn(w.rng, len(s.skus))]
	if s.Inventory[sku] <= 0 {
		return
	}
	s.Inventory[sku]--
	s.adjustReputation(-1)
	w.notify(CategoryTheft, fmt.Sprintf("%s: shoplifter stole 1 %s!", s.Name, catalog.DisplayName(sku)))
}

// checkBreakdown may break the machine and reports whether it is broken.
func (s *Store) checkBreakdown(w *World) bool {
	if !s.Status.BrokenMachine && entropy.Chance(w.rng, w.balance.BreakdownChance) {
		s.Status.BrokenMachine = true
		s.adjustReputation(-2)
		w.notify(CategoryBreakdown, fmt.Sprintf("%s: equipment broke!", s.Name))
	}
	return s.Status.BrokenMachine
}
