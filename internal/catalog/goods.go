// Package catalog holds the static game data: goods, store tiers, locations and
// upgrades. Everything here is immutable after init.
package catalog

import "github.com/shopspring/decimal"

// SKU identifies a stock-keeping unit tracked for inventory and pricing.
type SKU string

const (
	SKUChips          SKU = "chips"
	SKUSodas          SKU = "sodas"
	SKUToiletries     SKU = "toiletries"
	SKUCoffee         SKU = "coffee"
	SKUEnergyDrinks   SKU = "energyDrinks"
	SKUOrganicSnacks  SKU = "organicSnacks"
	SKUHotDogs        SKU = "hotDogs"
	SKULotteryTickets SKU = "lotteryTickets"
)

// Good describes one SKU: how it is displayed and what it costs wholesale
// when a store first stocks it.
type Good struct {
	SKU            SKU             `json:"sku"`
	DisplayName    string          `json:"display_name"`
	Wholesale      decimal.Decimal `json:"wholesale"`
	StartingUnits  int             `json:"starting_units"`  // Units at scale 1.0; 0 for unlockable goods
	StartingPrice  decimal.Decimal `json:"starting_price"`  // Initial global sell price; zero when unset
	UnlockedByBase bool            `json:"unlocked_by_base"` // Stocked by every new store
}

var goods = []Good{
	{SKU: SKUChips, DisplayName: "Bánh mì", Wholesale: decimal.NewFromFloat(0.8), StartingUnits: 50, StartingPrice: decimal.NewFromFloat(1.5), UnlockedByBase: true},
	{SKU: SKUSodas, DisplayName: "Bánh bao", Wholesale: decimal.NewFromFloat(1.2), StartingUnits: 50, StartingPrice: decimal.NewFromFloat(2.0), UnlockedByBase: true},
	{SKU: SKUToiletries, DisplayName: "Oreos", Wholesale: decimal.NewFromFloat(2.0), StartingUnits: 20, StartingPrice: decimal.NewFromFloat(3.5), UnlockedByBase: true},
	{SKU: SKUCoffee, DisplayName: "Ca Phe Sua"},
	{SKU: SKUEnergyDrinks, DisplayName: "Coconut"},
	{SKU: SKUOrganicSnacks, DisplayName: "Mango"},
	{SKU: SKUHotDogs, DisplayName: "Bánh xèo"},
	{SKU: SKULotteryTickets, DisplayName: "Lottery Ticket"},
}

var goodIndex = func() map[SKU]Good {
	m := make(map[SKU]Good, len(goods))
	for _, g := range goods {
		m[g.SKU] = g
	}
	return m
}()

// BaseGoods returns the goods every new store starts with, in display order.
func BaseGoods() []Good {
	var base []Good
	for _, g := range goods {
		if g.UnlockedByBase {
			base = append(base, g)
		}
	}
	return base
}

// Goods returns every known good in display order.
func Goods() []Good {
	out := make([]Good, len(goods))
	copy(out, goods)
	return out
}

// LookupGood returns the good for a SKU.
func LookupGood(sku SKU) (Good, bool) {
	g, ok := goodIndex[sku]
	return g, ok
}

// DisplayName returns the player-facing name of a SKU, falling back to the
// raw identifier for unknown SKUs.
func DisplayName(sku SKU) string {
	if g, ok := goodIndex[sku]; ok {
		return g.DisplayName
	}
	return string(sku)
}
