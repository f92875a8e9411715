package catalog

import "github.com/shopspring/decimal"

// StoreEffect is what a store upgrade does when bought.
type StoreEffect uint8

const (
	EffectAutomatedRestock StoreEffect = iota // +1 unit of every SKU each open hour
	EffectUnlockSKU                           // Adds a new SKU to the store
)

// GlobalEffect is what a global upgrade does to the world when bought.
type GlobalEffect uint8

const (
	EffectMarketing    GlobalEffect = iota // Traffic boost
	EffectBulkPurchase                     // Restock discount
	EffectStoreSlot                        // One more store allowed
)

// StoreUpgrade is bought per store. For EffectUnlockSKU, SKU and Wholesale
// name the unlocked good and its default purchase price.
type StoreUpgrade struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Cost        decimal.Decimal `json:"cost"`
	Description string          `json:"description"`
	Effect      StoreEffect     `json:"effect"`
	SKU         SKU             `json:"sku,omitempty"`
	Wholesale   decimal.Decimal `json:"wholesale"`
}

// GlobalUpgrade is bought once for the whole chain, paid by the first store.
// Repeatable upgrades can be bought any number of times.
type GlobalUpgrade struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Cost        decimal.Decimal `json:"cost"`
	Description string          `json:"description"`
	Effect      GlobalEffect    `json:"effect"`
	Repeatable  bool            `json:"repeatable"`
}

var storeUpgrades = []StoreUpgrade{
	{ID: "automated", Name: "Automated Restocker", Cost: decimal.NewFromInt(2000), Description: "Auto-restocks 1 unit/sec.", Effect: EffectAutomatedRestock},
	{ID: "premiumCoffee", Name: "Ca Phe Lady", Cost: decimal.NewFromInt(500), Description: "Unlocks coffee SKU.", Effect: EffectUnlockSKU, SKU: SKUCoffee, Wholesale: decimal.NewFromFloat(3.0)},
	{ID: "energyDrink", Name: "Coconut man", Cost: decimal.NewFromInt(1000), Description: "Unlocks energy drinks.", Effect: EffectUnlockSKU, SKU: SKUEnergyDrinks, Wholesale: decimal.NewFromFloat(2.0)},
	{ID: "organicSnacks", Name: "Mango Upgradez", Cost: decimal.NewFromInt(2000), Description: "Unlocks organic snacks.", Effect: EffectUnlockSKU, SKU: SKUOrganicSnacks, Wholesale: decimal.NewFromFloat(1.5)},
	{ID: "hotDogRoller", Name: "Bánh Xèo Lady", Cost: decimal.NewFromInt(2200), Description: "Unlocks hot dogs.", Effect: EffectUnlockSKU, SKU: SKUHotDogs, Wholesale: decimal.NewFromFloat(1.0)},
	{ID: "lotteryTerminal", Name: "Lotto Street Seller", Cost: decimal.NewFromInt(4000), Description: "Sells lottery tickets.", Effect: EffectUnlockSKU, SKU: SKULotteryTickets, Wholesale: decimal.NewFromFloat(1.0)},
}

var globalUpgrades = []GlobalUpgrade{
	{ID: "marketing", Name: "Marketing Campaign", Cost: decimal.NewFromInt(1000), Description: "+10% foot traffic.", Effect: EffectMarketing},
	{ID: "bulk", Name: "Bulk Purchasing", Cost: decimal.NewFromInt(3000), Description: "-10% restock cost.", Effect: EffectBulkPurchase},
	{ID: "franchise", Name: "Franchise Model", Cost: decimal.NewFromInt(5000), Description: "Unlock extra store slot.", Effect: EffectStoreSlot, Repeatable: true},
}

// StoreUpgrades returns every store upgrade in catalog order.
func StoreUpgrades() []StoreUpgrade {
	out := make([]StoreUpgrade, len(storeUpgrades))
	copy(out, storeUpgrades)
	return out
}

// GlobalUpgrades returns every global upgrade in catalog order.
func GlobalUpgrades() []GlobalUpgrade {
	out := make([]GlobalUpgrade, len(globalUpgrades))
	copy(out, globalUpgrades)
	return out
}

// LookupStoreUpgrade finds a store upgrade by ID.
func LookupStoreUpgrade(id string) (StoreUpgrade, bool) {
	for _, u := range storeUpgrades {
		if u.ID == id {
			return u, true
		}
	}
	return StoreUpgrade{}, false
}

// LookupGlobalUpgrade finds a global upgrade by ID.
func LookupGlobalUpgrade(id string) (GlobalUpgrade, bool) {
	for _, u := range globalUpgrades {
		if u.ID == id {
			return u, true
		}
	}
	return GlobalUpgrade{}, false
}
