package catalog

import "github.com/shopspring/decimal"

// Tier is a store size. Scale multiplies starting stock and maintenance.
type Tier struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Cost           decimal.Decimal `json:"cost"`
	InventoryScale float64         `json:"inventory_scale"`
}

// Location is where a store operates. Open and Close bound the operating
// window as [Open, Close) on a 24-hour clock.
type Location struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Rent       decimal.Decimal `json:"rent"` // Charged weekly
	TrafficMod float64         `json:"traffic_mod"`
	Open       int             `json:"open"`
	Close      int             `json:"close"`
}

// IsOpen reports whether hour falls inside the operating window.
func (l Location) IsOpen(hour int) bool {
	return hour >= l.Open && hour < l.Close
}

var tiers = []Tier{
	{ID: "small", Name: "Small Store", Cost: decimal.NewFromInt(1000), InventoryScale: 0.5},
	{ID: "medium", Name: "Medium Store", Cost: decimal.NewFromInt(3000), InventoryScale: 1.0},
	{ID: "large", Name: "Large Store", Cost: decimal.NewFromInt(5000), InventoryScale: 1.5},
}

var locations = []Location{
	{ID: "downtown", Name: "Downtown", Rent: decimal.NewFromInt(15), TrafficMod: 2.0, Open: 8, Close: 22},
	{ID: "suburb", Name: "Suburb", Rent: decimal.NewFromInt(5), TrafficMod: 1.0, Open: 6, Close: 20},
	{ID: "mall", Name: "Mall", Rent: decimal.NewFromInt(10), TrafficMod: 1.5, Open: 10, Close: 22},
	{ID: "airport", Name: "Airport", Rent: decimal.NewFromInt(20), TrafficMod: 2.5, Open: 0, Close: 24},
}

// Tiers returns all store tiers, cheapest first.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}

// Locations returns all store locations.
func Locations() []Location {
	out := make([]Location, len(locations))
	copy(out, locations)
	return out
}

// LookupTier finds a tier by ID.
func LookupTier(id string) (Tier, bool) {
	for _, t := range tiers {
		if t.ID == id {
			return t, true
		}
	}
	return Tier{}, false
}

// LookupLocation finds a location by ID.
func LookupLocation(id string) (Location, bool) {
	for _, l := range locations {
		if l.ID == id {
			return l, true
		}
	}
	return Location{}, false
}

// DefaultTier and DefaultLocation describe the store every new game starts with.
const (
	DefaultTier      = "medium"
	DefaultLocation  = "downtown"
	DefaultStoreName = "Main Street"
)
