package config

import (
	"errors"
	"fmt"
)

// Balance holds every tunable rule constant of the simulation.
type Balance struct {
	// Money
	StartingCash          float64 `yaml:"starting_cash" json:"starting_cash"`
	DebtLimit             float64 `yaml:"debt_limit" json:"debt_limit"` // Aggregate cash may not go below -DebtLimit
	DebtGraceHours        uint64  `yaml:"debt_grace_hours" json:"debt_grace_hours"`
	BulkDiscount          float64 `yaml:"bulk_discount" json:"bulk_discount"`
	DefaultSellMultiplier float64 `yaml:"default_sell_multiplier" json:"default_sell_multiplier"`

	// Calendar
	HoursPerWeek uint64 `yaml:"hours_per_week" json:"hours_per_week"`

	// Disruptions
	TheftChance       float64 `yaml:"theft_chance" json:"theft_chance"`
	CameraTheftChance float64 `yaml:"camera_theft_chance" json:"camera_theft_chance"`
	BreakdownChance   float64 `yaml:"breakdown_chance" json:"breakdown_chance"`

	// Demand
	BaseCustomers     int     `yaml:"base_customers" json:"base_customers"`
	MarketingBoost    float64 `yaml:"marketing_boost" json:"marketing_boost"`
	TrendBoost        float64 `yaml:"trend_boost" json:"trend_boost"`
	TrendPreference   float64 `yaml:"trend_preference" json:"trend_preference"`
	PriceToleranceMin float64 `yaml:"price_tolerance_min" json:"price_tolerance_min"`
	PriceToleranceMax float64 `yaml:"price_tolerance_max" json:"price_tolerance_max"`

	// World events
	TrendChance        float64 `yaml:"trend_chance" json:"trend_chance"`
	EconomyShockChance float64 `yaml:"economy_shock_chance" json:"economy_shock_chance"`
	EconomyDrift       float64 `yaml:"economy_drift" json:"economy_drift"`
	EconomyFloor       float64 `yaml:"economy_floor" json:"economy_floor"`

	// Notifications kept for display
	NotificationRetention int `yaml:"notification_retention" json:"notification_retention"`
}

// Default returns the standard balance.
func Default() Balance {
	return Balance{
		StartingCash:          5000,
		DebtLimit:             1000,
		DebtGraceHours:        24,
		BulkDiscount:          0.1,
		DefaultSellMultiplier: 2,
		HoursPerWeek:          168,
		TheftChance:           0.05,
		CameraTheftChance:     0.01,
		BreakdownChance:       0.002,
		BaseCustomers:         3,
		MarketingBoost:        1.1,
		TrendBoost:            2,
		TrendPreference:       0.5,
		PriceToleranceMin:     2.5,
		PriceToleranceMax:     3.5,
		TrendChance:           0.3,
		EconomyShockChance:    0.1,
		EconomyDrift:          0.2,
		EconomyFloor:          0.5,
		NotificationRetention: 5,
	}
}

// Casual returns a forgiving balance: more cash, fewer disruptions.
func Casual() Balance {
	b := Default()
	b.StartingCash = 8000
	b.DebtGraceHours = 48
	b.TheftChance = 0.02
	b.BreakdownChance = 0.001
	return b
}

// Hard returns a punishing balance for experienced players.
func Hard() Balance {
	b := Default()
	b.StartingCash = 3000
	b.DebtGraceHours = 12
	b.TheftChance = 0.08
	b.BreakdownChance = 0.004
	b.EconomyDrift = 0.3
	return b
}

// ForDifficulty returns the preset for a difficulty name. Unknown names get Default.
func ForDifficulty(name string) Balance {
	switch name {
	case "casual":
		return Casual()
	case "hard":
		return Hard()
	default:
		return Default()
	}
}

// Validate rejects balances the rules cannot run with.
func (b Balance) Validate() error {
	var errs []error
	for name, p := range map[string]float64{
		"theft_chance":         b.TheftChance,
		"camera_theft_chance":  b.CameraTheftChance,
		"breakdown_chance":     b.BreakdownChance,
		"trend_preference":     b.TrendPreference,
		"trend_chance":         b.TrendChance,
		"economy_shock_chance": b.EconomyShockChance,
		"bulk_discount":        b.BulkDiscount,
	} {
		if p < 0 || p > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0, 1], got %v", name, p))
		}
	}
	if b.PriceToleranceMin > b.PriceToleranceMax {
		errs = append(errs, fmt.Errorf("price_tolerance_min %v exceeds price_tolerance_max %v", b.PriceToleranceMin, b.PriceToleranceMax))
	}
	if b.DebtLimit < 0 {
		errs = append(errs, fmt.Errorf("debt_limit must not be negative, got %v", b.DebtLimit))
	}
	if b.EconomyFloor <= 0 {
		errs = append(errs, fmt.Errorf("economy_floor must be positive, got %v", b.EconomyFloor))
	}
	if b.HoursPerWeek == 0 {
		errs = append(errs, errors.New("hours_per_week must be positive"))
	}
	if b.NotificationRetention <= 0 {
		errs = append(errs, errors.New("notification_retention must be positive"))
	}
	return errors.Join(errs...)
}
