package autopilot

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Action kinds.
const (
	ActionRestock = "restock"
	ActionFix     = "fix"
)

// Policy tunes the rule-based player.
type Policy struct {
	RestockBelow  int             // Restock lines under this many units
	RestockTarget int             // Units to bring a line up to
	TrendTarget   int             // Units to bring the trend up to
	CashReserve   decimal.Decimal // Per-store cash kept back for rent
	MaxActions    int             // Per cycle
}

// DefaultPolicy returns the stock policy.
func DefaultPolicy() Policy {
	return Policy{
		RestockBelow:  10,
		RestockTarget: 40,
		TrendTarget:   80,
		CashReserve:   decimal.NewFromInt(200),
		MaxActions:    8,
	}
}

// Action is one command the autopilot wants to send.
type Action struct {
	Kind     string `json:"kind"`
	Store    int    `json:"store"`
	SKU      string `json:"sku,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
	Reason   string `json:"reason"`
}

// Decision is the output of one decide step.
type Decision struct {
	Actions   []Action
	Rationale string
	Health    *ChainHealth
}

type restockCandidate struct {
	store  int
	line   StockInfo
	target int
	trend  bool
}

// Decide turns an observation into a list of actions. Repairs come first
// since they are free; restocks follow, lowest shelves first, within each
// store's cash minus the reserve. In debt the reserve is dropped and only
// empty shelves are refilled, to the restock threshold.
func Decide(obs *Observation, p Policy) *Decision {
	h := Triage(obs, p)
	d := &Decision{Health: h}

	if h.CrisisLevel == LevelBankrupt {
		d.Rationale = "chain is bankrupt; nothing to do"
		return d
	}

	for _, idx := range h.BrokenStores {
		d.Actions = append(d.Actions, Action{Kind: ActionFix, Store: idx, Reason: "machine broken"})
	}

	inDebt := h.CrisisLevel == LevelCritical
	budgets := make(map[int]decimal.Decimal)
	var candidates []restockCandidate
	for _, s := range obs.Status.Stores {
		budget := s.Cash
		if !inDebt {
			budget = budget.Sub(p.CashReserve)
		}
		budgets[s.Index] = budget

		for _, line := range s.Stock {
			trend := line.SKU == obs.Status.Trend
			target := p.RestockTarget
			if trend {
				target = max(p.TrendTarget, p.RestockTarget)
			}
			switch {
			case inDebt && line.Units > 0:
				continue
			case inDebt:
				target = p.RestockBelow
			case line.Units >= p.RestockBelow && !(trend && line.Units < target):
				continue
			}
			candidates = append(candidates, restockCandidate{store: s.Index, line: line, target: target, trend: trend})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].trend != candidates[j].trend {
			return candidates[i].trend
		}
		return candidates[i].line.Units < candidates[j].line.Units
	})

	restocks := 0
	for _, c := range candidates {
		if len(d.Actions) >= p.MaxActions {
			break
		}
		qty := c.target - c.line.Units
		price := c.line.RestockPrice
		if qty <= 0 || !price.IsPositive() {
			continue
		}
		budget := budgets[c.store]
		if !budget.IsPositive() {
			continue
		}
		affordable := int(budget.Div(price).Floor().IntPart())
		qty = min(qty, affordable)
		if qty <= 0 {
			continue
		}
		budgets[c.store] = budget.Sub(price.Mul(decimal.NewFromInt(int64(qty))))

		reason := fmt.Sprintf("%d units left", c.line.Units)
		if c.trend {
			reason = "trending, " + reason
		}
		d.Actions = append(d.Actions, Action{
			Kind:     ActionRestock,
			Store:    c.store,
			SKU:      c.line.SKU,
			Quantity: qty,
			Reason:   reason,
		})
		restocks++
	}

	if len(d.Actions) > p.MaxActions {
		d.Actions = d.Actions[:p.MaxActions]
	}
	d.Rationale = fmt.Sprintf("crisis=%s fixes=%d restocks=%d", h.CrisisLevel, len(h.BrokenStores), restocks)
	return d
}
