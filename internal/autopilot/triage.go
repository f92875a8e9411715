package autopilot

// Crisis levels, worst first.
const (
	LevelBankrupt = "BANKRUPT"
	LevelCritical = "CRITICAL"
	LevelWarning  = "WARNING"
	LevelHealthy  = "HEALTHY"
)

// ChainHealth holds derived diagnostic signals computed from an Observation.
// Runs before Decide; deterministic and free.
type ChainHealth struct {
	BrokenStores []int            // store indexes with a broken machine
	Stockouts    map[int][]string // store index → SKUs at zero units
	LowStock     int              // shelf lines below the policy threshold
	TrendStocked bool             // some store has the trend on its shelves
	CrisisLevel  string
}

// Triage computes a ChainHealth from the observation's data.
func Triage(obs *Observation, p Policy) *ChainHealth {
	h := &ChainHealth{Stockouts: make(map[int][]string)}
	st := obs.Status

	for _, s := range st.Stores {
		if s.BrokenMachine {
			h.BrokenStores = append(h.BrokenStores, s.Index)
		}
		for _, line := range s.Stock {
			if line.Units == 0 {
				h.Stockouts[s.Index] = append(h.Stockouts[s.Index], line.SKU)
			}
			if line.Units < p.RestockBelow {
				h.LowStock++
			}
			if line.SKU == st.Trend && line.Units > 0 {
				h.TrendStocked = true
			}
		}
	}

	switch {
	case st.Bankrupt:
		h.CrisisLevel = LevelBankrupt
	case st.DebtState == "in_debt":
		h.CrisisLevel = LevelCritical
	case len(h.BrokenStores) > 0 || len(h.Stockouts) > 0:
		h.CrisisLevel = LevelWarning
	default:
		h.CrisisLevel = LevelHealthy
	}
	return h
}
