package autopilot

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/storefront/internal/api"
	"github.com/talgya/storefront/internal/config"
	"github.com/talgya/storefront/internal/engine"
	"github.com/talgya/storefront/internal/entropy"
)

func line(sku string, units int, price string) StockInfo {
	return StockInfo{SKU: sku, Units: units, RestockPrice: decimal.RequireFromString(price)}
}

func observation(stores ...StoreInfo) *Observation {
	return &Observation{Status: ChainStatus{DebtState: "solvent", Stores: stores}}
}

func TestDecide_Bankrupt(t *testing.T) {
	obs := observation(StoreInfo{Cash: decimal.NewFromInt(100), Stock: []StockInfo{line("chips", 0, "1")}})
	obs.Status.Bankrupt = true

	d := Decide(obs, DefaultPolicy())
	assert.Empty(t, d.Actions)
	assert.Equal(t, LevelBankrupt, d.Health.CrisisLevel)
}

func TestDecide_FixesFirst(t *testing.T) {
	obs := observation(
		StoreInfo{Index: 0, Cash: decimal.NewFromInt(1000), Stock: []StockInfo{line("chips", 2, "1")}},
		StoreInfo{Index: 1, Cash: decimal.NewFromInt(1000), BrokenMachine: true, Stock: []StockInfo{line("chips", 50, "1")}},
	)

	d := Decide(obs, DefaultPolicy())
	require.Len(t, d.Actions, 2)
	assert.Equal(t, Action{Kind: ActionFix, Store: 1, Reason: "machine broken"}, d.Actions[0])
	assert.Equal(t, ActionRestock, d.Actions[1].Kind)
	assert.Equal(t, 38, d.Actions[1].Quantity)
	assert.Equal(t, LevelWarning, d.Health.CrisisLevel)
}

func TestDecide_HealthyChainDoesNothing(t *testing.T) {
	obs := observation(StoreInfo{Cash: decimal.NewFromInt(1000), Stock: []StockInfo{line("chips", 30, "1")}})

	d := Decide(obs, DefaultPolicy())
	assert.Empty(t, d.Actions)
	assert.Equal(t, LevelHealthy, d.Health.CrisisLevel)
}

func TestDecide_BudgetKeepsReserve(t *testing.T) {
	obs := observation(StoreInfo{
		Cash:  decimal.NewFromInt(230),
		Stock: []StockInfo{line("chips", 1, "2"), line("sodas", 5, "2")},
	})

	d := Decide(obs, DefaultPolicy())
	require.Len(t, d.Actions, 1, "30 over the reserve buys 15 units of the emptiest shelf")
	assert.Equal(t, "chips", d.Actions[0].SKU)
	assert.Equal(t, 15, d.Actions[0].Quantity)
}

func TestDecide_InDebtRefillsOnlyEmptyShelves(t *testing.T) {
	obs := observation(StoreInfo{
		Cash:  decimal.NewFromInt(50),
		Stock: []StockInfo{line("chips", 0, "1"), line("sodas", 5, "1")},
	})
	obs.Status.DebtState = "in_debt"

	d := Decide(obs, DefaultPolicy())
	assert.Equal(t, LevelCritical, d.Health.CrisisLevel)
	require.Len(t, d.Actions, 1)
	assert.Equal(t, "chips", d.Actions[0].SKU)
	assert.Equal(t, 10, d.Actions[0].Quantity)
}

func TestDecide_TrendFirst(t *testing.T) {
	obs := observation(StoreInfo{
		Cash:  decimal.NewFromInt(10000),
		Stock: []StockInfo{line("chips", 2, "1"), line("sodas", 30, "1")},
	})
	obs.Status.Trend = "sodas"

	d := Decide(obs, DefaultPolicy())
	require.Len(t, d.Actions, 2)
	assert.Equal(t, "sodas", d.Actions[0].SKU)
	assert.Equal(t, 50, d.Actions[0].Quantity)
	assert.Contains(t, d.Actions[0].Reason, "trending")
	assert.Equal(t, "chips", d.Actions[1].SKU)
	assert.True(t, d.Health.TrendStocked)
}

func TestDecide_MaxActions(t *testing.T) {
	var stock []StockInfo
	for _, sku := range []string{"a", "b", "c", "d", "e"} {
		stock = append(stock, line(sku, 0, "1"))
	}
	obs := observation(StoreInfo{Cash: decimal.NewFromInt(10000), BrokenMachine: true, Stock: stock})
	p := DefaultPolicy()
	p.MaxActions = 3

	d := Decide(obs, p)
	require.Len(t, d.Actions, 3)
	assert.Equal(t, ActionFix, d.Actions[0].Kind)
	assert.Len(t, d.Health.Stockouts[0], 5)
}

func TestDecide_SkipsUnpricedLines(t *testing.T) {
	obs := observation(StoreInfo{Cash: decimal.NewFromInt(1000), Stock: []StockInfo{line("chips", 0, "0")}})

	assert.Empty(t, Decide(obs, DefaultPolicy()).Actions)
}

func TestMemory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	assert.Empty(t, LoadMemory(path).Records)

	m := &CycleMemory{}
	for i := 0; i < maxRecords+5; i++ {
		m.Record(CycleRecord{Time: uint64(i), Planned: 2, Accepted: 1})
	}
	require.Len(t, m.Records, maxRecords)
	assert.Equal(t, uint64(5), m.Records[0].Time)
	assert.Equal(t, 0.5, m.AcceptRate())

	require.NoError(t, m.Save(path))
	loaded := LoadMemory(path)
	assert.Equal(t, m.Records, loaded.Records)

	assert.Zero(t, (&CycleMemory{}).AcceptRate())
}

func TestRunCycle_AgainstLiveAPI(t *testing.T) {
	world := engine.NewWorld(config.Default(), entropy.NewSequence(0.99))
	srv := &api.Server{World: world, AdminKey: "k"}
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	// Four open hours of customers empty the last shelf.
	for i := 0; i < 11; i++ {
		world.AdvanceHour()
	}
	require.Equal(t, 0, world.Snapshot().Stores[0].Stock[2].Units)

	rec, err := RunCycle(context.Background(), NewObserver(ts.URL), NewActor(ts.URL, "k"), DefaultPolicy())
	require.NoError(t, err)

	assert.Equal(t, uint64(11), rec.Time)
	assert.Equal(t, LevelWarning, rec.CrisisLevel)
	assert.Equal(t, 1, rec.Planned)
	assert.Equal(t, 1, rec.Accepted)
	assert.Equal(t, 40, world.Snapshot().Stores[0].Stock[2].Units)
}

func TestRunCycle_BadKeyCountsNothing(t *testing.T) {
	world := engine.NewWorld(config.Default(), entropy.NewSequence(0.99))
	srv := &api.Server{World: world, AdminKey: "k"}
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	for i := 0; i < 11; i++ {
		world.AdvanceHour()
	}

	rec, err := RunCycle(context.Background(), NewObserver(ts.URL), NewActor(ts.URL, "wrong"), DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Planned)
	assert.Zero(t, rec.Accepted)
}

func TestObserve_Unreachable(t *testing.T) {
	_, err := NewObserver("http://127.0.0.1:1").Observe(context.Background())
	assert.Error(t, err)
}
