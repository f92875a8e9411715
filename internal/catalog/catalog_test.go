package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseGoods_AreTheThreeStarterSKUs(t *testing.T) {
	base := BaseGoods()
	require.Len(t, base, 3)
	assert.Equal(t, SKUChips, base[0].SKU)
	assert.Equal(t, SKUSodas, base[1].SKU)
	assert.Equal(t, SKUToiletries, base[2].SKU)
	assert.Equal(t, "0.8", base[0].Wholesale.String())
	assert.Equal(t, 20, base[2].StartingUnits)
}

func TestEveryUnlockUpgradeNamesAKnownGood(t *testing.T) {
	for _, u := range StoreUpgrades() {
		if u.Effect != EffectUnlockSKU {
			continue
		}
		g, ok := LookupGood(u.SKU)
		require.True(t, ok, u.ID)
		assert.False(t, g.UnlockedByBase, u.ID)
		assert.True(t, u.Wholesale.IsPositive(), u.ID)
	}
}

func TestLookups(t *testing.T) {
	tier, ok := LookupTier(DefaultTier)
	require.True(t, ok)
	assert.Equal(t, "3000", tier.Cost.String())

	loc, ok := LookupLocation(DefaultLocation)
	require.True(t, ok)
	assert.Equal(t, 2.0, loc.TrafficMod)

	_, ok = LookupTier("huge")
	assert.False(t, ok)

	franchise, ok := LookupGlobalUpgrade("franchise")
	require.True(t, ok)
	assert.True(t, franchise.Repeatable)
	assert.Equal(t, EffectStoreSlot, franchise.Effect)

	coffee, ok := LookupStoreUpgrade("premiumCoffee")
	require.True(t, ok)
	assert.Equal(t, SKUCoffee, coffee.SKU)
}

func TestLocationIsOpen(t *testing.T) {
	downtown, _ := LookupLocation("downtown")
	assert.False(t, downtown.IsOpen(7))
	assert.True(t, downtown.IsOpen(8))
	assert.True(t, downtown.IsOpen(21))
	assert.False(t, downtown.IsOpen(22))

	airport, _ := LookupLocation("airport")
	for h := 0; h < 24; h++ {
		assert.True(t, airport.IsOpen(h))
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Lottery Ticket", DisplayName(SKULotteryTickets))
	assert.Equal(t, "mystery", DisplayName("mystery"))
}
