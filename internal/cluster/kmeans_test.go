package cluster

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trimline/seasonplan/internal/models"
)

func catalogFixture() []models.StoreProfile {
	var stores []models.StoreProfile
	// Three well-separated behavioral groups.
	for i := 0; i < 4; i++ {
		stores = append(stores, models.StoreProfile{
			ID: fmt.Sprintf("flagship-%d", i), SizeSqFt: 22000 + float64(i*300),
			IncomeTier: models.IncomeHigh, Region: "northeast", Format: "flagship",
			AvgWeeklySales: 900 + float64(i*20),
		})
	}
	for i := 0; i < 4; i++ {
		stores = append(stores, models.StoreProfile{
			ID: fmt.Sprintf("mall-%d", i), SizeSqFt: 9000 + float64(i*200),
			IncomeTier: models.IncomeMedium, Region: "midwest", Format: "mall",
			AvgWeeklySales: 420 + float64(i*15),
		})
	}
	for i := 0; i < 4; i++ {
		stores = append(stores, models.StoreProfile{
			ID: fmt.Sprintf("outlet-%d", i), SizeSqFt: 3500 + float64(i*100),
			IncomeTier: models.IncomeLow, Region: "south", Format: "outlet",
			AvgWeeklySales: 130 + float64(i*10),
		})
	}
	return stores
}

func TestAssignSeparatedGroups(t *testing.T) {
	seg := NewSegmenter(3)
	assigns, err := seg.Assign(catalogFixture())
	require.NoError(t, err)
	require.Len(t, assigns, 12)

	byStore := map[string]models.ClusterAssignment{}
	for _, a := range assigns {
		byStore[a.StoreID] = a
	}

	// Every store in a group should land in the same cluster.
	for _, prefix := range []string{"flagship", "mall", "outlet"} {
		first := byStore[prefix+"-0"]
		for i := 1; i < 4; i++ {
			got := byStore[fmt.Sprintf("%s-%d", prefix, i)]
			assert.Equal(t, first.ClusterID, got.ClusterID, "store group %s split across clusters", prefix)
		}
	}

	// Labels follow sales rank, not cluster id.
	assert.Equal(t, "Premium", byStore["flagship-0"].TierLabel)
	assert.Equal(t, "Mainline", byStore["mall-0"].TierLabel)
	assert.Equal(t, "Value", byStore["outlet-0"].TierLabel)
}

func TestAssignCachesByCatalog(t *testing.T) {
	seg := NewSegmenter(3)
	stores := catalogFixture()
	first, err := seg.Assign(stores)
	require.NoError(t, err)
	second, err := seg.Assign(stores)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// A changed attribute invalidates the cache.
	stores[0].AvgWeeklySales += 500
	third, err := seg.Assign(stores)
	require.NoError(t, err)
	require.Len(t, third, 12)
}

func TestAssignTooFewStores(t *testing.T) {
	seg := NewSegmenter(5)
	_, err := seg.Assign(catalogFixture()[:3])
	assert.ErrorIs(t, err, ErrTooFewStores)
}

func TestAssignEveryStoreExactlyOnce(t *testing.T) {
	assigns, err := NewSegmenter(3).Assign(catalogFixture())
	require.NoError(t, err)
	seen := map[string]bool{}
	for _, a := range assigns {
		assert.False(t, seen[a.StoreID], "store %s assigned twice", a.StoreID)
		seen[a.StoreID] = true
		assert.GreaterOrEqual(t, a.ClusterID, 0)
		assert.Less(t, a.ClusterID, 3)
	}
	assert.Len(t, seen, 12)
}
