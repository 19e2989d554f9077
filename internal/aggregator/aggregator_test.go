package aggregator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barriometrics/server/internal/models"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func listing(areaID int, op string, price, covered float64, active bool, firstSeen, lastSeen time.Time) models.ListingObservation {
	return models.ListingObservation{
		AreaID:           areaID,
		OperationType:    op,
		PriceUSD:         fptr(price),
		SurfaceCoveredM2: fptr(covered),
		IsActive:         active,
		FirstSeenAt:      firstSeen,
		LastSeenAt:       lastSeen,
	}
}

func TestGroupListings(t *testing.T) {
	now := time.Now()
	listings := []models.ListingObservation{
		listing(1, models.OperationSale, 100000, 50, true, now, now),
		listing(1, models.OperationRent, 800, 40, true, now, now),
		listing(2, models.OperationSale, 200000, 80, true, now, now),
		listing(1, models.OperationSale, 150000, 60, false, now, now),
	}

	groups := GroupListings(listings)
	require.Len(t, groups, 3)

	assert.Equal(t, 1, groups[0].AreaID)
	assert.Equal(t, models.OperationSale, groups[0].OperationType)
	assert.Len(t, groups[0].Listings, 2, "inactive rows stay in their group")
	assert.Len(t, groups[1].Listings, 1)
	assert.Len(t, groups[2].Listings, 1)
}

func TestComputeSnapshot(t *testing.T) {
	date := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	old := date.AddDate(0, 0, -30)
	recent := date.AddDate(0, 0, -2)

	group := Group{
		AreaID:        1,
		OperationType: models.OperationSale,
		Listings: []models.ListingObservation{
			listing(1, models.OperationSale, 100000, 50, true, old, date),    // 2000/m2
			listing(1, models.OperationSale, 120000, 40, true, recent, date), // 3000/m2
			listing(1, models.OperationSale, 90000, 30, false, old, recent),  // removed in window
			listing(1, models.OperationSale, 80000, 20, false, old, old),     // removed long ago
		},
	}
	group.Listings[0].DaysOnMarket = iptr(30)
	group.Listings[1].DaysOnMarket = iptr(10)

	rate := &models.CurrencyRate{RateType: "blue", Sell: fptr(1050)}
	snap := ComputeSnapshot(group, date, 7, rate)
	require.NotNil(t, snap)

	assert.Equal(t, "2026-08-30", snap.SnapshotDate)
	assert.Equal(t, 2, snap.ListingCount)
	assert.Equal(t, 2500.0, *snap.MedianPriceUSDM2)
	assert.Equal(t, 2500.0, *snap.AvgPriceUSDM2)
	assert.Equal(t, 1, snap.NewListings7d)
	assert.Equal(t, 1, snap.RemovedListings7d)
	assert.Equal(t, 20.0, *snap.AvgDaysOnMarket)
	assert.Equal(t, 1050.0, *snap.ReferenceRate)
}

func TestComputeSnapshot_NoQualifyingListings(t *testing.T) {
	now := time.Now()
	group := Group{
		AreaID:        1,
		OperationType: models.OperationSale,
		Listings: []models.ListingObservation{
			// active but no covered surface
			{AreaID: 1, OperationType: models.OperationSale, PriceUSD: fptr(100000), IsActive: true, FirstSeenAt: now, LastSeenAt: now},
			listing(1, models.OperationSale, 90000, 30, false, now, now),
		},
	}

	assert.Nil(t, ComputeSnapshot(group, time.Now(), 7, nil))
}

func TestComputeDailySnapshots_Sorted(t *testing.T) {
	now := time.Now()
	listings := []models.ListingObservation{
		listing(2, models.OperationSale, 200000, 80, true, now, now),
		listing(1, models.OperationRent, 800, 40, true, now, now),
		listing(1, models.OperationSale, 100000, 50, true, now, now),
	}

	snaps := ComputeDailySnapshots(listings, now, 7, nil)
	require.Len(t, snaps, 3)
	assert.Equal(t, 1, snaps[0].AreaID)
	assert.Equal(t, models.OperationRent, snaps[0].OperationType)
	assert.Equal(t, models.OperationSale, snaps[1].OperationType)
	assert.Equal(t, 2, snaps[2].AreaID)
}

func TestSnapshotStore_UpsertReplaces(t *testing.T) {
	store := NewSnapshotStore()

	first := models.AreaSnapshot{AreaID: 1, SnapshotDate: "2026-08-30", OperationType: models.OperationSale, ListingCount: 5}
	store.Upsert(first)
	store.Upsert(models.AreaSnapshot{AreaID: 1, SnapshotDate: "2026-08-30", OperationType: models.OperationSale, ListingCount: 7})

	assert.Equal(t, 1, store.Len(), "same key replaces, never duplicates")
	snap, ok := store.Get(keyOf(first))
	require.True(t, ok)
	assert.Equal(t, 7, snap.ListingCount)
}

func TestSnapshotStore_Latest(t *testing.T) {
	store := NewSnapshotStore()
	store.Upsert(models.AreaSnapshot{AreaID: 1, SnapshotDate: "2026-08-28", OperationType: models.OperationSale, ListingCount: 3})
	store.Upsert(models.AreaSnapshot{AreaID: 1, SnapshotDate: "2026-08-30", OperationType: models.OperationSale, ListingCount: 5})
	store.Upsert(models.AreaSnapshot{AreaID: 1, SnapshotDate: "2026-08-30", OperationType: models.OperationRent, ListingCount: 2})

	snap, ok := store.Latest(1, models.OperationSale, "")
	require.True(t, ok)
	assert.Equal(t, "2026-08-30", snap.SnapshotDate)
	assert.Equal(t, 5, snap.ListingCount)

	_, ok = store.Latest(99, models.OperationSale, "")
	assert.False(t, ok)

	date, ok := store.LatestDate()
	require.True(t, ok)
	assert.Equal(t, "2026-08-30", date)
}

func TestSnapshotStore_HistorySorted(t *testing.T) {
	store := NewSnapshotStore()
	store.Upsert(models.AreaSnapshot{AreaID: 1, SnapshotDate: "2026-08-30", OperationType: models.OperationSale})
	store.Upsert(models.AreaSnapshot{AreaID: 1, SnapshotDate: "2026-08-28", OperationType: models.OperationSale})
	store.Upsert(models.AreaSnapshot{AreaID: 2, SnapshotDate: "2026-08-29", OperationType: models.OperationSale})

	history := store.History(1)
	require.Len(t, history, 2)
	assert.Equal(t, "2026-08-28", history[0].SnapshotDate)
	assert.Equal(t, "2026-08-30", history[1].SnapshotDate)
}
