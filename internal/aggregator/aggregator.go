package aggregator

import (
	"sort"
	"time"

	"barriometrics/server/internal/models"
	"barriometrics/server/internal/stats"
)

const dateLayout = "2006-01-02"

// Group is the unit of snapshot computation: every observed listing (active
// or not) for one (area, operation type) combination.
type Group struct {
	AreaID        int
	OperationType string
	Listings      []models.ListingObservation
}

// GroupListings partitions listings by (area, operation type). Inactive rows
// are kept in their group: they feed the removed-in-window counter.
func GroupListings(listings []models.ListingObservation) []Group {
	type groupKey struct {
		areaID        int
		operationType string
	}

	byKey := make(map[groupKey]*Group)
	var order []groupKey
	for _, l := range listings {
		key := groupKey{l.AreaID, l.OperationType}
		g, ok := byKey[key]
		if !ok {
			g = &Group{AreaID: l.AreaID, OperationType: l.OperationType}
			byKey[key] = g
			order = append(order, key)
		}
		g.Listings = append(g.Listings, l)
	}

	groups := make([]Group, 0, len(byKey))
	for _, key := range order {
		groups = append(groups, *byKey[key])
	}
	return groups
}

// ComputeSnapshot aggregates one group into an AreaSnapshot for snapshotDate.
// Returns nil when the group has no active listing with a positive price and
// covered area: a group with nothing to measure produces no row at all.
func ComputeSnapshot(group Group, snapshotDate time.Time, windowDays int, rate *models.CurrencyRate) *models.AreaSnapshot {
	var unitPrices []float64
	var daysOnMarket []float64

	windowStart := snapshotDate.AddDate(0, 0, -windowDays)
	newCount := 0
	removedCount := 0

	for _, l := range group.Listings {
		if l.IsActive {
			if !l.FirstSeenAt.Before(windowStart) {
				newCount++
			}
			if up := l.CoveredUnitPrice(); up != nil {
				unitPrices = append(unitPrices, *up)
				if l.DaysOnMarket != nil {
					daysOnMarket = append(daysOnMarket, float64(*l.DaysOnMarket))
				}
			}
		} else if !l.LastSeenAt.Before(windowStart) {
			removedCount++
		}
	}

	if len(unitPrices) == 0 {
		return nil
	}

	summary := stats.Summarize(unitPrices)

	snap := &models.AreaSnapshot{
		AreaID:            group.AreaID,
		SnapshotDate:      snapshotDate.Format(dateLayout),
		OperationType:     group.OperationType,
		ListingCount:      summary.Count,
		MedianPriceUSDM2:  summary.Median,
		AvgPriceUSDM2:     summary.Mean,
		P25PriceUSDM2:     summary.P25,
		P75PriceUSDM2:     summary.P75,
		NewListings7d:     newCount,
		RemovedListings7d: removedCount,
	}

	if len(daysOnMarket) > 0 {
		sum := 0.0
		for _, d := range daysOnMarket {
			sum += d
		}
		avg := sum / float64(len(daysOnMarket))
		snap.AvgDaysOnMarket = &avg
	}

	if rate != nil && rate.Sell != nil {
		snap.ReferenceRate = rate.Sell
	}

	return snap
}

// ComputeDailySnapshots aggregates every (area, operation type) group in
// listings for snapshotDate. Groups with no qualifying listings are skipped.
func ComputeDailySnapshots(listings []models.ListingObservation, snapshotDate time.Time, windowDays int, rate *models.CurrencyRate) []models.AreaSnapshot {
	var snapshots []models.AreaSnapshot
	for _, group := range GroupListings(listings) {
		if snap := ComputeSnapshot(group, snapshotDate, windowDays, rate); snap != nil {
			snapshots = append(snapshots, *snap)
		}
	}

	sort.Slice(snapshots, func(i, j int) bool {
		if snapshots[i].AreaID != snapshots[j].AreaID {
			return snapshots[i].AreaID < snapshots[j].AreaID
		}
		return snapshots[i].OperationType < snapshots[j].OperationType
	})
	return snapshots
}
