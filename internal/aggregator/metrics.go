package aggregator

import (
	"errors"
	"fmt"

	"barriometrics/server/internal/models"
)

// ErrInvalidMetric is returned when a requested metric name is not in the
// allow-list for the operation. The request fails before anything is computed.
var ErrInvalidMetric = errors.New("invalid metric")

// Snapshot metric names accepted by the analytics and rendering queries.
const (
	MetricMedianPriceM2   = "median_price_usd_m2"
	MetricAvgPriceM2      = "avg_price_usd_m2"
	MetricP25PriceM2      = "p25_price_usd_m2"
	MetricP75PriceM2      = "p75_price_usd_m2"
	MetricListingCount    = "listing_count"
	MetricAvgDaysOnMarket = "avg_days_on_market"
	MetricNewListings7d   = "new_listings_7d"
	MetricRemovedListings = "removed_listings_7d"
	MetricRentalYield     = "rental_yield_estimate"
)

var trendMetrics = map[string]bool{
	MetricMedianPriceM2:   true,
	MetricAvgPriceM2:      true,
	MetricP25PriceM2:      true,
	MetricP75PriceM2:      true,
	MetricListingCount:    true,
	MetricAvgDaysOnMarket: true,
	MetricNewListings7d:   true,
	MetricRemovedListings: true,
	MetricRentalYield:     true,
}

var rankingMetrics = map[string]bool{
	MetricMedianPriceM2:   true,
	MetricAvgPriceM2:      true,
	MetricListingCount:    true,
	MetricAvgDaysOnMarket: true,
	MetricRentalYield:     true,
}

// ChoroplethMetrics is the allow-list for map rendering.
var ChoroplethMetrics = map[string]bool{
	MetricMedianPriceM2:   true,
	MetricAvgPriceM2:      true,
	MetricListingCount:    true,
	MetricAvgDaysOnMarket: true,
	MetricRentalYield:     true,
	MetricP25PriceM2:      true,
	MetricP75PriceM2:      true,
}

func validateMetric(metric string, allowed map[string]bool) error {
	if !allowed[metric] {
		return fmt.Errorf("%w: %q", ErrInvalidMetric, metric)
	}
	return nil
}

// MetricValue extracts a named metric from a snapshot. Nil means the snapshot
// does not carry a value for it.
func MetricValue(snap *models.AreaSnapshot, metric string) *float64 {
	if snap == nil {
		return nil
	}
	switch metric {
	case MetricMedianPriceM2:
		return snap.MedianPriceUSDM2
	case MetricAvgPriceM2:
		return snap.AvgPriceUSDM2
	case MetricP25PriceM2:
		return snap.P25PriceUSDM2
	case MetricP75PriceM2:
		return snap.P75PriceUSDM2
	case MetricListingCount:
		v := float64(snap.ListingCount)
		return &v
	case MetricAvgDaysOnMarket:
		return snap.AvgDaysOnMarket
	case MetricNewListings7d:
		v := float64(snap.NewListings7d)
		return &v
	case MetricRemovedListings:
		v := float64(snap.RemovedListings7d)
		return &v
	case MetricRentalYield:
		return snap.RentalYieldEstimate
	default:
		return nil
	}
}
