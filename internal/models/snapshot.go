package models

// AreaSnapshot is a derived, point-in-time aggregate for one
// (area, date, operation type, optional property type) tuple. It is created
// by the aggregator and never mutated afterwards except by a full
// recomputation for the same key.
type AreaSnapshot struct {
	AreaID              int      `json:"area_id"`
	SnapshotDate        string   `json:"snapshot_date"`
	OperationType       string   `json:"operation_type"`
	PropertyType        string   `json:"property_type,omitempty"`
	ListingCount        int      `json:"listing_count"`
	MedianPriceUSDM2    *float64 `json:"median_price_usd_m2"`
	AvgPriceUSDM2       *float64 `json:"avg_price_usd_m2"`
	P25PriceUSDM2       *float64 `json:"p25_price_usd_m2"`
	P75PriceUSDM2       *float64 `json:"p75_price_usd_m2"`
	AvgDaysOnMarket     *float64 `json:"avg_days_on_market"`
	NewListings7d       int      `json:"new_listings_7d"`
	RemovedListings7d   int      `json:"removed_listings_7d"`
	RentalYieldEstimate *float64 `json:"rental_yield_estimate"`
	ReferenceRate       *float64 `json:"reference_rate"`
}
