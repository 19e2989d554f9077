package models

import "time"

// Operation types a listing can advertise.
const (
	OperationSale = "sale"
	OperationRent = "rent"
)

// ListingObservation is one property listing as observed at ingestion time.
// Rows are created by the ingestion collaborator and are read-only to the
// engine; prices are already normalized to the reference currency (USD).
type ListingObservation struct {
	ID               string    `json:"id"`
	Source           string    `json:"source"`
	URL              string    `json:"url"`
	Title            string    `json:"title"`
	OperationType    string    `json:"operation_type"`
	PropertyType     string    `json:"property_type"`
	PriceUSD         *float64  `json:"price_usd"`
	SurfaceTotalM2   *float64  `json:"surface_total_m2"`
	SurfaceCoveredM2 *float64  `json:"surface_covered_m2"`
	Rooms            *int      `json:"rooms"`
	Bedrooms         *int      `json:"bedrooms"`
	Latitude         *float64  `json:"latitude"`
	Longitude        *float64  `json:"longitude"`
	AreaID           int       `json:"area_id"`
	IsActive         bool      `json:"is_active"`
	DaysOnMarket     *int      `json:"days_on_market"`
	FirstSeenAt      time.Time `json:"first_seen_at"`
	LastSeenAt       time.Time `json:"last_seen_at"`
}

// CoveredUnitPrice returns price per covered square meter, the common
// currency for cross-listing comparison in snapshots.
func (l *ListingObservation) CoveredUnitPrice() *float64 {
	if l.PriceUSD == nil || *l.PriceUSD <= 0 {
		return nil
	}
	if l.SurfaceCoveredM2 == nil || *l.SurfaceCoveredM2 <= 0 {
		return nil
	}
	v := *l.PriceUSD / *l.SurfaceCoveredM2
	return &v
}

// TotalUnitPrice returns price per total square meter, used for listing-level
// map weighting and opportunity screening.
func (l *ListingObservation) TotalUnitPrice() *float64 {
	if l.PriceUSD == nil || *l.PriceUSD <= 0 {
		return nil
	}
	if l.SurfaceTotalM2 == nil || *l.SurfaceTotalM2 <= 0 {
		return nil
	}
	v := *l.PriceUSD / *l.SurfaceTotalM2
	return &v
}

// HasCoordinates reports whether the listing carries a usable geographic point.
func (l *ListingObservation) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}
