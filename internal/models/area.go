package models

import "github.com/paulmach/orb/geojson"

// Area is a named geographic subdivision (barrio) with a polygon boundary.
// Geometry is immutable reference data supplied by the caller; it must hold a
// GeoJSON Polygon or MultiPolygon to be renderable.
type Area struct {
	ID          int               `json:"id"`
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	ComunaID    int               `json:"comuna_id"`
	ComunaName  string            `json:"comuna_name"`
	Geometry    *geojson.Geometry `json:"geometry"`
	AreaKm2     *float64          `json:"area_km2"`
	CentroidLat *float64          `json:"centroid_lat"`
	CentroidLon *float64          `json:"centroid_lon"`
}

// CurrencyRate is the most recent reference exchange rate (buy/sell pair)
// resolved by the calling layer before the engine is invoked.
type CurrencyRate struct {
	RateType string   `json:"rate_type"`
	Buy      *float64 `json:"buy"`
	Sell     *float64 `json:"sell"`
	Source   string   `json:"source"`
}
