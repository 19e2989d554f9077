package maprender

import (
	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"

	"barriometrics/server/internal/geometry"
	"barriometrics/server/internal/models"
)

// DataSource tags which strategy produced a heatmap.
type DataSource string

const (
	// DataSourceListings means every point is an actual listing coordinate.
	DataSourceListings DataSource = "listings"
	// DataSourcePolygonFill means points were synthesized inside area polygons
	// because no listing had usable coordinates.
	DataSourcePolygonFill DataSource = "polygon_fill"
)

// HeatmapPoint is one weighted map point.
type HeatmapPoint struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Weight float64 `json:"weight"`
}

// Heatmap is a weighted point set plus the strategy that produced it.
type Heatmap struct {
	Points     []HeatmapPoint `json:"points"`
	DataSource DataSource     `json:"data_source"`
}

// HeatmapOptions controls the polygon-fill fallback.
type HeatmapOptions struct {
	// FillPointsPerKm2 scales the synthetic point count with area size.
	FillPointsPerKm2 float64
	// MinFillPoints and MaxFillPoints clamp the per-area target.
	MinFillPoints int
	MaxFillPoints int
	// Seed keeps repeated renders of the same area byte-identical.
	Seed int64
}

// DefaultHeatmapOptions matches the densities the map frontend was tuned for.
func DefaultHeatmapOptions() HeatmapOptions {
	return HeatmapOptions{
		FillPointsPerKm2: 60,
		MinFillPoints:    30,
		MaxFillPoints:    200,
		Seed:             42,
	}
}

// RenderHeatmap builds a weighted heatmap for an operation type. It prefers
// real listing coordinates, optionally restricted to bbox; when none qualify
// it fills each area polygon with synthetic points carrying the area's latest
// median unit price.
func (r *Renderer) RenderHeatmap(listings []models.ListingObservation, areas []models.Area, operationType string, bbox *orb.Bound, opts HeatmapOptions) Heatmap {
	var coords []orb.Point
	var prices []*float64

	for _, l := range listings {
		if !l.IsActive || l.OperationType != operationType || !l.HasCoordinates() {
			continue
		}
		point := orb.Point{*l.Longitude, *l.Latitude}
		if bbox != nil && !bbox.Contains(point) {
			continue
		}
		coords = append(coords, point)
		prices = append(prices, l.TotalUnitPrice())
	}

	if len(coords) > 0 {
		return Heatmap{
			Points:     weightedPoints(coords, prices),
			DataSource: DataSourceListings,
		}
	}

	r.logger.WithField("operation_type", operationType).
		Info("No listing coordinates available, falling back to polygon fill")
	return Heatmap{
		Points:     r.fillAreas(areas, operationType, opts),
		DataSource: DataSourcePolygonFill,
	}
}

func (r *Renderer) fillAreas(areas []models.Area, operationType string, opts HeatmapOptions) []HeatmapPoint {
	var coords []orb.Point
	var prices []*float64

	for _, area := range areas {
		if area.Geometry == nil {
			continue
		}
		rings := geometry.OuterRings(area.Geometry.Geometry())
		if len(rings) == 0 {
			r.logger.WithFields(logrus.Fields{
				"area_id": area.ID,
				"slug":    area.Slug,
			}).Warn("Area geometry has no usable rings, skipping heatmap fill")
			continue
		}

		var price *float64
		if snap, ok := r.store.Latest(area.ID, operationType, ""); ok {
			price = snap.MedianPriceUSDM2
		}

		for _, point := range geometry.FillPolygonWithPoints(rings, r.fillTarget(area, opts), opts.Seed) {
			coords = append(coords, point)
			prices = append(prices, price)
		}
	}
	return weightedPoints(coords, prices)
}

func (r *Renderer) fillTarget(area models.Area, opts HeatmapOptions) int {
	target := opts.MinFillPoints
	if area.AreaKm2 != nil {
		target = int(*area.AreaKm2 * opts.FillPointsPerKm2)
	}
	if target > opts.MaxFillPoints {
		target = opts.MaxFillPoints
	}
	if target < opts.MinFillPoints {
		target = opts.MinFillPoints
	}
	return target
}

func weightedPoints(coords []orb.Point, prices []*float64) []HeatmapPoint {
	weights := NormalizeWeights(prices)
	points := make([]HeatmapPoint, len(coords))
	for i, c := range coords {
		points[i] = HeatmapPoint{Lat: c.Lat(), Lon: c.Lon(), Weight: weights[i]}
	}
	return points
}
