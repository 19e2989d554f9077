package maprender

import (
	"math"
	"sort"

	"barriometrics/server/internal/models"
)

// ClusterPoint aggregates the listings falling into one grid cell.
type ClusterPoint struct {
	Lat         float64  `json:"lat"`
	Lon         float64  `json:"lon"`
	Count       int      `json:"count"`
	AvgPriceUSD *float64 `json:"avg_price_usd"`
}

// Clusters buckets active listings with coordinates into a lat/lon grid whose
// cell size halves with every zoom level (180/2^zoom degrees). Each occupied
// cell becomes one point at the mean coordinate.
func (r *Renderer) Clusters(listings []models.ListingObservation, operationType string, zoom int) []ClusterPoint {
	cellSize := 180 / math.Pow(2, float64(zoom))

	type cell struct {
		latSum, lonSum float64
		priceSum       float64
		priced         int
		count          int
	}
	type cellKey struct{ row, col int }

	cells := make(map[cellKey]*cell)
	for _, l := range listings {
		if !l.IsActive || l.OperationType != operationType || !l.HasCoordinates() {
			continue
		}
		key := cellKey{
			row: int(math.Floor(*l.Latitude / cellSize)),
			col: int(math.Floor(*l.Longitude / cellSize)),
		}
		c, ok := cells[key]
		if !ok {
			c = &cell{}
			cells[key] = c
		}
		c.latSum += *l.Latitude
		c.lonSum += *l.Longitude
		c.count++
		if l.PriceUSD != nil && *l.PriceUSD > 0 {
			c.priceSum += *l.PriceUSD
			c.priced++
		}
	}

	clusters := make([]ClusterPoint, 0, len(cells))
	for _, c := range cells {
		point := ClusterPoint{
			Lat:   c.latSum / float64(c.count),
			Lon:   c.lonSum / float64(c.count),
			Count: c.count,
		}
		if c.priced > 0 {
			avg := c.priceSum / float64(c.priced)
			point.AvgPriceUSD = &avg
		}
		clusters = append(clusters, point)
	}

	// Biggest clusters first, coordinates as tie-breaker for stable output
	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].Count != clusters[j].Count {
			return clusters[i].Count > clusters[j].Count
		}
		if clusters[i].Lat != clusters[j].Lat {
			return clusters[i].Lat < clusters[j].Lat
		}
		return clusters[i].Lon < clusters[j].Lon
	})
	return clusters
}
