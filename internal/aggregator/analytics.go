package aggregator

import (
	"sort"

	"barriometrics/server/internal/models"
	"barriometrics/server/internal/stats"
)

// Net yield applies a flat 30% expense assumption on rent; no real expense
// data exists in the model.
const netYieldExpenseFactor = 0.7

// TrendPoint is one step of the city-wide price time-series.
type TrendPoint struct {
	Date         string  `json:"date"`
	PriceM2      float64 `json:"price_m2"`
	ListingCount int     `json:"listing_count"`
}

// PriceTrends builds the city-wide price-per-m2 series for an operation type
// by averaging area medians per snapshot date. With inflationAdjusted set,
// values are normalized to the most recent reference rate so that every
// observation is expressed in "today's" currency: a lower historical rate
// means the unit was worth more, so the adjusted price is higher.
func PriceTrends(store *SnapshotStore, operationType string, inflationAdjusted bool) []TrendPoint {
	type bucket struct {
		medianSum float64
		medianN   int
		listings  int
		rateSum   float64
		rateN     int
	}

	buckets := make(map[string]*bucket)
	for _, snap := range store.All() {
		if snap.OperationType != operationType || snap.PropertyType != "" {
			continue
		}
		b, ok := buckets[snap.SnapshotDate]
		if !ok {
			b = &bucket{}
			buckets[snap.SnapshotDate] = b
		}
		if snap.MedianPriceUSDM2 != nil {
			b.medianSum += *snap.MedianPriceUSDM2
			b.medianN++
		}
		b.listings += snap.ListingCount
		if snap.ReferenceRate != nil && *snap.ReferenceRate > 0 {
			b.rateSum += *snap.ReferenceRate
			b.rateN++
		}
	}

	dates := make([]string, 0, len(buckets))
	for date := range buckets {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	// Base the adjustment on the latest date that carries a rate
	latestRate := 0.0
	if inflationAdjusted {
		for i := len(dates) - 1; i >= 0; i-- {
			if b := buckets[dates[i]]; b.rateN > 0 {
				latestRate = b.rateSum / float64(b.rateN)
				break
			}
		}
	}

	points := make([]TrendPoint, 0, len(dates))
	for _, date := range dates {
		b := buckets[date]

		median := 0.0
		if b.medianN > 0 {
			median = b.medianSum / float64(b.medianN)
		}
		if inflationAdjusted && latestRate > 0 && b.rateN > 0 {
			rate := b.rateSum / float64(b.rateN)
			median *= rate / latestRate
		}

		points = append(points, TrendPoint{
			Date:         date,
			PriceM2:      median,
			ListingCount: b.listings,
		})
	}
	return points
}

// AreaTrendPoint is one step of a per-area metric time-series.
type AreaTrendPoint struct {
	Date          string   `json:"date"`
	OperationType string   `json:"operation_type"`
	PropertyType  string   `json:"property_type,omitempty"`
	Value         *float64 `json:"value"`
}

// AreaTrends returns the time-series of metric values for one area, every
// operation/property type combination interleaved in date order. The optional
// from/to bounds are inclusive ISO dates.
func AreaTrends(store *SnapshotStore, areaID int, metric, from, to string) ([]AreaTrendPoint, error) {
	if err := validateMetric(metric, trendMetrics); err != nil {
		return nil, err
	}

	var points []AreaTrendPoint
	for _, snap := range store.History(areaID) {
		if from != "" && snap.SnapshotDate < from {
			continue
		}
		if to != "" && snap.SnapshotDate > to {
			continue
		}
		snap := snap
		points = append(points, AreaTrendPoint{
			Date:          snap.SnapshotDate,
			OperationType: snap.OperationType,
			PropertyType:  snap.PropertyType,
			Value:         MetricValue(&snap, metric),
		})
	}
	return points, nil
}

// RankingEntry places one area in a metric ranking.
type RankingEntry struct {
	Rank         int     `json:"rank"`
	AreaID       int     `json:"area_id"`
	AreaName     string  `json:"area_name"`
	Slug         string  `json:"slug"`
	Metric       string  `json:"metric"`
	Value        float64 `json:"value"`
	ListingCount int     `json:"listing_count"`
}

// Ranking orders areas by the latest snapshot value of metric for an
// operation type. Areas without a value for the metric are left out. Order is
// "asc" or "desc" (default).
func Ranking(store *SnapshotStore, areas []models.Area, metric, operationType, order string) ([]RankingEntry, error) {
	if err := validateMetric(metric, rankingMetrics); err != nil {
		return nil, err
	}

	var entries []RankingEntry
	for _, area := range areas {
		snap, ok := store.Latest(area.ID, operationType, "")
		if !ok {
			continue
		}
		value := MetricValue(&snap, metric)
		if value == nil {
			continue
		}
		entries = append(entries, RankingEntry{
			AreaID:       area.ID,
			AreaName:     area.Name,
			Slug:         area.Slug,
			Metric:       metric,
			Value:        *value,
			ListingCount: snap.ListingCount,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if order == "asc" {
			return entries[i].Value < entries[j].Value
		}
		return entries[i].Value > entries[j].Value
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// RentalYield compares the latest sale and rent unit prices for one area.
type RentalYield struct {
	AreaID               int      `json:"area_id"`
	AreaName             string   `json:"area_name"`
	Slug                 string   `json:"slug"`
	MedianSalePriceUSDM2 *float64 `json:"median_sale_price_usd_m2"`
	MedianRentUSDM2      *float64 `json:"median_rent_usd_m2"`
	GrossRentalYield     *float64 `json:"gross_rental_yield"`
	NetRentalYield       *float64 `json:"net_rental_yield"`
}

// RentalYields derives gross and net rental yield per area from the latest
// sale and rent snapshots, sorted by gross yield descending.
func RentalYields(store *SnapshotStore, areas []models.Area) []RentalYield {
	var yields []RentalYield
	for _, area := range areas {
		entry := RentalYield{AreaID: area.ID, AreaName: area.Name, Slug: area.Slug}

		if snap, ok := store.Latest(area.ID, models.OperationSale, ""); ok {
			entry.MedianSalePriceUSDM2 = snap.MedianPriceUSDM2
		}
		if snap, ok := store.Latest(area.ID, models.OperationRent, ""); ok {
			entry.MedianRentUSDM2 = snap.MedianPriceUSDM2
		}

		if entry.MedianSalePriceUSDM2 != nil && entry.MedianRentUSDM2 != nil && *entry.MedianSalePriceUSDM2 > 0 {
			sale := *entry.MedianSalePriceUSDM2
			rent := *entry.MedianRentUSDM2
			gross := rent * 12 / sale * 100
			net := rent * 12 * netYieldExpenseFactor / sale * 100
			entry.GrossRentalYield = &gross
			entry.NetRentalYield = &net
		}

		yields = append(yields, entry)
	}

	sort.Slice(yields, func(i, j int) bool {
		gi, gj := 0.0, 0.0
		if yields[i].GrossRentalYield != nil {
			gi = *yields[i].GrossRentalYield
		}
		if yields[j].GrossRentalYield != nil {
			gj = *yields[j].GrossRentalYield
		}
		return gi > gj
	})
	return yields
}

// AttachYieldEstimates writes the gross yield onto each sale snapshot for
// snapshotDate once both the sale and rent snapshots of an area exist. Must
// run after group aggregation for the date has finished.
func AttachYieldEstimates(store *SnapshotStore, snapshotDate string) {
	for _, snap := range store.All() {
		if snap.SnapshotDate != snapshotDate || snap.OperationType != models.OperationSale || snap.PropertyType != "" {
			continue
		}
		rentSnap, ok := store.Get(SnapshotKey{
			AreaID:        snap.AreaID,
			Date:          snapshotDate,
			OperationType: models.OperationRent,
		})
		if !ok || rentSnap.MedianPriceUSDM2 == nil {
			continue
		}
		if snap.MedianPriceUSDM2 == nil || *snap.MedianPriceUSDM2 <= 0 {
			continue
		}

		yield := *rentSnap.MedianPriceUSDM2 * 12 / *snap.MedianPriceUSDM2 * 100
		snap.RentalYieldEstimate = &yield
		store.Upsert(snap)
	}
}

// Pulse summarizes market activity on the latest snapshot date.
type Pulse struct {
	ActiveListings   int      `json:"active_listings"`
	New7d            int      `json:"new_7d"`
	Removed7d        int      `json:"removed_7d"`
	AvgDaysOnMarket  *float64 `json:"avg_dom"`
	MedianPriceUSDM2 *float64 `json:"median_price_usd_m2"`
	AbsorptionRate   *float64 `json:"absorption_rate"`
	SnapshotDate     string   `json:"snapshot_date"`
}

// MarketPulse aggregates the latest sale snapshots into high-level activity
// metrics. Absorption rate is the share of current inventory removed in the
// trailing window.
func MarketPulse(store *SnapshotStore) Pulse {
	latest, ok := store.LatestDate()
	if !ok {
		return Pulse{}
	}

	pulse := Pulse{SnapshotDate: latest}
	domSum, domN := 0.0, 0
	medianSum, medianN := 0.0, 0

	for _, snap := range store.All() {
		if snap.SnapshotDate != latest || snap.OperationType != models.OperationSale || snap.PropertyType != "" {
			continue
		}
		pulse.ActiveListings += snap.ListingCount
		pulse.New7d += snap.NewListings7d
		pulse.Removed7d += snap.RemovedListings7d
		if snap.AvgDaysOnMarket != nil {
			domSum += *snap.AvgDaysOnMarket
			domN++
		}
		if snap.MedianPriceUSDM2 != nil {
			medianSum += *snap.MedianPriceUSDM2
			medianN++
		}
	}

	if domN > 0 {
		avg := domSum / float64(domN)
		pulse.AvgDaysOnMarket = &avg
	}
	if medianN > 0 {
		median := medianSum / float64(medianN)
		pulse.MedianPriceUSDM2 = &median
	}
	if pulse.ActiveListings > 0 && pulse.Removed7d > 0 {
		rate := float64(pulse.Removed7d) / float64(pulse.ActiveListings) * 100
		pulse.AbsorptionRate = &rate
	}
	return pulse
}

// PriceDistribution is a histogram payload over whole listing prices.
type PriceDistribution struct {
	stats.Histogram
	Summary stats.Summary `json:"summary"`
}

// ComputePriceDistribution buckets the prices of active listings, optionally
// restricted to one area, into binCount bins.
func ComputePriceDistribution(listings []models.ListingObservation, areaID *int, binCount int) PriceDistribution {
	var prices []float64
	for _, l := range listings {
		if !l.IsActive || l.PriceUSD == nil || *l.PriceUSD <= 0 {
			continue
		}
		if areaID != nil && l.AreaID != *areaID {
			continue
		}
		prices = append(prices, *l.PriceUSD)
	}

	return PriceDistribution{
		Histogram: stats.BuildHistogram(prices, binCount),
		Summary:   stats.Summarize(prices),
	}
}

// Opportunity is a listing priced below its area median.
type Opportunity struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	URL              string  `json:"url"`
	OperationType    string  `json:"operation_type"`
	PropertyType     string  `json:"property_type"`
	PriceUSD         float64 `json:"price_usd"`
	SurfaceTotalM2   float64 `json:"surface_total_m2"`
	PriceUSDM2       float64 `json:"price_usd_m2"`
	Rooms            *int    `json:"rooms"`
	Bedrooms         *int    `json:"bedrooms"`
	AreaID           int     `json:"area_id"`
	AreaName         string  `json:"area_name"`
	MedianPriceUSDM2 float64 `json:"median_price_usd_m2"`
	DiscountPct      float64 `json:"discount_pct"`
}

// OpportunityResult is the screened list plus summary fields.
type OpportunityResult struct {
	Items          []Opportunity `json:"items"`
	Total          int           `json:"total"`
	AvgDiscountPct *float64      `json:"avg_discount_pct"`
	TopArea        string        `json:"top_area,omitempty"`
}

// FindOpportunities screens active listings whose unit price sits below the
// area median times threshold (0.8 means at least 20% below), ordered by the
// deepest relative discount first.
func FindOpportunities(listings []models.ListingObservation, store *SnapshotStore, areas []models.Area, operationType string, threshold float64, limit int) OpportunityResult {
	names := make(map[int]string, len(areas))
	for _, a := range areas {
		names[a.ID] = a.Name
	}

	var items []Opportunity
	for _, l := range listings {
		if !l.IsActive || l.OperationType != operationType {
			continue
		}
		unitPrice := l.TotalUnitPrice()
		if unitPrice == nil {
			continue
		}
		snap, ok := store.Latest(l.AreaID, operationType, "")
		if !ok || snap.MedianPriceUSDM2 == nil || *snap.MedianPriceUSDM2 <= 0 {
			continue
		}
		median := *snap.MedianPriceUSDM2
		if *unitPrice >= median*threshold {
			continue
		}

		items = append(items, Opportunity{
			ID:               l.ID,
			Title:            l.Title,
			URL:              l.URL,
			OperationType:    l.OperationType,
			PropertyType:     l.PropertyType,
			PriceUSD:         *l.PriceUSD,
			SurfaceTotalM2:   *l.SurfaceTotalM2,
			PriceUSDM2:       *unitPrice,
			Rooms:            l.Rooms,
			Bedrooms:         l.Bedrooms,
			AreaID:           l.AreaID,
			AreaName:         names[l.AreaID],
			MedianPriceUSDM2: median,
			DiscountPct:      (1 - *unitPrice/median) * 100,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].PriceUSDM2/items[i].MedianPriceUSDM2 < items[j].PriceUSDM2/items[j].MedianPriceUSDM2
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	result := OpportunityResult{Items: items, Total: len(items)}
	if len(items) > 0 {
		sum := 0.0
		counts := make(map[string]int)
		for _, item := range items {
			sum += item.DiscountPct
			counts[item.AreaName]++
		}
		avg := sum / float64(len(items))
		result.AvgDiscountPct = &avg

		best := 0
		for name, n := range counts {
			if n > best || (n == best && name < result.TopArea) {
				best = n
				result.TopArea = name
			}
		}
	}
	return result
}

// ComparisonEntry is one area's latest snapshot for one operation type.
type ComparisonEntry struct {
	AreaName string              `json:"area_name"`
	Slug     string              `json:"slug"`
	Snapshot models.AreaSnapshot `json:"snapshot"`
}

// Compare returns the latest sale and rent snapshots side by side for the
// requested area slugs.
func Compare(store *SnapshotStore, areas []models.Area, slugs []string) []ComparisonEntry {
	requested := make(map[string]bool, len(slugs))
	for _, slug := range slugs {
		requested[slug] = true
	}

	var entries []ComparisonEntry
	for _, area := range areas {
		if !requested[area.Slug] {
			continue
		}
		for _, op := range []string{models.OperationSale, models.OperationRent} {
			if snap, ok := store.Latest(area.ID, op, ""); ok {
				entries = append(entries, ComparisonEntry{
					AreaName: area.Name,
					Slug:     area.Slug,
					Snapshot: snap,
				})
			}
		}
	}
	return entries
}
