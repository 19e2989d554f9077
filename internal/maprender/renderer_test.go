package maprender

import (
	"io"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barriometrics/server/internal/aggregator"
	"barriometrics/server/internal/models"
)

func fptr(v float64) *float64 { return &v }

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func squareGeometry() *geojson.Geometry {
	polygon := orb.Polygon{
		{{0, 0}, {0, 10}, {10, 10}, {10, 0}, {0, 0}},
	}
	return geojson.NewGeometry(polygon)
}

func testRenderer() (*Renderer, *aggregator.SnapshotStore) {
	store := aggregator.NewSnapshotStore()
	return NewRenderer(store, quietLogger()), store
}

func TestNormalizeWeights(t *testing.T) {
	weights := NormalizeWeights([]*float64{fptr(1000), fptr(2000), fptr(3000)})
	require.Len(t, weights, 3)
	assert.Equal(t, 0.15, weights[0])
	assert.InDelta(t, 0.575, weights[1], 1e-9)
	assert.Equal(t, 1.0, weights[2])
}

func TestNormalizeWeights_DuplicatesShareRank(t *testing.T) {
	weights := NormalizeWeights([]*float64{fptr(1000), fptr(1000), fptr(2000)})
	assert.Equal(t, weights[0], weights[1])
	assert.Equal(t, 0.15, weights[0])
	assert.Equal(t, 1.0, weights[2])
}

func TestNormalizeWeights_SingleDistinctPrice(t *testing.T) {
	weights := NormalizeWeights([]*float64{fptr(1500), fptr(1500)})
	assert.Equal(t, []float64{0.55, 0.55}, weights)
}

func TestNormalizeWeights_MissingPrice(t *testing.T) {
	weights := NormalizeWeights([]*float64{fptr(1000), nil, fptr(2000)})
	assert.Equal(t, 0.5, weights[1])
}

func TestChoropleth(t *testing.T) {
	renderer, store := testRenderer()
	store.Upsert(models.AreaSnapshot{
		AreaID: 1, SnapshotDate: "2026-08-30", OperationType: models.OperationSale,
		ListingCount: 12, MedianPriceUSDM2: fptr(2100),
	})

	areas := []models.Area{
		{ID: 1, Name: "Palermo", Slug: "palermo", Geometry: squareGeometry()},
		{ID: 2, Name: "Belgrano", Slug: "belgrano", Geometry: squareGeometry()},
		{ID: 3, Name: "Nowhere", Slug: "nowhere"}, // no geometry
	}

	fc, err := renderer.Choropleth(areas, aggregator.MetricMedianPriceM2, models.OperationSale)
	require.NoError(t, err)
	require.Len(t, fc.Features, 2, "area without geometry is skipped")

	withSnap := fc.Features[0]
	assert.Equal(t, 1, withSnap.Properties["area_id"])
	assert.Equal(t, 2100.0, withSnap.Properties["value"])
	assert.Equal(t, "2026-08-30", withSnap.Properties["snapshot_date"])

	// No snapshot still renders, with a null value
	withoutSnap := fc.Features[1]
	assert.Equal(t, 2, withoutSnap.Properties["area_id"])
	assert.Nil(t, withoutSnap.Properties["value"])
}

func TestChoropleth_InvalidMetric(t *testing.T) {
	renderer, _ := testRenderer()
	_, err := renderer.Choropleth(nil, "price_per_window", models.OperationSale)
	assert.ErrorIs(t, err, aggregator.ErrInvalidMetric)
}

func TestRenderHeatmap_FromListings(t *testing.T) {
	renderer, _ := testRenderer()

	listings := []models.ListingObservation{
		{IsActive: true, OperationType: models.OperationSale,
			Latitude: fptr(-34.58), Longitude: fptr(-58.42),
			PriceUSD: fptr(100000), SurfaceTotalM2: fptr(50)},
		{IsActive: true, OperationType: models.OperationSale,
			Latitude: fptr(-34.60), Longitude: fptr(-58.44),
			PriceUSD: fptr(300000), SurfaceTotalM2: fptr(50)},
		{IsActive: true, OperationType: models.OperationRent,
			Latitude: fptr(-34.59), Longitude: fptr(-58.43)},
		{IsActive: true, OperationType: models.OperationSale}, // no coordinates
	}

	hm := renderer.RenderHeatmap(listings, nil, models.OperationSale, nil, DefaultHeatmapOptions())
	assert.Equal(t, DataSourceListings, hm.DataSource)
	require.Len(t, hm.Points, 2)
	assert.Equal(t, 0.15, hm.Points[0].Weight)
	assert.Equal(t, 1.0, hm.Points[1].Weight)
}

func TestRenderHeatmap_BboxFilter(t *testing.T) {
	renderer, _ := testRenderer()

	listings := []models.ListingObservation{
		{IsActive: true, OperationType: models.OperationSale,
			Latitude: fptr(1), Longitude: fptr(1), PriceUSD: fptr(100000), SurfaceTotalM2: fptr(50)},
		{IsActive: true, OperationType: models.OperationSale,
			Latitude: fptr(50), Longitude: fptr(50), PriceUSD: fptr(100000), SurfaceTotalM2: fptr(50)},
	}

	bbox := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 10}}
	hm := renderer.RenderHeatmap(listings, nil, models.OperationSale, &bbox, DefaultHeatmapOptions())
	require.Len(t, hm.Points, 1)
	assert.Equal(t, 1.0, hm.Points[0].Lat)
}

func TestRenderHeatmap_PolygonFillFallback(t *testing.T) {
	renderer, store := testRenderer()
	store.Upsert(models.AreaSnapshot{
		AreaID: 1, SnapshotDate: "2026-08-30", OperationType: models.OperationSale,
		MedianPriceUSDM2: fptr(2100),
	})

	areas := []models.Area{
		{ID: 1, Name: "Palermo", Slug: "palermo", Geometry: squareGeometry(), AreaKm2: fptr(1)},
	}

	hm := renderer.RenderHeatmap(nil, areas, models.OperationSale, nil, DefaultHeatmapOptions())
	assert.Equal(t, DataSourcePolygonFill, hm.DataSource)
	require.NotEmpty(t, hm.Points)

	// Single distinct price across all fill points
	for _, p := range hm.Points {
		assert.Equal(t, 0.55, p.Weight)
		assert.GreaterOrEqual(t, p.Lat, 0.0)
		assert.LessOrEqual(t, p.Lat, 10.0)
		assert.GreaterOrEqual(t, p.Lon, 0.0)
		assert.LessOrEqual(t, p.Lon, 10.0)
	}

	again := renderer.RenderHeatmap(nil, areas, models.OperationSale, nil, DefaultHeatmapOptions())
	assert.Equal(t, hm.Points, again.Points, "same seed, same fill")
}

func TestFillTarget_Clamped(t *testing.T) {
	renderer, _ := testRenderer()
	opts := DefaultHeatmapOptions()

	assert.Equal(t, 30, renderer.fillTarget(models.Area{AreaKm2: fptr(0.1)}, opts))
	assert.Equal(t, 120, renderer.fillTarget(models.Area{AreaKm2: fptr(2)}, opts))
	assert.Equal(t, 200, renderer.fillTarget(models.Area{AreaKm2: fptr(17)}, opts))
	assert.Equal(t, 30, renderer.fillTarget(models.Area{}, opts), "unknown size gets the floor")
}

func TestClusters(t *testing.T) {
	renderer, _ := testRenderer()

	listings := []models.ListingObservation{
		{IsActive: true, OperationType: models.OperationSale,
			Latitude: fptr(-34.58), Longitude: fptr(-58.42), PriceUSD: fptr(100000)},
		{IsActive: true, OperationType: models.OperationSale,
			Latitude: fptr(-34.581), Longitude: fptr(-58.421), PriceUSD: fptr(200000)},
		{IsActive: true, OperationType: models.OperationSale,
			Latitude: fptr(40.0), Longitude: fptr(3.0)},
		{IsActive: false, OperationType: models.OperationSale,
			Latitude: fptr(-34.58), Longitude: fptr(-58.42)},
	}

	clusters := renderer.Clusters(listings, models.OperationSale, 12)
	require.Len(t, clusters, 2)

	assert.Equal(t, 2, clusters[0].Count)
	assert.InDelta(t, -34.5805, clusters[0].Lat, 1e-9)
	require.NotNil(t, clusters[0].AvgPriceUSD)
	assert.Equal(t, 150000.0, *clusters[0].AvgPriceUSD)

	assert.Equal(t, 1, clusters[1].Count)
	assert.Nil(t, clusters[1].AvgPriceUSD)
}

func TestClusters_ZoomShrinksCells(t *testing.T) {
	renderer, _ := testRenderer()

	// 0.5 degrees apart: one cell at zoom 6 (2.8deg), two at zoom 12
	listings := []models.ListingObservation{
		{IsActive: true, OperationType: models.OperationSale, Latitude: fptr(10.1), Longitude: fptr(10.1)},
		{IsActive: true, OperationType: models.OperationSale, Latitude: fptr(10.6), Longitude: fptr(10.6)},
	}

	assert.Len(t, renderer.Clusters(listings, models.OperationSale, 6), 1)
	assert.Len(t, renderer.Clusters(listings, models.OperationSale, 12), 2)
}
