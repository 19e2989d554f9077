package maprender

import (
	"fmt"

	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"

	"barriometrics/server/internal/aggregator"
	"barriometrics/server/internal/models"
)

// Renderer turns snapshots, listings and area geometry into map payloads.
type Renderer struct {
	store  *aggregator.SnapshotStore
	logger *logrus.Logger
}

// NewRenderer creates a renderer reading from store.
func NewRenderer(store *aggregator.SnapshotStore, logger *logrus.Logger) *Renderer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Renderer{store: store, logger: logger}
}

// Choropleth builds a feature collection coloring each area by the latest
// snapshot value of metric. Areas without geometry are skipped; areas without
// a snapshot still render, with a null value.
func (r *Renderer) Choropleth(areas []models.Area, metric, operationType string) (*geojson.FeatureCollection, error) {
	if !aggregator.ChoroplethMetrics[metric] {
		return nil, fmt.Errorf("%w: %q", aggregator.ErrInvalidMetric, metric)
	}

	fc := geojson.NewFeatureCollection()
	for _, area := range areas {
		if area.Geometry == nil {
			r.logger.WithFields(logrus.Fields{
				"area_id": area.ID,
				"slug":    area.Slug,
			}).Warn("Area has no geometry, skipping choropleth feature")
			continue
		}

		feature := geojson.NewFeature(area.Geometry.Geometry())
		feature.Properties = geojson.Properties{
			"area_id":   area.ID,
			"area_name": area.Name,
			"slug":      area.Slug,
			"metric":    metric,
			"value":     nil,
		}

		if snap, ok := r.store.Latest(area.ID, operationType, ""); ok {
			if value := aggregator.MetricValue(&snap, metric); value != nil {
				feature.Properties["value"] = *value
			}
			feature.Properties["listing_count"] = snap.ListingCount
			feature.Properties["snapshot_date"] = snap.SnapshotDate
		}

		fc.Append(feature)
	}
	return fc, nil
}
