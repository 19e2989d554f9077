package main

import (
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"barriometrics/server/config"
	"barriometrics/server/internal/aggregator"
	"barriometrics/server/internal/maprender"
	"barriometrics/server/internal/models"
	"barriometrics/server/internal/pipeline"
)

type report struct {
	SnapshotDate  string                       `json:"snapshot_date"`
	SnapshotCount int                          `json:"snapshot_count"`
	Pulse         aggregator.Pulse             `json:"market_pulse"`
	Trends        []aggregator.TrendPoint      `json:"price_trends"`
	Ranking       []aggregator.RankingEntry    `json:"ranking"`
	RentalYields  []aggregator.RentalYield     `json:"rental_yields"`
	Distribution  aggregator.PriceDistribution `json:"price_distribution"`
	Choropleth    json.RawMessage              `json:"choropleth"`
	Heatmap       maprender.Heatmap            `json:"heatmap"`
	Clusters      []maprender.ClusterPoint     `json:"clusters"`
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stderr)

	listingsPath := flag.String("listings", "listings.json", "Path to the listing observations JSON file")
	areasPath := flag.String("areas", "areas.json", "Path to the areas JSON file")
	rateSell := flag.Float64("rate-sell", 0, "Most recent reference sell rate (0 disables rate attachment)")
	dateStr := flag.String("date", time.Now().Format("2006-01-02"), "Snapshot date (YYYY-MM-DD)")
	operation := flag.String("operation", models.OperationSale, "Operation type to report on (sale or rent)")
	metric := flag.String("metric", aggregator.MetricMedianPriceM2, "Metric for the ranking and choropleth")
	zoom := flag.Int("zoom", 12, "Zoom level for cluster cells")
	outPath := flag.String("out", "", "Output path for the report (defaults to stdout)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	snapshotDate, err := time.Parse("2006-01-02", *dateStr)
	if err != nil {
		logger.WithError(err).Fatal("Invalid snapshot date")
	}

	var listings []models.ListingObservation
	if err := readJSON(*listingsPath, &listings); err != nil {
		logger.WithError(err).Fatal("Failed to load listings")
	}
	var areas []models.Area
	if err := readJSON(*areasPath, &areas); err != nil {
		logger.WithError(err).Fatal("Failed to load areas")
	}
	logger.WithFields(logrus.Fields{
		"listings": len(listings),
		"areas":    len(areas),
	}).Info("Loaded input data")

	var rate *models.CurrencyRate
	if *rateSell > 0 {
		rate = &models.CurrencyRate{RateType: "reference", Sell: rateSell}
	}

	store := aggregator.NewSnapshotStore()
	queue := pipeline.NewGroupQueue(cfg.Aggregation.QueueSize, logger)
	p := pipeline.NewPipeline(store, queue, cfg, logger, snapshotDate, rate)

	count, err := p.Run(listings)
	if err != nil {
		logger.WithError(err).Fatal("Aggregation failed")
	}
	logger.WithField("snapshots", count).Info("Aggregation finished")

	renderer := maprender.NewRenderer(store, logger)

	ranking, err := aggregator.Ranking(store, areas, *metric, *operation, "desc")
	if err != nil {
		logger.WithError(err).Fatal("Invalid ranking metric")
	}

	choropleth, err := renderer.Choropleth(areas, *metric, *operation)
	if err != nil {
		logger.WithError(err).Fatal("Invalid choropleth metric")
	}
	choroplethJSON, err := choropleth.MarshalJSON()
	if err != nil {
		logger.WithError(err).Fatal("Failed to encode choropleth")
	}

	heatmapOpts := maprender.HeatmapOptions{
		FillPointsPerKm2: cfg.Rendering.HeatmapFillPointsPerKm2,
		MinFillPoints:    cfg.Rendering.HeatmapMinFillPoints,
		MaxFillPoints:    cfg.Rendering.HeatmapMaxFillPoints,
		Seed:             cfg.Rendering.HeatmapFillSeed,
	}

	out := report{
		SnapshotDate:  *dateStr,
		SnapshotCount: count,
		Pulse:         aggregator.MarketPulse(store),
		Trends:        aggregator.PriceTrends(store, *operation, false),
		Ranking:       ranking,
		RentalYields:  aggregator.RentalYields(store, areas),
		Distribution:  aggregator.ComputePriceDistribution(listings, nil, cfg.Rendering.HistogramBins),
		Choropleth:    choroplethJSON,
		Heatmap:       renderer.RenderHeatmap(listings, areas, *operation, nil, heatmapOpts),
		Clusters:      renderer.Clusters(listings, *operation, *zoom),
	}

	if err := writeReport(*outPath, out); err != nil {
		logger.WithError(err).Fatal("Failed to write report")
	}
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func writeReport(path string, out report) error {
	encoder := json.NewEncoder(os.Stdout)
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		encoder = json.NewEncoder(f)
	}
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
