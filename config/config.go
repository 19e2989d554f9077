package config

import "github.com/caarlos0/env/v6"

type Config struct {
	// Aggregation configuration
	Aggregation struct {
		// Trailing window for new/removed listing counters (in days)
		SnapshotWindowDays int `env:"SNAPSHOT_WINDOW_DAYS" envDefault:"7"`

		// Number of concurrent snapshot workers
		WorkerCount int `env:"AGGREGATION_WORKER_COUNT" envDefault:"2"`

		// Buffer size of the group queue
		QueueSize int `env:"AGGREGATION_QUEUE_SIZE" envDefault:"100"`
	}

	// Rendering configuration
	Rendering struct {
		// Synthetic heatmap points per square kilometer when falling back
		// to polygon fill
		HeatmapFillPointsPerKm2 float64 `env:"HEATMAP_FILL_POINTS_PER_KM2" envDefault:"60"`

		// Bounds on the per-area synthetic point count
		HeatmapMinFillPoints int `env:"HEATMAP_MIN_FILL_POINTS" envDefault:"30"`
		HeatmapMaxFillPoints int `env:"HEATMAP_MAX_FILL_POINTS" envDefault:"200"`

		// Seed for the deterministic polygon fill
		HeatmapFillSeed int64 `env:"HEATMAP_FILL_SEED" envDefault:"42"`

		// Default bin count for price histograms
		HistogramBins int `env:"HISTOGRAM_BINS" envDefault:"20"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
