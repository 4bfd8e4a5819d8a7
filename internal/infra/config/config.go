package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	InputDir       string `env:"INPUT_DIR"        envDefault:"./compressed"`
	OutputDir      string `env:"OUTPUT_DIR"       envDefault:"./swings"`
	GroundTruthDir string `env:"GROUND_TRUTH_DIR" envDefault:"./data/segments"`

	Downsample       int     `env:"DOWNSAMPLE"         envDefault:"4"`
	Percentile       float64 `env:"PERCENTILE"         envDefault:"95"`
	MinSeparationSec float64 `env:"MIN_SEPARATION_SEC" envDefault:"20.0"`
	EdgeTrimPct      float64 `env:"EDGE_TRIM_PCT"      envDefault:"0.0258"`
	LeadInSec        float64 `env:"LEAD_IN_SEC"        envDefault:"10.0"`
	LeadOutSec       float64 `env:"LEAD_OUT_SEC"       envDefault:"10.0"`

	AnalysisWidth    int  `env:"ANALYSIS_WIDTH"     envDefault:"320"`
	FlowBlockSize    int  `env:"FLOW_BLOCK_SIZE"    envDefault:"16"`
	FlowSearchRadius int  `env:"FLOW_SEARCH_RADIUS" envDefault:"7"`
	WorkerCount      int  `env:"WORKER_COUNT"       envDefault:"0"`
	WriteThumbnails  bool `env:"WRITE_THUMBNAILS"   envDefault:"false"`

	CatalogDriver string `env:"CATALOG_DRIVER" envDefault:"sqlite"`
	CatalogPath   string `env:"CATALOG_PATH"   envDefault:"./data/metadata.db"`
	CatalogDSN    string `env:"CATALOG_DSN"`

	RabbitMQURL         string `env:"RABBITMQ_URL"`
	RabbitMQExchange    string `env:"RABBITMQ_EXCHANGE"     envDefault:"swinglab.video"`
	RabbitMQStatusQueue string `env:"RABBITMQ_STATUS_QUEUE" envDefault:"detection.status"`

	MinIOEndpoint     string `env:"MINIO_ENDPOINT"`
	MinIOAccessKey    string `env:"MINIO_ACCESS_KEY"`
	MinIOSecretKey    string `env:"MINIO_SECRET_KEY"`
	MinIOUseSSL       bool   `env:"MINIO_USE_SSL"        envDefault:"false"`
	MinIOExportBucket string `env:"MINIO_EXPORT_BUCKET"  envDefault:"exports"`

	MetricsPort    int    `env:"METRICS_PORT"     envDefault:"9090"`
	JaegerEndpoint string `env:"JAEGER_ENDPOINT"`
	LogLevel       string `env:"LOG_LEVEL"        envDefault:"info"`

	FFmpegPath  string `env:"FFMPEG_PATH"  envDefault:"ffmpeg"`
	FFprobePath string `env:"FFPROBE_PATH" envDefault:"ffprobe"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Downsample < 1 {
		return fmt.Errorf("DOWNSAMPLE must be at least 1, got %d", c.Downsample)
	}
	if c.Percentile < 0 || c.Percentile > 100 {
		return fmt.Errorf("PERCENTILE must be within 0..100, got %v", c.Percentile)
	}
	if c.MinSeparationSec < 0 {
		return fmt.Errorf("MIN_SEPARATION_SEC must not be negative, got %v", c.MinSeparationSec)
	}
	if c.EdgeTrimPct < 0 || c.EdgeTrimPct >= 0.5 {
		return fmt.Errorf("EDGE_TRIM_PCT must be within [0, 0.5), got %v", c.EdgeTrimPct)
	}
	if c.LeadInSec < 0 || c.LeadOutSec < 0 {
		return fmt.Errorf("lead offsets must not be negative")
	}
	return nil
}
