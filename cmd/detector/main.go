package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/swinglab/swinglab-detection-service/internal/batch"
	"github.com/swinglab/swinglab-detection-service/internal/detect"
	"github.com/swinglab/swinglab-detection-service/internal/domain/port"
	"github.com/swinglab/swinglab-detection-service/internal/infra/catalog"
	"github.com/swinglab/swinglab-detection-service/internal/infra/config"
	"github.com/swinglab/swinglab-detection-service/internal/infra/ffmpeg"
	"github.com/swinglab/swinglab-detection-service/internal/infra/flow"
	"github.com/swinglab/swinglab-detection-service/internal/infra/metrics"
	"github.com/swinglab/swinglab-detection-service/internal/infra/rabbitmq"
	"github.com/swinglab/swinglab-detection-service/internal/infra/segments"
	"github.com/swinglab/swinglab-detection-service/internal/infra/tracing"
	"github.com/swinglab/swinglab-detection-service/internal/usecase"
	"github.com/swinglab/swinglab-detection-service/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	log.Info("starting swinglab-detection-service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing (non-fatal if the collector is unavailable)
	if cfg.JaegerEndpoint != "" {
		tp, err := tracing.InitTracer(ctx, cfg.JaegerEndpoint)
		if err != nil {
			log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
		} else {
			defer tp.Shutdown(ctx)
		}
	}

	// Catalog (sqlite by default, CATALOG_DRIVER= disables)
	var cat port.CatalogRepository
	if cfg.CatalogDriver != "" {
		if cfg.CatalogDriver == catalog.DriverSQLite {
			fatalOnErr(os.MkdirAll(filepath.Dir(cfg.CatalogPath), 0o755), "create catalog dir")
		}
		c, err := catalog.New(catalog.Config{
			Driver: cfg.CatalogDriver,
			Path:   cfg.CatalogPath,
			DSN:    cfg.CatalogDSN,
		}, log)
		fatalOnErr(err, "open catalog")
		fatalOnErr(c.Init(ctx), "init catalog schema")
		defer c.Close()
		cat = c
	}

	// Status publisher (off unless RABBITMQ_URL is set)
	var pub port.StatusPublisher
	if cfg.RabbitMQURL != "" {
		p, err := rabbitmq.NewStatusPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange, cfg.RabbitMQStatusQueue, log)
		fatalOnErr(err, "connect to rabbitmq")
		defer p.Close()
		pub = p
	}

	// Infra adapters
	prober := ffmpeg.NewProber(cfg.FFprobePath, log)
	frames := ffmpeg.NewFrameReader(cfg.FFmpegPath, log)
	estimator := flow.NewBlockMatcher(cfg.FlowBlockSize, cfg.FlowSearchRadius)
	cutter := ffmpeg.NewCutter(cfg.FFmpegPath, log)
	thumbs := ffmpeg.NewThumbnailer(cfg.FFmpegPath, log)
	groundTruth := segments.NewSource(cfg.GroundTruthDir, log)

	// Use case
	uc := usecase.NewDetectImpactsUseCase(
		prober, frames, estimator, cutter, thumbs,
		log,
		usecase.DetectImpactsConfig{
			OutputDir:     cfg.OutputDir,
			Downsample:    cfg.Downsample,
			AnalysisWidth: cfg.AnalysisWidth,
			Params: detect.Params{
				Percentile:    cfg.Percentile,
				MinSeparation: cfg.MinSeparationSec,
				EdgeTrimPct:   cfg.EdgeTrimPct,
			},
			LeadInSec:       cfg.LeadInSec,
			LeadOutSec:      cfg.LeadOutSec,
			WriteThumbnails: cfg.WriteThumbnails,
		},
	)

	// Metrics server
	metricsSrv := metrics.StartServer(cfg.MetricsPort, log)

	orchestrator := batch.NewOrchestrator(uc, groundTruth, cat, pub, log, batch.Config{
		InputDir:       cfg.InputDir,
		OutputDir:      cfg.OutputDir,
		GroundTruthDir: cfg.GroundTruthDir,
		Workers:        cfg.WorkerCount,
	})

	// Graceful shutdown: first signal stops scheduling, running videos finish
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	result, runErr := orchestrator.Run(ctx)
	if runErr != nil {
		log.Error("batch run failed", zap.Error(runErr))
	} else if err := batch.WriteSummary(os.Stdout, result); err != nil {
		log.Warn("summary write failed", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metricsSrv.Shutdown(shutdownCtx)

	log.Info("swinglab-detection-service stopped")
	if runErr != nil {
		os.Exit(1)
	}
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
