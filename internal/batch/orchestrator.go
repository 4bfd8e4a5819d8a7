// Package batch runs the detection pipeline over a whole corpus: scan,
// idempotency check, bounded worker pool, result merge, catalog writes,
// optional status publishing and ground-truth evaluation.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/swinglab/swinglab-detection-service/internal/domain/entity"
	"github.com/swinglab/swinglab-detection-service/internal/domain/port"
	"github.com/swinglab/swinglab-detection-service/internal/evaluate"
	"github.com/swinglab/swinglab-detection-service/internal/infra/metrics"
)

// VideoProcessor runs one video through the detection pipeline. An error means
// the job failed; the processor is expected to have marked the job accordingly.
type VideoProcessor interface {
	Execute(ctx context.Context, job *entity.DetectionJob) error
}

type Config struct {
	InputDir       string
	OutputDir      string
	GroundTruthDir string
	// Workers is the pool size; zero or negative means runtime.NumCPU().
	Workers int
}

// Orchestrator fans a corpus of videos out over a worker pool and merges the
// per-video outcomes. Catalog and publisher are optional; nil disables them.
type Orchestrator struct {
	processor   VideoProcessor
	groundTruth port.GroundTruthSource
	catalog     port.CatalogRepository
	publisher   port.StatusPublisher
	logger      *zap.Logger
	cfg         Config
}

func NewOrchestrator(
	processor VideoProcessor,
	groundTruth port.GroundTruthSource,
	catalog port.CatalogRepository,
	publisher port.StatusPublisher,
	logger *zap.Logger,
	cfg Config,
) *Orchestrator {
	return &Orchestrator{
		processor:   processor,
		groundTruth: groundTruth,
		catalog:     catalog,
		publisher:   publisher,
		logger:      logger,
		cfg:         cfg,
	}
}

// Result is one batch run's merged outcome. Report is nil when no
// ground-truth directory was available.
type Result struct {
	Jobs   []*entity.DetectionJob
	Report *entity.BatchReport
}

// Run processes every video under the input directory. Cancelling ctx stops
// scheduling further videos; tasks already running complete.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	videos, err := ScanVideos(o.cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", o.cfg.InputDir, err)
	}
	if len(videos) == 0 {
		o.logger.Info("no videos found", zap.String("input_dir", o.cfg.InputDir))
		return &Result{}, nil
	}
	if err := os.MkdirAll(o.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	workers := o.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	o.logger.Info("starting worker pool",
		zap.Int("workers", workers),
		zap.Int("videos", len(videos)),
	)

	jobs := make(chan *entity.DetectionJob)
	// Buffered so a worker never blocks handing its result back.
	results := make(chan *entity.DetectionJob, len(videos))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go o.worker(ctx, i, jobs, results, &wg)
	}

	go func() {
		defer close(jobs)
		for _, path := range videos {
			select {
			case jobs <- entity.NewDetectionJob(path, entity.StemOf(path)):
			case <-ctx.Done():
				o.logger.Info("context cancelled, no further videos scheduled")
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// Only this goroutine touches the merged slice.
	done := make([]*entity.DetectionJob, 0, len(videos))
	for job := range results {
		done = append(done, job)
	}
	sort.Slice(done, func(i, j int) bool { return done[i].VideoPath < done[j].VideoPath })

	o.recordJobs(ctx, done)
	return &Result{Jobs: done, Report: o.evaluateJobs(ctx, done)}, nil
}

func (o *Orchestrator) worker(ctx context.Context, id int, jobs <-chan *entity.DetectionJob, results chan<- *entity.DetectionJob, wg *sync.WaitGroup) {
	defer wg.Done()
	log := o.logger.With(zap.Int("worker_id", id))
	log.Debug("worker started")

	for job := range jobs {
		o.runJob(ctx, job)
		results <- job
	}
}

func (o *Orchestrator) runJob(ctx context.Context, job *entity.DetectionJob) {
	log := o.logger.With(zap.String("video", job.Stem))

	exists, err := HasExistingClips(o.cfg.OutputDir, job.Stem)
	if err != nil {
		log.Warn("existing-clip check failed", zap.Error(err))
	}
	if exists {
		job.MarkSkipped()
		metrics.VideosProcessedTotal.WithLabelValues("skipped").Inc()
		log.Info("skipping video, found existing clips")
		return
	}

	if err := o.processor.Execute(ctx, job); err != nil && job.Status != entity.JobStatusFailed {
		job.MarkFailed(err.Error())
	}
}

// recordJobs persists outcomes after the pool drains: a catalog row per
// processed recording, a segment row per produced clip, and an optional
// status message per job. The clips are already on disk, so failures here
// are logged and never fatal.
func (o *Orchestrator) recordJobs(ctx context.Context, jobs []*entity.DetectionJob) {
	for _, job := range jobs {
		if o.catalog != nil && job.Status == entity.JobStatusDone {
			o.catalogJob(ctx, job)
		}
		if o.publisher != nil {
			o.publishStatus(ctx, job)
		}
	}
}

func (o *Orchestrator) catalogJob(ctx context.Context, job *entity.DetectionJob) {
	recID, err := o.catalog.UpsertRecording(ctx, filepath.Base(job.VideoPath))
	if err != nil {
		o.logger.Warn("catalog recording failed", zap.String("video", job.Stem), zap.Error(err))
		return
	}
	for _, clip := range job.Clips {
		seg := &entity.Segment{
			RecordingID: recID,
			// Stored relative to the data root, mirroring how the review
			// tooling references segment files.
			Filename: filepath.ToSlash(filepath.Join(filepath.Base(o.cfg.OutputDir), clip.Name)),
			StartSec: clip.Start,
			EndSec:   clip.End,
		}
		if err := o.catalog.InsertSegment(ctx, seg); err != nil {
			o.logger.Warn("catalog segment failed", zap.String("clip", clip.Name), zap.Error(err))
		}
	}
}

func (o *Orchestrator) publishStatus(ctx context.Context, job *entity.DetectionJob) {
	body, err := json.Marshal(entity.StatusMessageFromJob(job))
	if err != nil {
		o.logger.Warn("status message encode failed", zap.String("video", job.Stem), zap.Error(err))
		return
	}
	if err := o.publisher.PublishStatus(ctx, body); err != nil {
		o.logger.Warn("status publish failed", zap.String("video", job.Stem), zap.Error(err))
	}
}

// evaluateJobs classifies detected events against manual windows when a
// ground-truth directory is present. Purely diagnostic.
func (o *Orchestrator) evaluateJobs(ctx context.Context, jobs []*entity.DetectionJob) *entity.BatchReport {
	if o.groundTruth == nil || o.cfg.GroundTruthDir == "" {
		return nil
	}
	if _, err := os.Stat(o.cfg.GroundTruthDir); err != nil {
		o.logger.Debug("no ground-truth directory, skipping evaluation",
			zap.String("dir", o.cfg.GroundTruthDir))
		return nil
	}

	report := &entity.BatchReport{}
	for _, job := range jobs {
		if job.Status != entity.JobStatusDone {
			continue
		}
		windows, err := o.groundTruth.Windows(ctx, job.Stem)
		if err != nil {
			o.logger.Warn("ground-truth read failed", zap.String("video", job.Stem), zap.Error(err))
			continue
		}
		report.Add(job.Stem, evaluate.Classify(job.Events, windows))
	}
	return report
}
