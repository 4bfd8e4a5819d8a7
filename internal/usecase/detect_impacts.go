package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/swinglab/swinglab-detection-service/internal/detect"
	"github.com/swinglab/swinglab-detection-service/internal/domain/entity"
	"github.com/swinglab/swinglab-detection-service/internal/domain/port"
	"github.com/swinglab/swinglab-detection-service/internal/infra/metrics"
)

// DetectImpactsUseCase runs one video through the full pipeline: probe,
// motion series, event selection, clip windows.
type DetectImpactsUseCase struct {
	prober    port.VideoProber
	frames    port.FrameSource
	estimator port.FlowEstimator
	cutter    port.ClipCutter
	thumbs    port.Thumbnailer
	logger    *zap.Logger
	cfg       DetectImpactsConfig
}

type DetectImpactsConfig struct {
	OutputDir       string
	Downsample      int
	AnalysisWidth   int
	Params          detect.Params
	LeadInSec       float64
	LeadOutSec      float64
	WriteThumbnails bool
}

func NewDetectImpactsUseCase(
	prober port.VideoProber,
	frames port.FrameSource,
	estimator port.FlowEstimator,
	cutter port.ClipCutter,
	thumbs port.Thumbnailer,
	logger *zap.Logger,
	cfg DetectImpactsConfig,
) *DetectImpactsUseCase {
	return &DetectImpactsUseCase{
		prober:    prober,
		frames:    frames,
		estimator: estimator,
		cutter:    cutter,
		thumbs:    thumbs,
		logger:    logger,
		cfg:       cfg,
	}
}

func (uc *DetectImpactsUseCase) Execute(ctx context.Context, job *entity.DetectionJob) error {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "DetectImpactsUseCase.Execute")
	defer span.End()

	span.SetAttributes(
		attribute.String("video.path", job.VideoPath),
		attribute.String("video.stem", job.Stem),
	)

	log := uc.logger.With(zap.String("video", job.Stem))
	totalTimer := time.Now()

	job.MarkProcessing()
	metrics.ActiveWorkers.Inc()
	defer metrics.ActiveWorkers.Dec()

	// Probe. An unreadable file or a broken frame rate fails the video
	// before any decoding work starts.
	probeStart := time.Now()
	ctxProbe, spanProbe := tracer.Start(ctx, "probe_video")
	video, err := uc.prober.Probe(ctxProbe, job.VideoPath)
	spanProbe.End()
	if err != nil {
		return uc.fail(job, log, "probe", err)
	}
	metrics.StageDuration.WithLabelValues("probe").Observe(time.Since(probeStart).Seconds())
	log.Info("video probed",
		zap.Float64("duration_secs", video.Duration),
		zap.Float64("fps", video.FPS),
	)

	// Motion series over retained frames.
	motionStart := time.Now()
	ctxMotion, spanMotion := tracer.Start(ctx, "motion_series")
	series, err := uc.buildSeries(ctxMotion, video)
	spanMotion.End()
	if err != nil {
		return uc.fail(job, log, "motion_series", err)
	}
	metrics.StageDuration.WithLabelValues("motion").Observe(time.Since(motionStart).Seconds())
	metrics.FramesAnalyzedTotal.Add(float64(len(series)))

	// Event selection.
	_, spanSelect := tracer.Start(ctx, "select_events")
	events := detect.Impacts(series, video.Duration, uc.cfg.Params)
	spanSelect.End()
	metrics.EventsDetectedTotal.Add(float64(len(events)))
	log.Info("events selected",
		zap.Int("samples", len(series)),
		zap.Int("events", len(events)),
		zap.Float64s("event_times", eventTimes(events)),
	)

	// Clip windows. One failed cut skips that clip only.
	cutStart := time.Now()
	ctxCut, spanCut := tracer.Start(ctx, "cut_clips")
	clips := uc.cutClips(ctxCut, video, job.Stem, events, log)
	spanCut.End()
	metrics.StageDuration.WithLabelValues("cut").Observe(time.Since(cutStart).Seconds())

	job.MarkDone(events, clips, video.Duration)
	metrics.VideosProcessedTotal.WithLabelValues("done").Inc()
	metrics.StageDuration.WithLabelValues("total").Observe(time.Since(totalTimer).Seconds())

	log.Info("video processed",
		zap.Int("events", len(events)),
		zap.Int("clips", len(clips)),
	)
	return nil
}

func (uc *DetectImpactsUseCase) buildSeries(ctx context.Context, video *entity.Video) (entity.MotionSeries, error) {
	stream, err := uc.frames.Open(ctx, video, uc.cfg.AnalysisWidth, uc.cfg.Downsample)
	if err != nil {
		return nil, err
	}
	defer stream.Close()
	return BuildMotionSeries(stream, uc.estimator)
}

func (uc *DetectImpactsUseCase) cutClips(
	ctx context.Context,
	video *entity.Video,
	stem string,
	events []entity.Event,
	log *zap.Logger,
) []entity.Clip {
	clips := make([]entity.Clip, 0, len(events))
	for i, ev := range events {
		window := entity.NewWindow(ev, uc.cfg.LeadInSec, uc.cfg.LeadOutSec)
		name := window.ClipName(stem, i+1)
		dst := filepath.Join(uc.cfg.OutputDir, name)

		if err := uc.cutter.Cut(ctx, video.Path, dst, window); err != nil {
			metrics.ClipCutFailuresTotal.Inc()
			log.Error("clip cut failed",
				zap.String("clip", name),
				zap.Float64("event_time", ev.Time),
				zap.Error(err),
			)
			continue
		}
		clips = append(clips, entity.Clip{
			Name:  name,
			Start: window.Start,
			End:   window.Start + window.Duration,
			Event: ev.Time,
		})
		metrics.ClipsWrittenTotal.Inc()

		if uc.cfg.WriteThumbnails && uc.thumbs != nil {
			thumb := strings.TrimSuffix(dst, filepath.Ext(dst)) + ".jpg"
			if err := uc.thumbs.Thumbnail(ctx, video.Path, thumb, ev.Time); err != nil {
				log.Warn("thumbnail failed", zap.String("clip", name), zap.Error(err))
			}
		}
	}
	return clips
}

func (uc *DetectImpactsUseCase) fail(job *entity.DetectionJob, log *zap.Logger, stage string, err error) error {
	wrapped := fmt.Errorf("%s: %w", stage, err)
	job.MarkFailed(wrapped.Error())
	metrics.VideosProcessedTotal.WithLabelValues("failed").Inc()
	log.Error("video failed", zap.String("stage", stage), zap.Error(err))
	return wrapped
}

func eventTimes(events []entity.Event) []float64 {
	out := make([]float64, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Time)
	}
	return out
}
