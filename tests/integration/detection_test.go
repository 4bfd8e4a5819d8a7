package integration

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swinglab/swinglab-detection-service/internal/batch"
	"github.com/swinglab/swinglab-detection-service/internal/detect"
	"github.com/swinglab/swinglab-detection-service/internal/domain/entity"
	"github.com/swinglab/swinglab-detection-service/internal/infra/catalog"
	"github.com/swinglab/swinglab-detection-service/internal/infra/ffmpeg"
	"github.com/swinglab/swinglab-detection-service/internal/infra/flow"
	"github.com/swinglab/swinglab-detection-service/internal/infra/segments"
	"github.com/swinglab/swinglab-detection-service/internal/usecase"
	"github.com/swinglab/swinglab-detection-service/pkg/logger"
)

func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not installed", bin)
		}
	}
}

// makeStaticVideo renders a black 8fps clip: no motion at all, so the
// pipeline must come back with zero events.
func makeStaticVideo(t *testing.T, path string, seconds int) {
	t.Helper()
	cmd := exec.Command("ffmpeg", "-y",
		"-f", "lavfi", "-i", "color=c=black:s=128x128:r=8",
		"-t", strconv.Itoa(seconds),
		"-c:v", "libx264", "-pix_fmt", "yuv420p",
		path,
	)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
}

func TestDetectionEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	skipIfNoFFmpeg(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	tmp := t.TempDir()
	inputDir := filepath.Join(tmp, "compressed")
	outputDir := filepath.Join(tmp, "swings")
	gtDir := filepath.Join(tmp, "segments")
	require.NoError(t, os.MkdirAll(inputDir, 0o755))
	makeStaticVideo(t, filepath.Join(inputDir, "static.mp4"), 4)

	log, err := logger.New("debug")
	require.NoError(t, err)

	cat, err := catalog.New(catalog.Config{
		Driver: catalog.DriverSQLite,
		Path:   filepath.Join(tmp, "metadata.db"),
	}, log)
	require.NoError(t, err)
	defer cat.Close()
	require.NoError(t, cat.Init(ctx))

	uc := usecase.NewDetectImpactsUseCase(
		ffmpeg.NewProber("ffprobe", log),
		ffmpeg.NewFrameReader("ffmpeg", log),
		flow.NewBlockMatcher(16, 7),
		ffmpeg.NewCutter("ffmpeg", log),
		ffmpeg.NewThumbnailer("ffmpeg", log),
		log,
		usecase.DetectImpactsConfig{
			OutputDir:     outputDir,
			Downsample:    1,
			AnalysisWidth: 64,
			Params:        detect.Params{Percentile: 95, MinSeparation: 20, EdgeTrimPct: 0.0258},
			LeadInSec:     10,
			LeadOutSec:    10,
		},
	)

	o := batch.NewOrchestrator(uc, segments.NewSource(gtDir, log), cat, nil, log, batch.Config{
		InputDir:       inputDir,
		OutputDir:      outputDir,
		GroundTruthDir: gtDir,
		Workers:        1,
	})

	result, err := o.Run(ctx)
	require.NoError(t, err)
	require.Len(t, result.Jobs, 1)

	job := result.Jobs[0]
	assert.Equal(t, entity.JobStatusDone, job.Status)
	assert.Empty(t, job.Events)
	assert.Empty(t, job.Clips)
	assert.InDelta(t, 4.0, job.Duration, 0.3)

	// Zero events means an empty output dir.
	entries, err := os.ReadDir(outputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// The recording is catalogued even without segments.
	rec, err := cat.FindRecording(ctx, "static.mp4")
	require.NoError(t, err)
	require.NotNil(t, rec)

	// No ground-truth directory on disk, so no evaluation block.
	assert.Nil(t, result.Report)
}
