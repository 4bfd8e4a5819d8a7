package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/swinglab/swinglab-detection-service/internal/domain/entity"
)

// fakeProcessor marks each job done with one event at 30s and writes the
// corresponding clip file, so rerun skip checks see real output.
type fakeProcessor struct {
	mu        sync.Mutex
	executed  []string
	failStems map[string]bool
	outputDir string
}

func (p *fakeProcessor) Execute(ctx context.Context, job *entity.DetectionJob) error {
	p.mu.Lock()
	p.executed = append(p.executed, job.Stem)
	p.mu.Unlock()

	if p.failStems[job.Stem] {
		job.MarkFailed("motion_series: exit status 1")
		return errors.New("motion_series: exit status 1")
	}

	ev := entity.Event{Time: 30}
	w := entity.NewWindow(ev, 10, 10)
	name := w.ClipName(job.Stem, 1)
	if err := os.WriteFile(filepath.Join(p.outputDir, name), []byte("clip"), 0o644); err != nil {
		return err
	}
	job.MarkDone(
		[]entity.Event{ev},
		[]entity.Clip{{Name: name, Start: w.Start, End: w.Start + w.Duration, Event: ev.Time}},
		60,
	)
	return nil
}

func (p *fakeProcessor) executedStems() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.executed...)
}

type fakeCatalog struct {
	mu         sync.Mutex
	recordings []string
	segments   []*entity.Segment
}

func (c *fakeCatalog) Init(ctx context.Context) error { return nil }

func (c *fakeCatalog) UpsertRecording(ctx context.Context, filename string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recordings = append(c.recordings, filename)
	return int64(len(c.recordings)), nil
}

func (c *fakeCatalog) FindRecording(ctx context.Context, filename string) (*entity.Recording, error) {
	return nil, nil
}

func (c *fakeCatalog) InsertSegment(ctx context.Context, seg *entity.Segment) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.segments = append(c.segments, seg)
	return nil
}

func (c *fakeCatalog) ListSegments(ctx context.Context, importDate string) ([]entity.Segment, error) {
	return nil, nil
}

func (c *fakeCatalog) Close() error { return nil }

type fakePublisher struct {
	mu       sync.Mutex
	messages [][]byte
}

func (p *fakePublisher) PublishStatus(ctx context.Context, msg []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

type fakeGroundTruth struct {
	windows map[string][]entity.ManualWindow
}

func (g *fakeGroundTruth) Windows(ctx context.Context, stem string) ([]entity.ManualWindow, error) {
	return g.windows[stem], nil
}

func corpusDirs(t *testing.T, stems ...string) (string, string) {
	t.Helper()
	tmp := t.TempDir()
	input := filepath.Join(tmp, "compressed")
	output := filepath.Join(tmp, "swings")
	for _, stem := range stems {
		touch(t, filepath.Join(input, stem+".mp4"))
	}
	return input, output
}

func statuses(jobs []*entity.DetectionJob) map[string]entity.JobStatus {
	out := make(map[string]entity.JobStatus, len(jobs))
	for _, job := range jobs {
		out[job.Stem] = job.Status
	}
	return out
}

func TestRunProcessesCorpus(t *testing.T) {
	input, output := corpusDirs(t, "a", "b", "c")
	proc := &fakeProcessor{outputDir: output}
	o := NewOrchestrator(proc, nil, nil, nil, zap.NewNop(), Config{
		InputDir:  input,
		OutputDir: output,
		Workers:   2,
	})

	result, err := o.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Jobs, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{
		result.Jobs[0].Stem, result.Jobs[1].Stem, result.Jobs[2].Stem,
	})
	assert.Equal(t, map[string]entity.JobStatus{
		"a": entity.JobStatusDone,
		"b": entity.JobStatusDone,
		"c": entity.JobStatusDone,
	}, statuses(result.Jobs))
	assert.Len(t, proc.executedStems(), 3)
	assert.Nil(t, result.Report)
}

func TestRunSecondPassSkipsEverything(t *testing.T) {
	input, output := corpusDirs(t, "a", "b")
	cfg := Config{InputDir: input, OutputDir: output, Workers: 2}
	proc := &fakeProcessor{outputDir: output}

	_, err := NewOrchestrator(proc, nil, nil, nil, zap.NewNop(), cfg).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, proc.executedStems(), 2)

	result, err := NewOrchestrator(proc, nil, nil, nil, zap.NewNop(), cfg).Run(context.Background())
	require.NoError(t, err)

	// No pipeline work at all on the second pass.
	assert.Len(t, proc.executedStems(), 2)
	assert.Equal(t, map[string]entity.JobStatus{
		"a": entity.JobStatusSkipped,
		"b": entity.JobStatusSkipped,
	}, statuses(result.Jobs))
}

func TestRunFailureIsolation(t *testing.T) {
	input, output := corpusDirs(t, "a", "b", "c")
	proc := &fakeProcessor{outputDir: output, failStems: map[string]bool{"b": true}}
	o := NewOrchestrator(proc, nil, nil, nil, zap.NewNop(), Config{
		InputDir:  input,
		OutputDir: output,
		Workers:   1,
	})

	result, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[string]entity.JobStatus{
		"a": entity.JobStatusDone,
		"b": entity.JobStatusFailed,
		"c": entity.JobStatusDone,
	}, statuses(result.Jobs))
	assert.Contains(t, result.Jobs[1].ErrorMessage, "motion_series")
}

func TestRunRecordsCatalogRows(t *testing.T) {
	input, output := corpusDirs(t, "a", "b")
	catalog := &fakeCatalog{}
	proc := &fakeProcessor{outputDir: output, failStems: map[string]bool{"b": true}}
	o := NewOrchestrator(proc, nil, catalog, nil, zap.NewNop(), Config{
		InputDir:  input,
		OutputDir: output,
		Workers:   2,
	})

	_, err := o.Run(context.Background())
	require.NoError(t, err)

	// Only the completed video lands in the catalog.
	assert.Equal(t, []string{"a.mp4"}, catalog.recordings)
	require.Len(t, catalog.segments, 1)
	seg := catalog.segments[0]
	assert.Equal(t, "swings/a_01_20.0s.mp4", seg.Filename)
	assert.Equal(t, int64(1), seg.RecordingID)
	assert.Equal(t, 20.0, seg.StartSec)
	assert.Equal(t, 40.0, seg.EndSec)
}

func TestRunPublishesStatusPerVideo(t *testing.T) {
	input, output := corpusDirs(t, "a", "b")
	pub := &fakePublisher{}
	proc := &fakeProcessor{outputDir: output, failStems: map[string]bool{"b": true}}
	o := NewOrchestrator(proc, nil, nil, pub, zap.NewNop(), Config{
		InputDir:  input,
		OutputDir: output,
		Workers:   1,
	})

	_, err := o.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, pub.messages, 2)

	var msg entity.DetectionStatusMessage
	require.NoError(t, json.Unmarshal(pub.messages[0], &msg))
	assert.Equal(t, "a", msg.Stem)
	assert.Equal(t, entity.JobStatusDone, msg.Status)
	assert.Equal(t, []string{"a_01_20.0s.mp4"}, msg.Clips)

	require.NoError(t, json.Unmarshal(pub.messages[1], &msg))
	assert.Equal(t, "b", msg.Stem)
	assert.Equal(t, entity.JobStatusFailed, msg.Status)
	assert.Contains(t, msg.ErrorMessage, "motion_series")
}

func TestRunEvaluatesAgainstGroundTruth(t *testing.T) {
	input, output := corpusDirs(t, "a", "b")
	gtDir := t.TempDir()
	gt := &fakeGroundTruth{windows: map[string][]entity.ManualWindow{
		"a": {{Start: 25, End: 35}},
	}}
	proc := &fakeProcessor{outputDir: output}
	o := NewOrchestrator(proc, gt, nil, nil, zap.NewNop(), Config{
		InputDir:       input,
		OutputDir:      output,
		GroundTruthDir: gtDir,
		Workers:        2,
	})

	result, err := o.Run(context.Background())
	require.NoError(t, err)

	require.NotNil(t, result.Report)
	require.Len(t, result.Report.Videos, 2)
	assert.Equal(t, 1, result.Report.TotalCorrect)
	assert.Equal(t, 1, result.Report.TotalSpurious)
	assert.Equal(t, 0, result.Report.TotalMissed)
}

func TestRunSkipsEvaluationWithoutGroundTruthDir(t *testing.T) {
	input, output := corpusDirs(t, "a")
	gt := &fakeGroundTruth{}
	o := NewOrchestrator(&fakeProcessor{outputDir: output}, gt, nil, nil, zap.NewNop(), Config{
		InputDir:       input,
		OutputDir:      output,
		GroundTruthDir: filepath.Join(input, "does-not-exist"),
		Workers:        1,
	})

	result, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Nil(t, result.Report)
}

func TestRunEmptyCorpus(t *testing.T) {
	input := t.TempDir()
	o := NewOrchestrator(&fakeProcessor{outputDir: input}, nil, nil, nil, zap.NewNop(), Config{
		InputDir:  input,
		OutputDir: filepath.Join(input, "out"),
	})

	result, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Jobs)
}

func TestWriteSummary(t *testing.T) {
	done := entity.NewDetectionJob("/in/a.mp4", "a")
	done.MarkDone(
		[]entity.Event{{Time: 30}},
		[]entity.Clip{{Name: "a_01_20.0s.mp4", Start: 20, End: 40, Event: 30}},
		60,
	)
	failed := entity.NewDetectionJob("/in/b.mp4", "b")
	failed.MarkFailed("probe: no such file")

	report := &entity.BatchReport{}
	report.Add("a", entity.Classification{Correct: []entity.Event{{Time: 30}}})

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, &Result{
		Jobs:   []*entity.DetectionJob{done, failed},
		Report: report,
	}))

	out := buf.String()
	assert.Contains(t, out, "VIDEO")
	assert.Contains(t, out, "30.0s")
	assert.Contains(t, out, "probe: no such file")
	assert.Contains(t, out, "1 done, 0 skipped, 1 failed")
	assert.Contains(t, out, "EVALUATION vs manual windows")
	assert.Contains(t, out, "TOTAL")
}
