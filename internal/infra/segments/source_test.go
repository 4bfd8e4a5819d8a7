package segments

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/swinglab/swinglab-detection-service/internal/domain/entity"
)

func TestParseSegmentName(t *testing.T) {
	w, ok := ParseSegmentName("seg_12000_15500.mp4")
	require.True(t, ok)
	assert.Equal(t, entity.ManualWindow{Start: 12.0, End: 15.5}, w)

	w, ok = ParseSegmentName("seg_0_500.mov")
	require.True(t, ok)
	assert.Equal(t, entity.ManualWindow{Start: 0, End: 0.5}, w)

	for _, name := range []string{
		"notes.txt",
		"seg_12000.mp4",
		"seg_a_b.mp4",
		"seg_2000_1000.mp4",
		"seg_-100_200.mp4",
		"clip_12000_15500.mp4",
	} {
		_, ok := ParseSegmentName(name)
		assert.False(t, ok, name)
	}
}

func TestWindows(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "IMG_1234")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	for _, name := range []string{"seg_30000_42000.mp4", "seg_10000_20000.mp4", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	src := NewSource(root, zap.NewNop())
	windows, err := src.Windows(context.Background(), "IMG_1234")
	require.NoError(t, err)
	assert.Equal(t, []entity.ManualWindow{
		{Start: 10, End: 20},
		{Start: 30, End: 42},
	}, windows)
}

func TestWindowsNoSavedTrims(t *testing.T) {
	src := NewSource(t.TempDir(), zap.NewNop())
	windows, err := src.Windows(context.Background(), "never_reviewed")
	require.NoError(t, err)
	assert.Empty(t, windows)
}
