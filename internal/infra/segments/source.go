// Package segments reads manually confirmed trim windows back from the
// segment files the review tooling saves under the ground-truth root.
package segments

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/swinglab/swinglab-detection-service/internal/domain/entity"
)

type Source struct {
	root   string
	logger *zap.Logger
}

func NewSource(root string, logger *zap.Logger) *Source {
	return &Source{root: root, logger: logger}
}

// Windows lists the manual windows saved for one recording stem, ordered by
// start time. A stem with no saved trims yields an empty slice.
func (s *Source) Windows(ctx context.Context, stem string) ([]entity.ManualWindow, error) {
	dir := filepath.Join(s.root, stem)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ground truth dir %s: %w", dir, err)
	}

	var out []entity.ManualWindow
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		w, ok := ParseSegmentName(e.Name())
		if !ok {
			s.logger.Debug("ignoring non-segment file",
				zap.String("stem", stem),
				zap.String("file", e.Name()),
			)
			continue
		}
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}

// ParseSegmentName decodes seg_{start_ms}_{end_ms}.{ext} into a manual
// window. Anything else reports false.
func ParseSegmentName(name string) (entity.ManualWindow, bool) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	parts := strings.Split(base, "_")
	if len(parts) != 3 || parts[0] != "seg" {
		return entity.ManualWindow{}, false
	}
	startMs, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || startMs < 0 {
		return entity.ManualWindow{}, false
	}
	endMs, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || endMs < startMs {
		return entity.ManualWindow{}, false
	}
	return entity.ManualWindow{
		Start: float64(startMs) / 1000,
		End:   float64(endMs) / 1000,
	}, true
}
