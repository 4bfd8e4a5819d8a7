package entity

import (
	"path/filepath"
	"strings"
)

// Video identifies a probed source recording. Immutable once built.
type Video struct {
	Path       string
	Width      int
	Height     int
	FPS        float64
	FrameCount int
	// Duration is frame_count/fps when the container reports a frame count,
	// otherwise the probed format duration.
	Duration float64
}

// Stem is the file name without directory or extension; output clips and
// ground-truth directories are namespaced by it.
func (v Video) Stem() string {
	return StemOf(v.Path)
}

// StemOf strips directory and extension from a video path.
func StemOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
