package port

import (
	"context"

	"github.com/swinglab/swinglab-detection-service/internal/domain/entity"
)

// ClipCutter copies one window out of a source video without re-encoding.
type ClipCutter interface {
	Cut(ctx context.Context, srcPath, dstPath string, window entity.Window) error
}

// VideoCompressor transcodes a source video into a smaller review copy.
type VideoCompressor interface {
	Compress(ctx context.Context, srcPath, dstPath string) error
}

// Thumbnailer writes a single still image at the given timestamp.
type Thumbnailer interface {
	Thumbnail(ctx context.Context, srcPath, dstPath string, atSec float64) error
}
