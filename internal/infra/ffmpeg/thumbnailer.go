package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"

	"go.uber.org/zap"
)

// Thumbnailer grabs one still per detected event for quick visual review.
type Thumbnailer struct {
	ffmpegPath string
	logger     *zap.Logger
}

func NewThumbnailer(ffmpegPath string, logger *zap.Logger) *Thumbnailer {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Thumbnailer{ffmpegPath: ffmpegPath, logger: logger}
}

func (t *Thumbnailer) Thumbnail(ctx context.Context, srcPath, dstPath string, atSec float64) error {
	cmd := exec.CommandContext(ctx, t.ffmpegPath,
		"-y",
		"-ss", fmt.Sprintf("%.3f", atSec),
		"-i", srcPath,
		"-vframes", "1",
		"-q:v", "2",
		dstPath,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg thumbnail %s: %w, output: %s", dstPath, err, string(output))
	}

	t.logger.Debug("thumbnail written", zap.String("path", dstPath))
	return nil
}
