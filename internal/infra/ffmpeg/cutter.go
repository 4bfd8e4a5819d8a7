package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"

	"go.uber.org/zap"

	"github.com/swinglab/swinglab-detection-service/internal/domain/entity"
)

// Cutter extracts clip windows by stream copy. No re-encoding happens, so a
// window running past end-of-file just yields a shorter clip.
type Cutter struct {
	ffmpegPath string
	logger     *zap.Logger
}

func NewCutter(ffmpegPath string, logger *zap.Logger) *Cutter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Cutter{ffmpegPath: ffmpegPath, logger: logger}
}

func (c *Cutter) Cut(ctx context.Context, srcPath, dstPath string, window entity.Window) error {
	cmd := exec.CommandContext(ctx, c.ffmpegPath, cutArgs(srcPath, dstPath, window)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg cut %s: %w, output: %s", dstPath, err, string(output))
	}

	c.logger.Info("clip written",
		zap.String("clip", dstPath),
		zap.Float64("start", window.Start),
		zap.Float64("duration", window.Duration),
	)
	return nil
}

func cutArgs(srcPath, dstPath string, window entity.Window) []string {
	return []string{
		"-y",
		"-ss", fmt.Sprintf("%.3f", window.Start),
		"-i", srcPath,
		"-t", fmt.Sprintf("%.3f", window.Duration),
		"-c", "copy",
		dstPath,
	}
}
