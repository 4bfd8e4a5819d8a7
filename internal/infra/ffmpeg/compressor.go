package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"
)

// Compressor transcodes source recordings to H.264 MP4 review copies.
type Compressor struct {
	ffmpegPath string
	crf        int
	preset     string
	logger     *zap.Logger
}

func NewCompressor(ffmpegPath string, crf int, preset string, logger *zap.Logger) *Compressor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Compressor{ffmpegPath: ffmpegPath, crf: crf, preset: preset, logger: logger}
}

func (c *Compressor) Compress(ctx context.Context, srcPath, dstPath string) error {
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	cmd := exec.CommandContext(ctx, c.ffmpegPath, compressArgs(srcPath, dstPath, c.crf, c.preset)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg compress %s: %w, output: %s", srcPath, err, string(output))
	}

	c.logger.Info("compressed",
		zap.String("src", srcPath),
		zap.String("dst", dstPath),
		zap.Int("crf", c.crf),
	)
	return nil
}

func compressArgs(srcPath, dstPath string, crf int, preset string) []string {
	return []string{
		"-y",
		"-i", srcPath,
		"-c:v", "libx264",
		"-preset", preset,
		"-crf", strconv.Itoa(crf),
		"-c:a", "aac",
		"-b:a", "128k",
		dstPath,
	}
}
