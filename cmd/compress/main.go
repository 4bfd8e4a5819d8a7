// Command compress transcodes raw recordings into the H.264 analysis corpus,
// mirroring the input directory layout. Already compressed outputs are left
// alone, so reruns only pick up new recordings.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/swinglab/swinglab-detection-service/internal/batch"
	"github.com/swinglab/swinglab-detection-service/internal/infra/ffmpeg"
	"github.com/swinglab/swinglab-detection-service/pkg/logger"
)

func main() {
	var (
		input      = flag.String("input", "./uncompressed", "directory of raw recordings")
		output     = flag.String("output", "./compressed", "directory for compressed output")
		crf        = flag.Int("crf", 35, "x264 constant rate factor")
		preset     = flag.String("preset", "medium", "x264 preset")
		ffmpegPath = flag.String("ffmpeg", "ffmpeg", "ffmpeg binary")
		logLevel   = flag.String("log-level", "info", "log level")
	)
	flag.Parse()

	log, err := logger.New(*logLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	videos, err := batch.ScanVideos(*input)
	fatalOnErr(err, "scan input")
	if len(videos) == 0 {
		log.Info("no videos found", zap.String("input", *input))
		return
	}

	comp := ffmpeg.NewCompressor(*ffmpegPath, *crf, *preset, log)

	var done, skipped, failed int
	for _, src := range videos {
		if ctx.Err() != nil {
			log.Info("cancelled, stopping")
			break
		}

		rel, err := filepath.Rel(*input, src)
		if err != nil {
			log.Error("relative path failed", zap.String("video", src), zap.Error(err))
			failed++
			continue
		}
		// Output keeps the relative layout but is always .mp4.
		dst := filepath.Join(*output, strings.TrimSuffix(rel, filepath.Ext(rel))+".mp4")
		if _, err := os.Stat(dst); err == nil {
			log.Info("skipping, output exists", zap.String("output", dst))
			skipped++
			continue
		}

		if err := comp.Compress(ctx, src, dst); err != nil {
			log.Error("compression failed", zap.String("video", src), zap.Error(err))
			failed++
			continue
		}
		done++
	}

	log.Info("compression finished",
		zap.Int("compressed", done),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
	)
	if failed > 0 {
		os.Exit(1)
	}
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
