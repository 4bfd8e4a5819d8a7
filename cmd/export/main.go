// Command export assembles reviewed segments into a per-bucket directory
// tree, zips it, and optionally uploads the archive to object storage.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/swinglab/swinglab-detection-service/internal/domain/entity"
	"github.com/swinglab/swinglab-detection-service/internal/infra/archive"
	"github.com/swinglab/swinglab-detection-service/internal/infra/catalog"
	"github.com/swinglab/swinglab-detection-service/internal/infra/config"
	miniostorage "github.com/swinglab/swinglab-detection-service/internal/infra/minio"
	"github.com/swinglab/swinglab-detection-service/pkg/logger"
)

func main() {
	var (
		date    = flag.String("date", "", "only recordings imported on this YYYY-MM-DD date (empty = all)")
		dataDir = flag.String("data", ".", "data root that segment filenames are relative to")
		outDir  = flag.String("out", "./export", "directory to assemble the export tree in")
	)
	flag.Parse()

	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	if *date != "" {
		_, err := time.Parse("2006-01-02", *date)
		fatalOnErr(err, "parse -date")
	}

	ctx := context.Background()

	cat, err := catalog.New(catalog.Config{
		Driver: cfg.CatalogDriver,
		Path:   cfg.CatalogPath,
		DSN:    cfg.CatalogDSN,
	}, log)
	fatalOnErr(err, "open catalog")
	defer cat.Close()

	segs, err := cat.ListSegments(ctx, *date)
	fatalOnErr(err, "list segments")
	if len(segs) == 0 {
		log.Info("no segments to export", zap.String("date", *date))
		return
	}

	copied, missing := stageSegments(segs, *dataDir, *outDir, log)
	log.Info("export tree assembled",
		zap.Int("copied", copied),
		zap.Int("missing", missing),
	)
	if copied == 0 {
		log.Warn("nothing copied, skipping archive")
		return
	}

	zipDate := *date
	if zipDate == "" {
		zipDate = time.Now().Format("2006-01-02")
	}
	zipPath := fmt.Sprintf("export_%s.zip", zipDate)
	fatalOnErr(archive.NewZipCreator().CreateArchive(ctx, *outDir, zipPath), "create archive")
	log.Info("archive written", zap.String("path", zipPath))

	if cfg.MinIOEndpoint != "" {
		uploadArchive(ctx, cfg, zipPath, log)
	}
}

// stageSegments copies each catalogued segment file into {outDir}/{bucket}/.
// Files missing on disk are warned about and skipped.
func stageSegments(segs []entity.Segment, dataDir, outDir string, log *zap.Logger) (copied, missing int) {
	for _, seg := range segs {
		src := filepath.Join(dataDir, filepath.FromSlash(seg.Filename))
		if _, err := os.Stat(src); err != nil {
			log.Warn("missing file, skipping", zap.String("src", src))
			missing++
			continue
		}

		bucket := seg.Bucket
		if bucket == "" {
			bucket = "unsorted"
		}
		destDir := filepath.Join(outDir, bucket)
		if err := os.MkdirAll(destDir, 0o755); err != nil {
			log.Error("create bucket dir failed", zap.String("dir", destDir), zap.Error(err))
			missing++
			continue
		}

		dst := filepath.Join(destDir, filepath.Base(src))
		if err := copyFile(src, dst); err != nil {
			log.Error("copy failed", zap.String("src", src), zap.Error(err))
			missing++
			continue
		}
		log.Info("copied", zap.String("src", src), zap.String("dst", dst))
		copied++
	}
	return copied, missing
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func uploadArchive(ctx context.Context, cfg *config.Config, zipPath string, log *zap.Logger) {
	store, err := miniostorage.NewStorage(miniostorage.StorageConfig{
		Endpoint:     cfg.MinIOEndpoint,
		AccessKey:    cfg.MinIOAccessKey,
		SecretKey:    cfg.MinIOSecretKey,
		UseSSL:       cfg.MinIOUseSSL,
		ExportBucket: cfg.MinIOExportBucket,
	})
	if err != nil {
		log.Warn("minio init failed, archive kept local", zap.Error(err))
		return
	}
	if err := store.EnsureBucket(ctx); err != nil {
		log.Warn("minio bucket check failed, archive kept local", zap.Error(err))
		return
	}

	f, err := os.Open(zipPath)
	if err != nil {
		log.Warn("open archive for upload failed", zap.Error(err))
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		log.Warn("stat archive failed", zap.Error(err))
		return
	}

	key := filepath.Base(zipPath)
	if err := store.UploadArchive(ctx, key, f, info.Size()); err != nil {
		log.Warn("archive upload failed, archive kept local", zap.Error(err))
		return
	}
	log.Info("archive uploaded",
		zap.String("bucket", cfg.MinIOExportBucket),
		zap.String("object", key),
	)
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
