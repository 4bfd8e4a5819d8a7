package port

import "context"

// Archiver zips a directory tree, preserving paths relative to rootDir.
type Archiver interface {
	CreateArchive(ctx context.Context, rootDir string, outputPath string) error
}
