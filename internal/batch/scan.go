package batch

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// videoExts is the corpus whitelist; extensions are compared lowercased.
var videoExts = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".mkv":  true,
	".flv":  true,
	".wmv":  true,
	".webm": true,
}

// IsVideo reports whether path carries a recognized video extension.
func IsVideo(path string) bool {
	return videoExts[strings.ToLower(filepath.Ext(path))]
}

// ScanVideos walks root recursively and returns every video file, sorted by
// path so a batch always runs in a deterministic order.
func ScanVideos(root string) ([]string, error) {
	var videos []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsVideo(path) {
			return nil
		}
		videos = append(videos, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(videos)
	return videos, nil
}

// HasExistingClips reports whether outputDir already holds output named after
// stem. Matching is on the {stem}_* clip prefix, which makes a rerun over an
// already processed corpus a no-op.
func HasExistingClips(outputDir, stem string) (bool, error) {
	matches, err := filepath.Glob(filepath.Join(outputDir, stem+"_*"))
	if err != nil {
		return false, err
	}
	return len(matches) > 0, nil
}
