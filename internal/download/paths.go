package download

import (
	"os"
	"path/filepath"
)

// resolveOutputPath reconciles the path reported by the fetch layer with
// what is actually on disk. When the reported path does not exist, the
// output directory is probed for the same base name before giving up.
func resolveOutputPath(reported, outDir string) (string, bool) {
	if reported == "" {
		return "", false
	}
	if _, err := os.Stat(reported); err == nil {
		return reported, true
	}
	candidate := filepath.Join(outDir, filepath.Base(reported))
	if _, err := os.Stat(candidate); err == nil {
		return candidate, true
	}
	return "", false
}
