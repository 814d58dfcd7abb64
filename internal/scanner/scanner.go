// Package scanner implements the filesystem-based progress estimator:
// resolving a job's render directory from its output path and counting the
// image files that have landed there.
package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/noctiluca/rendermanager/internal/logging"
)

// imageExtensions is the case-insensitive allow-list spec.md §4.5 names.
var imageExtensions = map[string]bool{
	".png":  true,
	".exr":  true,
	".jpg":  true,
	".jpeg": true,
	".tiff": true,
	".bmp":  true,
}

// ResolveRenderDir implements the heuristic spec.md §4.5 and §9 document: if
// outputPath is empty there is no render directory. If outputPath contains
// "render" (case-insensitive): when it ends in ".blend" the directory is
// "<dirname>/render" — NOT the file's own directory, even though the
// substring check matched on the path already containing "render" — this is
// the documented, intentional quirk; otherwise the path itself if it exists
// as a directory, else its parent. When "render" does not appear anywhere in
// outputPath, the render directory is "<dirname(outputPath)>/render".
func ResolveRenderDir(outputPath string) string {
	if outputPath == "" {
		return ""
	}

	lower := strings.ToLower(outputPath)
	if strings.Contains(lower, "render") {
		if strings.HasSuffix(lower, ".blend") {
			return filepath.Join(filepath.Dir(outputPath), "render")
		}
		if info, err := os.Stat(outputPath); err == nil && info.IsDir() {
			return outputPath
		}
		return filepath.Dir(outputPath)
	}

	return filepath.Join(filepath.Dir(outputPath), "render")
}

// CountFrames counts entries in dir whose extension is in the image
// allow-list. A missing directory is reported as 0 without logging; any
// other read error is logged and reported as 0 — progress is best-effort
// (spec.md §4.5, §7).
func CountFrames(dir string) int {
	if dir == "" {
		return 0
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.WarnWithComponent(logging.ComponentScanner, "failed to read render directory", "dir", dir, "error", err)
		}
		return 0
	}

	count := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			count++
		}
	}
	return count
}

// ListFrames returns the sorted filenames of image files in dir, or an
// empty slice if dir is missing or unreadable.
func ListFrames(dir string) []string {
	if dir == "" {
		return []string{}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return []string{}
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}
