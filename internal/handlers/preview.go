package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noctiluca/rendermanager/internal/workerconfig"
)

// imageContentTypes maps a lowercased extension to the content type
// spec.md §6 documents; anything else is served as opaque bytes.
var imageContentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".tiff": "image/tiff",
	".bmp":  "image/bmp",
	".exr":  "application/octet-stream",
}

func contentTypeFor(filename string) string {
	if ct, ok := imageContentTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Preview lists image filenames in the active job's render directory
// (spec.md §4.4).
func (a *API) Preview(c *gin.Context) {
	dir, ok := a.state.RenderDirForActive()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"images": []string{}, "count": 0})
		return
	}

	images := a.listFrames(dir)
	c.JSON(http.StatusOK, gin.H{"images": images, "count": len(images)})
}

// PreviewFile serves one image's bytes, searching the active render
// directory first and then every history record's render directory
// (spec.md §4.4). Any filename containing ".." or a path separator is
// rejected with 403 before any filesystem access (spec.md §7).
func (a *API) PreviewFile(c *gin.Context) {
	filename := c.Param("filename")
	if strings.Contains(filename, "..") || strings.ContainsAny(filename, "/\\") {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid filename"})
		return
	}

	var dirs []string
	if dir, ok := a.state.RenderDirForActive(); ok {
		dirs = append(dirs, dir)
	}
	dirs = append(dirs, a.state.RenderDirForHistory()...)

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, filename)
		if !strings.HasPrefix(path, filepath.Clean(dir)+string(filepath.Separator)) {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			c.Header("Content-Type", contentTypeFor(filename))
			c.File(path)
			return
		}
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
}

// PreviewHistory augments each history record with its render directory's
// current image-file list (spec.md §4.4).
func (a *API) PreviewHistory(c *gin.Context) {
	records := a.state.History()
	dirs := a.state.RenderDirForHistory()

	type entry struct {
		Job    interface{} `json:"job"`
		Images []string    `json:"images"`
	}

	out := make([]entry, len(records))
	for i, rec := range records {
		var images []string
		if i < len(dirs) && dirs[i] != "" {
			images = a.listFrames(dirs[i])
		}
		out[i] = entry{Job: rec, Images: images}
	}

	c.JSON(http.StatusOK, gin.H{"history": out})
}

// WorkerConfig loads the bundled worker-bootstrap XML and returns it as
// JSON (spec.md §4.4, §6).
func (a *API) WorkerConfig(c *gin.Context) {
	cfg, err := workerconfig.Load()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load worker config"})
		return
	}
	c.JSON(http.StatusOK, cfg)
}
