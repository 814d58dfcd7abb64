// Package handlers implements the Dispatch API: the unauthenticated HTTP
// surface workers and clients poll, submit to, and observe.
package handlers

import (
	"net/http"
	"os/exec"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noctiluca/rendermanager/internal/coordinator"
	"github.com/noctiluca/rendermanager/internal/logging"
)

var validate = validator.New()

// API wires the coordinator state and output scanner into Gin handlers. One
// instance is constructed in main and registered against the router; there
// is no package-level singleton (unlike the database-getter pattern this
// module's teacher used, there is no process-wide store to reach for here).
type API struct {
	state        *coordinator.State
	listFrames   func(dir string) []string
	dashboardURL string
}

// NewAPI constructs an API. listFrames lists image filenames in a render
// directory (injected so this package never imports the scanner package
// directly, matching the dependency-injection seam coordinator.State uses).
func NewAPI(state *coordinator.State, listFrames func(dir string) []string, dashboardURL string) *API {
	return &API{state: state, listFrames: listFrames, dashboardURL: dashboardURL}
}

// RegisterRoutes attaches every Dispatch API route to r except /heartbeat,
// which the caller registers itself (typically behind a rate limiter — see
// RegisterHeartbeat).
func (a *API) RegisterRoutes(r *gin.Engine) {
	r.GET("/job", a.Job)
	r.POST("/set_job", a.SetJob)
	r.GET("/", a.Status)
	r.GET("/dashboard", a.Status)
	r.GET("/history", a.History)
	r.GET("/logs", a.Logs)
	r.GET("/alerts", a.Alerts)
	r.GET("/queue", a.Queue)
	r.GET("/preview", a.Preview)
	r.GET("/preview/:filename", a.PreviewFile)
	r.GET("/preview_history", a.PreviewHistory)
	r.GET("/worker_config", a.WorkerConfig)
	r.POST("/report_error", a.ReportError)
	r.POST("/open-browser", a.OpenBrowser)
}

// RegisterHeartbeat attaches POST /heartbeat with the given middleware
// chain in front of the handler (spec.md's only rate-limited route).
func (a *API) RegisterHeartbeat(r *gin.Engine, mw ...gin.HandlerFunc) {
	chain := append(append([]gin.HandlerFunc{}, mw...), gin.HandlerFunc(a.Heartbeat))
	r.POST("/heartbeat", chain...)
}

// OpenBrowser shells out to the host's default opener (spec.md §4.4). The
// dashboard UI itself is out of scope; this only opens whatever URL the
// Manager was configured to serve it from.
func (a *API) OpenBrowser(c *gin.Context) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", a.dashboardURL)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", a.dashboardURL)
	default:
		cmd = exec.Command("xdg-open", a.dashboardURL)
	}

	if err := cmd.Start(); err != nil {
		logging.WarnWithComponent(logging.ComponentDispatch, "failed to open browser", "error", err)
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
