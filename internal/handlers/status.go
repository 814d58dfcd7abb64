package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Status serves the full status snapshot for both `/` and `/dashboard`. The
// bundled dashboard document itself is out of scope (spec.md §1 treats the
// browser UI as an external collaborator); an HTML-accepting request gets a
// minimal placeholder page instead of the real dashboard, so the route still
// resolves for a browser hitting it directly.
func (a *API) Status(c *gin.Context) {
	snapshot := a.snapshot()

	if strings.Contains(c.GetHeader("Accept"), "text/html") {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, dashboardPlaceholder, snapshot["manager_state"], snapshot["timestamp"])
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

const dashboardPlaceholder = `<!DOCTYPE html>
<html><head><title>Render Manager</title></head>
<body>
<p>manager_state: %s</p>
<p>timestamp: %s</p>
<p>The dashboard UI is served elsewhere; this Manager only exposes the JSON status API.</p>
</body></html>
`

func (a *API) snapshot() gin.H {
	view := a.state.CurrentJob()
	workers := a.state.Workers()
	progress := a.state.Progress()
	metrics := a.state.Metrics()

	var job interface{}
	if view.Job != nil {
		job = view.Job
	}

	return gin.H{
		"manager_state":       view.Lifecycle,
		"job_id":              view.JobID,
		"job":                 job,
		"workers":             workers,
		"job_progress":        progress,
		"performance_metrics": metrics,
		"timestamp":           time.Now().Format(time.RFC3339),
	}
}

// History returns the bounded job-history ring.
func (a *API) History(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"jobs": a.state.History()})
}

// Logs returns the activity and error rings.
func (a *API) Logs(c *gin.Context) {
	activity, errs := a.state.Logs()
	c.JSON(http.StatusOK, gin.H{"activity": activity, "errors": errs})
}

// Alerts returns the bounded alert ring.
func (a *API) Alerts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"alerts": a.state.Alerts()})
}

// Queue returns the pending job queue in FIFO order.
func (a *API) Queue(c *gin.Context) {
	jobs, size := a.state.Queue()
	c.JSON(http.StatusOK, gin.H{"queue": jobs, "size": size})
}
