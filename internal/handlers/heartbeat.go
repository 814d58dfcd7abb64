package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noctiluca/rendermanager/internal/coordinator"
)

// heartbeatBody mirrors spec.md §4.4's heartbeat request. Status is
// validated against the closed ready/rendering/done set with go-playground's
// validator rather than gin's bind-time tag, so a bad status yields the same
// structured 400 path as every other handler-level validation failure.
type heartbeatBody struct {
	Name           string                    `json:"name" validate:"required"`
	Status         coordinator.WorkerStatus  `json:"status" validate:"required,oneof=ready rendering done"`
	JobID          *int                      `json:"job_id"`
	IP             string                    `json:"ip"`
	FramesRendered int                       `json:"frames_rendered"`
	JobsCompleted  int                       `json:"jobs_completed"`
	Errors         int                       `json:"errors"`
	SystemInfo     *coordinator.SystemInfo   `json:"system_info"`
}

// Heartbeat records a worker's self-reported status and returns the current
// lifecycle state, the back-channel that lets a `done` worker learn the
// Manager has cleared the job and self-reset to `ready` (spec.md §4.2, §9).
func (a *API) Heartbeat(c *gin.Context) {
	var body heartbeatBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validate.Struct(body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ip := body.IP
	if ip == "" {
		ip = c.ClientIP()
	}

	in := coordinator.HeartbeatInput{
		Name:   body.Name,
		Status: body.Status,
		JobID:  body.JobID,
		IP:     ip,
		Counters: coordinator.WorkerCounters{
			FramesRendered: body.FramesRendered,
			JobsCompleted:  body.JobsCompleted,
			Errors:         body.Errors,
		},
		System: body.SystemInfo,
	}

	lifecycle, jobID := a.state.Heartbeat(in, time.Now())
	c.JSON(http.StatusOK, gin.H{"ok": true, "manager_state": lifecycle, "job_id": jobID})
}

// reportErrorBody mirrors spec.md §4.4's /report_error request.
type reportErrorBody struct {
	Worker string `json:"worker" validate:"required"`
	Error  string `json:"error" validate:"required"`
	Frame  *int   `json:"frame"`
}

// ReportError appends a worker-reported failure to the error log and
// alerts. It never alters lifecycle (spec.md §4.4, §7).
func (a *API) ReportError(c *gin.Context) {
	var body reportErrorBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validate.Struct(body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a.state.ReportError(body.Worker, body.Error, body.Frame)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
