package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noctiluca/rendermanager/internal/coordinator"
)

// jobSubmission mirrors spec.md §6's submission body; every field but
// blend_file falls back to coordinator.DefaultJobDescriptor when omitted. An
// omitted blend_file is not rejected; it stays empty.
type jobSubmission struct {
	BlendFile    string                  `json:"blend_file"`
	OutputPath   *string                 `json:"output_path"`
	TotalFrames  *int                    `json:"total_frames"`
	FrameRange   *coordinator.FrameRange `json:"frame_range"`
	Resolution   *coordinator.Resolution `json:"resolution"`
	RenderEngine *string                 `json:"render_engine"`
}

func (j jobSubmission) toDescriptor() coordinator.JobDescriptor {
	desc := coordinator.DefaultJobDescriptor()
	desc.BlendFile = j.BlendFile
	if j.OutputPath != nil {
		desc.OutputPath = *j.OutputPath
	}
	if j.TotalFrames != nil {
		desc.TotalFrames = *j.TotalFrames
	}
	if j.FrameRange != nil {
		desc.FrameRange = *j.FrameRange
	}
	if j.Resolution != nil {
		desc.Resolution = *j.Resolution
	}
	if j.RenderEngine != nil {
		desc.RenderEngine = *j.RenderEngine
	}
	return desc
}

// SetJob enqueues a submitted job descriptor. Every submission goes through
// the queue, even when the Manager is idle (spec.md §4.3, §9: no fast path).
func (a *API) SetJob(c *gin.Context) {
	var body jobSubmission
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	position := a.state.SubmitJob(body.toDescriptor())
	c.JSON(http.StatusOK, gin.H{"ok": true, "queued": true, "position": position})
}

// Job reports the currently-active job, if any, for workers to poll
// (spec.md §4.1, §4.4).
func (a *API) Job(c *gin.Context) {
	view := a.state.CurrentJob()
	if view.Lifecycle != coordinator.StateWorking || view.Job == nil {
		c.JSON(http.StatusOK, gin.H{"job_id": view.JobID, "blend_file": nil})
		return
	}

	job := view.Job
	c.JSON(http.StatusOK, gin.H{
		"job_id":        view.JobID,
		"blend_file":    job.BlendFile,
		"total_frames":  job.TotalFrames,
		"frame_range":   job.FrameRange,
		"resolution":    job.Resolution,
		"render_engine": job.RenderEngine,
	})
}
