// Package coordinator implements the job-queue and lifecycle state machine,
// the worker registry, and the observability rings that together form the
// Manager's coordination engine. Everything here is protected by a single
// mutex owned by State; callers outside this package never see partial
// updates.
package coordinator

import "time"

// WorkerStatus is the closed set of statuses a worker may self-report.
type WorkerStatus string

const (
	WorkerReady     WorkerStatus = "ready"
	WorkerRendering WorkerStatus = "rendering"
	WorkerDone      WorkerStatus = "done"
)

// LifecycleState is the Manager's three-state job lifecycle.
type LifecycleState string

const (
	StateFree    LifecycleState = "free"
	StateWorking LifecycleState = "working"
	StateConfig  LifecycleState = "config"
)

// FrameRange is the inclusive [Start, End] frame span of a job.
type FrameRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Resolution is the render output's pixel dimensions.
type Resolution struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// JobDescriptor is the immutable job description a client submits.
type JobDescriptor struct {
	BlendFile    string     `json:"blend_file"`
	OutputPath   string     `json:"output_path"`
	TotalFrames  int        `json:"total_frames"`
	FrameRange   FrameRange `json:"frame_range"`
	Resolution   Resolution `json:"resolution"`
	RenderEngine string     `json:"render_engine"`
}

// DefaultJobDescriptor fills in the defaults spec.md §6 assigns to a job
// submission whose fields are omitted: "", 0, {1,250}, {1920,1080}, "CYCLES".
func DefaultJobDescriptor() JobDescriptor {
	return JobDescriptor{
		OutputPath:   "",
		TotalFrames:  0,
		FrameRange:   FrameRange{Start: 1, End: 250},
		Resolution:   Resolution{X: 1920, Y: 1080},
		RenderEngine: "CYCLES",
	}
}

// ActiveJob is the single job currently occupying the WORKING/CONFIG slot.
type ActiveJob struct {
	JobDescriptor
	StartTime       time.Time `json:"start_time"`
	CompletedFrames int       `json:"completed_frames"`
}

// SystemInfo is the optional resource-usage snapshot a worker may attach to
// a heartbeat.
type SystemInfo struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
}

// WorkerCounters are the self-reported cumulative counters a worker carries
// across heartbeats.
type WorkerCounters struct {
	FramesRendered int `json:"frames_rendered"`
	JobsCompleted  int `json:"jobs_completed"`
	Errors         int `json:"errors"`
}

// WorkerRecord is the registry's view of one worker.
type WorkerRecord struct {
	Name         string         `json:"name"`
	Status       WorkerStatus   `json:"status"`
	CurrentJobID *int           `json:"job_id"`
	IP           string         `json:"ip"`
	LastSeen     time.Time      `json:"-"`
	ConnectedAt  time.Time      `json:"connected_at"`
	Counters     WorkerCounters `json:"counters"`
	SystemInfo   *SystemInfo    `json:"system_info,omitempty"`
}

// JobHistoryRecord is one append-only entry in the bounded history ring.
type JobHistoryRecord struct {
	JobID           int       `json:"job_id"`
	BlendFile       string    `json:"blend_file"`
	OutputPath      string    `json:"output_path"`
	TotalFrames     int       `json:"total_frames"`
	CompletedFrames int       `json:"completed_frames"`
	DurationSeconds float64   `json:"duration"`
	WorkersUsed     int       `json:"workers_used"`
	CompletedAt     time.Time `json:"completed_at"`
}

// ActivityEntry is one line in the bounded activity-log ring.
type ActivityEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Level     string    `json:"level"`
}

// ErrorEntry is one line in the bounded error-log ring, sourced from
// /report_error.
type ErrorEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Worker    string    `json:"worker"`
	Error     string    `json:"error"`
	Frame     *int      `json:"frame,omitempty"`
}

// AlertEntry is one entry in the bounded alert ring.
type AlertEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
}

// PerformanceMetrics are the derived counters spec.md §4.7 requires.
type PerformanceMetrics struct {
	TotalJobsCompleted int     `json:"total_jobs_completed"`
	TotalRenderTime    float64 `json:"total_render_time"`
	PeakWorkers        int     `json:"peak_workers"`
	QueueSize          int     `json:"queue_size"`
}

// JobProgress is the derived progress snapshot for the active job, or nil
// when there is none.
type JobProgress struct {
	ProgressPercent     float64 `json:"progress_percent"`
	CompletedFrames     int     `json:"completed_frames"`
	TotalFrames         int     `json:"total_frames"`
	ElapsedSeconds      float64 `json:"elapsed_time"`
	EstimatedRemaining  float64 `json:"estimated_remaining"`
	AvgTimePerFrameSecs float64 `json:"avg_time_per_frame"`
}
