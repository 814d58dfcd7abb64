package coordinator

import (
	"strconv"
	"sync"
	"time"

	"github.com/noctiluca/rendermanager/internal/logging"
)

const (
	activityCap = 200
	errorCap    = 100
	alertCap    = 20
	historyCap  = 50
)

// Persister is the persistence-store seam State depends on. history.Store
// satisfies it structurally; State never touches the filesystem itself.
type Persister interface {
	Load() []JobHistoryRecord
	Save(records []JobHistoryRecord)
}

// RenderDirResolver resolves a job's output path to its render directory.
type RenderDirResolver func(outputPath string) string

// FrameCounter counts completed frames in a render directory.
type FrameCounter func(dir string) int

// State is the Manager's single process-wide mutable state: the lifecycle
// engine, worker registry, job queue, and observability rings, all
// protected by one mutex (spec.md §5). Construct with New; Tick drives the
// lifecycle state machine and must be called by a single background loop.
type State struct {
	mu sync.Mutex

	lifecycle    LifecycleState
	active       *ActiveJob
	jobIDCounter int

	queue    *jobQueue
	registry *registry

	activity *ring[ActivityEntry]
	errors   *ring[ErrorEntry]
	alerts   *ring[AlertEntry]
	history  *ring[JobHistoryRecord]

	metrics PerformanceMetrics

	evictionTimeout time.Duration
	tickCount       int

	resolveDir RenderDirResolver
	countFrame FrameCounter
	persist    Persister
}

// New constructs a State, loading prior history through persist.
func New(resolveDir RenderDirResolver, countFrame FrameCounter, persist Persister) *State {
	s := &State{
		lifecycle:       StateFree,
		queue:           newJobQueue(),
		registry:        newRegistry(),
		activity:        newRing[ActivityEntry](activityCap),
		errors:          newRing[ErrorEntry](errorCap),
		alerts:          newRing[AlertEntry](alertCap),
		history:         newRing[JobHistoryRecord](historyCap),
		evictionTimeout: defaultEvictionTimeout,
		resolveDir:      resolveDir,
		countFrame:      countFrame,
		persist:         persist,
	}
	if persist != nil {
		s.history.Load(persist.Load())
	}
	return s
}

func (s *State) logActivity(component, level, message string) {
	s.activity.Push(ActivityEntry{Timestamp: time.Now(), Message: message, Level: level})
	switch level {
	case "error":
		logging.ErrorWithComponent(component, message)
	case "warning":
		logging.WarnWithComponent(component, message)
	default:
		logging.InfoWithComponent(component, message)
	}
}

func (s *State) addAlert(message, alertType string) {
	s.alerts.Push(AlertEntry{Timestamp: time.Now(), Message: message, Type: alertType})
}

// SubmitJob enqueues desc, returning its 1-based queue position. All
// submissions go through the queue, even when the Manager is FREE
// (spec.md §4.3, §9).
func (s *State) SubmitJob(desc JobDescriptor) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	position := s.queue.append(desc)
	s.logActivity(logging.ComponentQueue, "info", "job queued: "+desc.BlendFile)
	s.addAlert("job queued: "+desc.BlendFile, "warning")
	return position
}

// Heartbeat records a worker's self-reported status and returns the current
// lifecycle state and job id so the worker can self-synchronize
// (spec.md §4.2, §9).
func (s *State) Heartbeat(in HeartbeatInput, now time.Time) (LifecycleState, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	isNew := s.registry.observe(in, now)
	if isNew {
		s.logActivity(logging.ComponentRegistry, "info", "worker connected: "+in.Name)
		s.addAlert("worker "+in.Name+" connected", "info")
	}

	return s.lifecycle, s.jobIDCounter
}

// ReportError appends a worker-reported error to the error log and alerts.
// It never alters lifecycle (spec.md §4.4, §7).
func (s *State) ReportError(worker, errMsg string, frame *int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.errors.Push(ErrorEntry{Timestamp: time.Now(), Worker: worker, Error: errMsg, Frame: frame})
	s.logActivity(logging.ComponentRegistry, "error", "worker error ("+worker+"): "+errMsg)
	s.addAlert("error: "+errMsg, "error")
}

// ActiveJobView is the data returned for /job and the status snapshot.
type ActiveJobView struct {
	JobID     int
	Job       *ActiveJob
	Lifecycle LifecycleState
}

// CurrentJob returns the active job (nil when none) alongside the
// advertised job id.
func (s *State) CurrentJob() ActiveJobView {
	s.mu.Lock()
	defer s.mu.Unlock()

	var job *ActiveJob
	if s.active != nil {
		cp := *s.active
		job = &cp
	}
	return ActiveJobView{JobID: s.jobIDCounter, Job: job, Lifecycle: s.lifecycle}
}

// Queue returns a snapshot of pending jobs and the queue size.
func (s *State) Queue() ([]JobDescriptor, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.queue.snapshot()
	return snap, len(snap)
}

// Workers returns a snapshot of all registered worker records.
func (s *State) Workers() []WorkerRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.snapshot()
}

// History returns the bounded job-history ring, oldest first.
func (s *State) History() []JobHistoryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Items()
}

// Logs returns the activity and error rings.
func (s *State) Logs() ([]ActivityEntry, []ErrorEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activity.Items(), s.errors.Items()
}

// Alerts returns the alert ring.
func (s *State) Alerts() []AlertEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alerts.Items()
}

// Metrics returns a copy of the derived performance metrics.
func (s *State) Metrics() PerformanceMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics
}

// Progress computes the active job's progress snapshot, or nil if no job is
// active or the active job has zero total frames (spec.md §4.7).
func (s *State) Progress() *JobProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progressLocked(time.Now())
}

func (s *State) progressLocked(now time.Time) *JobProgress {
	if s.active == nil || s.active.TotalFrames == 0 {
		return nil
	}

	completed := s.active.CompletedFrames
	total := s.active.TotalFrames
	elapsed := now.Sub(s.active.StartTime).Seconds()

	var avg, remaining float64
	if completed > 0 {
		avg = elapsed / float64(completed)
		remaining = avg * float64(total-completed)
	}

	return &JobProgress{
		ProgressPercent:     100 * float64(completed) / float64(total),
		CompletedFrames:     completed,
		TotalFrames:         total,
		ElapsedSeconds:      elapsed,
		EstimatedRemaining:  remaining,
		AvgTimePerFrameSecs: avg,
	}
}

// RenderDirForActive resolves the active job's render directory, or ""
// with ok=false if there is no active job.
func (s *State) RenderDirForActive() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return "", false
	}
	return s.resolveDir(s.active.OutputPath), true
}

// RenderDirForHistory resolves the render directory for every history
// record, in the same order History returns them.
func (s *State) RenderDirForHistory() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.history.Items()
	dirs := make([]string, len(items))
	for i, rec := range items {
		dirs[i] = s.resolveDir(rec.OutputPath)
	}
	return dirs
}

// Tick advances the lifecycle state machine by exactly one step, evicting
// stale workers first. It must be called by a single background loop at a
// steady cadence (spec.md §4.1, §5). Per spec.md §5, file I/O by the output
// scanner and persistence store happens outside s.mu — tickWorking and
// tickConfig each release the lock around their directory read (and, for
// tickConfig, the history-file write), folding results back under the lock
// once the I/O completes.
func (s *State) Tick(now time.Time) {
	s.mu.Lock()
	s.tickCount++
	s.evictStaleLocked(now)

	if n := s.registry.len(); n > s.metrics.PeakWorkers {
		s.metrics.PeakWorkers = n
	}
	s.metrics.QueueSize = s.queue.size()

	lifecycle := s.lifecycle
	s.mu.Unlock()

	switch lifecycle {
	case StateFree:
		s.mu.Lock()
		s.tickFreeLocked(now)
		s.mu.Unlock()
	case StateWorking:
		s.tickWorking(now)
	case StateConfig:
		s.tickConfig(now)
	}
}

func (s *State) evictStaleLocked(now time.Time) {
	for _, name := range s.registry.evictStale(now, s.evictionTimeout) {
		s.logActivity(logging.ComponentRegistry, "warning", "worker offline: "+name)
		s.addAlert("worker "+name+" disconnected", "error")
	}
}

// tickFreeLocked implements spec.md §4.1's FREE transition, including the
// barrier that holds off starting the next job until every worker has
// drained out of `done` and at least one is `ready` (or the fleet is
// empty, which may still dequeue — workers can arrive later).
func (s *State) tickFreeLocked(now time.Time) {
	if s.queue.size() == 0 {
		return
	}

	n := s.registry.len()
	if n > 0 {
		ready, _, done := s.registry.countByStatus()
		if done > 0 {
			return
		}
		if ready == 0 {
			return
		}
	}

	desc, ok := s.queue.popHead()
	if !ok {
		return
	}

	s.active = &ActiveJob{
		JobDescriptor:   desc,
		StartTime:       now,
		CompletedFrames: 0,
	}
	s.lifecycle = StateWorking
	s.tickCount = 0

	s.logActivity(logging.ComponentLifecycle, "info", "job "+strconv.Itoa(s.jobIDCounter)+" started: "+desc.BlendFile)
	s.addAlert("starting: "+desc.BlendFile, "info")
}

// tickWorking implements spec.md §4.1's WORKING transition: refresh progress
// every tick, and move to CONFIG only once the whole (non-empty) fleet is
// done. The render directory listing is a filesystem read, so it runs with
// s.mu released; only the snapshot of what to scan and the fold-back of its
// result are locked.
func (s *State) tickWorking(now time.Time) {
	s.mu.Lock()
	if s.active == nil {
		s.mu.Unlock()
		return
	}
	dir := s.resolveDir(s.active.OutputPath)
	s.mu.Unlock()

	completed := s.countFrame(dir)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return
	}
	s.active.CompletedFrames = completed

	ready, rendering, done := s.registry.countByStatus()
	n := s.registry.len()

	if s.tickCount%10 == 0 {
		logging.InfoWithComponent(logging.ComponentTicker, "fleet status",
			"ready", ready, "rendering", rendering, "done", done)
	}

	if n > 0 && done == n && rendering == 0 && ready == 0 {
		s.logActivity(logging.ComponentLifecycle, "info", "all "+strconv.Itoa(done)+" workers completed job "+strconv.Itoa(s.jobIDCounter))
		s.lifecycle = StateConfig
	}
}

// tickConfig implements spec.md §4.1's CONFIG finalization: recount frames,
// append + persist history, clear the active job, and advance the job id
// before returning to FREE. The frame recount and the history-file write are
// both I/O, so each runs with s.mu released; the job snapshot taken before
// the recount and the history-ring update after it are the only parts done
// under the lock.
func (s *State) tickConfig(now time.Time) {
	s.mu.Lock()
	if s.active == nil {
		s.lifecycle = StateFree
		s.mu.Unlock()
		return
	}
	dir := s.resolveDir(s.active.OutputPath)
	blendFile := s.active.BlendFile
	outputPath := s.active.OutputPath
	totalFrames := s.active.TotalFrames
	startTime := s.active.StartTime
	workersUsed := s.registry.len()
	jobID := s.jobIDCounter
	s.mu.Unlock()

	completed := s.countFrame(dir)
	duration := now.Sub(startTime).Seconds()

	record := JobHistoryRecord{
		JobID:           jobID,
		BlendFile:       blendFile,
		OutputPath:      outputPath,
		TotalFrames:     totalFrames,
		CompletedFrames: completed,
		DurationSeconds: duration,
		WorkersUsed:     workersUsed,
		CompletedAt:     now,
	}

	s.mu.Lock()
	s.history.Push(record)
	items := s.history.Items()

	s.metrics.TotalJobsCompleted++
	s.metrics.TotalRenderTime += duration

	s.logActivity(logging.ComponentLifecycle, "success", "job "+strconv.Itoa(jobID)+" saved to history: "+blendFile)
	s.addAlert("job completed: "+blendFile, "success")

	s.active = nil
	s.jobIDCounter++
	s.lifecycle = StateFree
	s.tickCount = 0
	s.mu.Unlock()

	if s.persist != nil {
		s.persist.Save(items)
	}
}

