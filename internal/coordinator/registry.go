package coordinator

import (
	"sort"
	"time"
)

// defaultEvictionTimeout is the worker-silence window spec.md §4.2 sets at
// 10 seconds.
const defaultEvictionTimeout = 10 * time.Second

// registry is the worker-identity → liveness map. It trusts the worker's
// self-reported status entirely; the Manager never force-transitions a
// worker between ready/rendering/done (spec.md §4.2).
type registry struct {
	workers map[string]*WorkerRecord
}

func newRegistry() *registry {
	return &registry{workers: make(map[string]*WorkerRecord)}
}

// HeartbeatInput is everything a worker may report on a heartbeat.
type HeartbeatInput struct {
	Name     string
	Status   WorkerStatus
	JobID    *int
	IP       string
	Counters WorkerCounters
	System   *SystemInfo
}

// observe applies a heartbeat, inserting a new record on first contact.
// Returns true if this heartbeat created a new record (so the caller can
// emit the "worker connected" activity/alert side effects).
func (r *registry) observe(in HeartbeatInput, now time.Time) bool {
	rec, exists := r.workers[in.Name]
	isNew := !exists
	if !exists {
		rec = &WorkerRecord{
			Name:        in.Name,
			ConnectedAt: now,
		}
		r.workers[in.Name] = rec
	}

	rec.Status = in.Status
	rec.CurrentJobID = in.JobID
	rec.IP = in.IP
	rec.Counters = in.Counters
	rec.SystemInfo = in.System
	rec.LastSeen = now

	return isNew
}

// evictStale removes any record whose last heartbeat is older than timeout,
// returning the names evicted so the caller can log/alert per eviction.
func (r *registry) evictStale(now time.Time, timeout time.Duration) []string {
	var evicted []string
	for name, rec := range r.workers {
		if now.Sub(rec.LastSeen) > timeout {
			evicted = append(evicted, name)
			delete(r.workers, name)
		}
	}
	return evicted
}

func (r *registry) len() int {
	return len(r.workers)
}

// countByStatus tallies current workers per status.
func (r *registry) countByStatus() (ready, rendering, done int) {
	for _, rec := range r.workers {
		switch rec.Status {
		case WorkerReady:
			ready++
		case WorkerRendering:
			rendering++
		case WorkerDone:
			done++
		}
	}
	return
}

// snapshot returns a copy of all current worker records, for API responses.
func (r *registry) snapshot() []WorkerRecord {
	out := make([]WorkerRecord, 0, len(r.workers))
	for _, rec := range r.workers {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
