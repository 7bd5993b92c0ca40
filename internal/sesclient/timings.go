package sesclient

import (
	"sync"
	"time"
)

// Timings accumulates per-phase durations and attempt counters for the
// dashboard. All methods are safe on a nil receiver so callers that do
// not collect metrics can pass nothing.
type Timings struct {
	mu sync.Mutex

	buildTotal    time.Duration
	compressTotal time.Duration
	httpTotal     time.Duration
	attempts      int64
}

// NewTimings creates an empty collector.
func NewTimings() *Timings {
	return &Timings{}
}

func (t *Timings) ObserveBuild(d time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.buildTotal += d
	t.mu.Unlock()
}

func (t *Timings) ObserveCompress(d time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.compressTotal += d
	t.mu.Unlock()
}

func (t *Timings) ObserveHTTP(d time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.httpTotal += d
	t.mu.Unlock()
}

func (t *Timings) IncAttempt() {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.attempts++
	t.mu.Unlock()
}

// Snapshot is a point-in-time copy safe to serialize.
type Snapshot struct {
	BuildMs    int64 `json:"buildMs"`
	CompressMs int64 `json:"compressMs"`
	HTTPMs     int64 `json:"httpMs"`
	Attempts   int64 `json:"attempts"`
}

func (t *Timings) Snapshot() Snapshot {
	if t == nil {
		return Snapshot{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{
		BuildMs:    t.buildTotal.Milliseconds(),
		CompressMs: t.compressTotal.Milliseconds(),
		HTTPMs:     t.httpTotal.Milliseconds(),
		Attempts:   t.attempts,
	}
}
