package job

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a record id is unknown to the store.
var ErrNotFound = errors.New("record not found")

// ErrQueueFull is returned when the submission queue cannot take
// another entry.
var ErrQueueFull = errors.New("submission queue is full")

// Store is the record collaborator of the pipeline. Implementations
// must be safe for concurrent use. Updates are whole-record
// read-modify-write; callers own the merge.
type Store interface {
	CreateJob(ctx context.Context, j *ImportJob) error
	GetJob(ctx context.Context, id string) (*ImportJob, error)
	UpdateJob(ctx context.Context, j *ImportJob) error
	ListJobs(ctx context.Context) ([]*ImportJob, error)

	CreateBatch(ctx context.Context, b *CommunicationBatch) error
	GetBatch(ctx context.Context, id string) (*CommunicationBatch, error)
	UpdateBatch(ctx context.Context, b *CommunicationBatch) error
	ListBatches(ctx context.Context) ([]*CommunicationBatch, error)
}

// Submission is one queued request to transmit a batch.
type Submission struct {
	BatchID string
	JobIDs  []string
}

// Queue hands submissions from the API to the worker. Enqueue never
// blocks; a full queue is reported to the caller instead.
type Queue struct {
	ch chan Submission
}

// NewQueue creates a queue with the given capacity.
func NewQueue(capacity int) *Queue {
	return &Queue{ch: make(chan Submission, capacity)}
}

// Enqueue adds a submission, or returns ErrQueueFull.
func (q *Queue) Enqueue(s Submission) error {
	select {
	case q.ch <- s:
		return nil
	default:
		return ErrQueueFull
	}
}

// Next blocks until a submission is available or ctx is done.
func (q *Queue) Next(ctx context.Context) (Submission, error) {
	select {
	case s := <-q.ch:
		return s, nil
	case <-ctx.Done():
		return Submission{}, ctx.Err()
	}
}
