package job

import (
	"context"
	"errors"
	"testing"

	"github.com/XimoLopez/ses-hospedajes/internal/ingest"
)

func TestMemoryStoreJobLifecycle(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	j := &ImportJob{
		Filename: "guests.csv",
		RowCount: 3,
		Status:   JobValidated,
		Type:     TypeTravelerReport,
		Guests:   []ingest.GuestRecord{{RowNumber: 2, GivenName: "Ana"}},
	}
	if err := s.CreateJob(ctx, j); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if j.ID == "" {
		t.Fatal("CreateJob did not assign an id")
	}

	got, err := s.GetJob(ctx, j.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Filename != "guests.csv" || len(got.Guests) != 1 {
		t.Errorf("got %+v", got)
	}

	got.Status = JobSending
	if err := s.UpdateJob(ctx, got); err != nil {
		t.Fatalf("UpdateJob: %v", err)
	}
	again, _ := s.GetJob(ctx, j.ID)
	if again.Status != JobSending {
		t.Errorf("status = %q after update", again.Status)
	}

	if _, err := s.GetJob(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	j := &ImportJob{Filename: "a.csv", Status: JobUploaded}
	if err := s.CreateJob(ctx, j); err != nil {
		t.Fatal(err)
	}

	got, _ := s.GetJob(ctx, j.ID)
	got.Filename = "mutated.csv"

	fresh, _ := s.GetJob(ctx, j.ID)
	if fresh.Filename != "a.csv" {
		t.Error("store leaked a mutable reference")
	}
}

func TestMemoryStoreBatchLifecycle(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	b := &CommunicationBatch{JobID: "job-1", Type: TypeReservation, Status: BatchPending, ItemCount: 5}
	if err := s.CreateBatch(ctx, b); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	b.Status = BatchAccepted
	b.SESBatchID = "L123"
	b.AcceptedCount = 5
	if err := s.UpdateBatch(ctx, b); err != nil {
		t.Fatalf("UpdateBatch: %v", err)
	}

	got, err := s.GetBatch(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBatch: %v", err)
	}
	if got.Status != BatchAccepted || got.SESBatchID != "L123" || got.AcceptedCount != 5 {
		t.Errorf("got %+v", got)
	}

	if err := s.UpdateBatch(ctx, &CommunicationBatch{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestQueue(t *testing.T) {
	q := NewQueue(1)

	if err := q.Enqueue(Submission{BatchID: "b1"}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := q.Enqueue(Submission{BatchID: "b2"}); !errors.Is(err, ErrQueueFull) {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}

	got, err := q.Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got.BatchID != "b1" {
		t.Errorf("got %+v", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := q.Next(ctx); err == nil {
		t.Error("Next should fail on canceled context")
	}
}
