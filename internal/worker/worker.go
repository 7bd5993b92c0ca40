// Package worker drains the submission queue and drives each batch
// through encoding, transmission and reconciliation, one at a time.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/XimoLopez/ses-hospedajes/internal/ingest"
	"github.com/XimoLopez/ses-hospedajes/internal/job"
	"github.com/XimoLopez/ses-hospedajes/internal/logging"
	"github.com/XimoLopez/ses-hospedajes/internal/sesclient"
	"github.com/XimoLopez/ses-hospedajes/internal/sesxml"
)

// Submitter is the remote side of the pipeline, satisfied by
// sesclient.Client.
type Submitter interface {
	Submit(ctx context.Context, req sesxml.Request) (*sesclient.SubmitResult, error)
	Reconcile(ctx context.Context, batchID string, guestCount int) sesclient.Outcome
}

// Worker processes queued submissions sequentially.
type Worker struct {
	store             job.Store
	queue             *job.Queue
	client            Submitter
	establishmentCode string
	log               *logging.Logger
}

// New creates a worker.
func New(store job.Store, queue *job.Queue, client Submitter, establishmentCode string) *Worker {
	return &Worker{
		store:             store,
		queue:             queue,
		client:            client,
		establishmentCode: establishmentCode,
		log:               logging.Default(),
	}
}

// Run blocks until ctx is canceled, processing submissions in arrival
// order. One batch at a time: the registry throttles concurrent
// submissions from the same lessor.
func (w *Worker) Run(ctx context.Context) {
	for {
		sub, err := w.queue.Next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			w.log.Error("queue error", "error", err)
			continue
		}
		w.Process(ctx, sub)
	}
}

// Process runs one submission end to end and records the outcome on
// the batch and its jobs.
func (w *Worker) Process(ctx context.Context, sub job.Submission) {
	batch, err := w.store.GetBatch(ctx, sub.BatchID)
	if err != nil {
		w.log.Error("batch lookup failed", "batchId", sub.BatchID, "error", err)
		return
	}

	batch.Status = job.BatchProcessing
	if err := w.store.UpdateBatch(ctx, batch); err != nil {
		w.log.Warn("batch status update failed", "batchId", batch.ID, "error", err)
	}

	jobs := make([]*job.ImportJob, 0, len(sub.JobIDs))
	var guests []ingest.GuestRecord
	for _, id := range sub.JobIDs {
		j, err := w.store.GetJob(ctx, id)
		if err != nil {
			w.log.Error("job lookup failed", "jobId", id, "error", err)
			w.fail(ctx, batch, jobs, "job lookup failed: "+err.Error())
			return
		}
		jobs = append(jobs, j)
		if j.Validation != nil {
			guests = append(guests, j.Validation.ValidGuests...)
		}
	}
	if len(guests) == 0 {
		w.fail(ctx, batch, jobs, "no valid guests in batch")
		return
	}

	primary := jobs[0]
	req := sesxml.Request{
		EstablishmentCode: w.establishmentCode,
		Type:              primary.Type,
		Guests:            guests,
		Contract:          primary.Contract,
	}

	res, err := w.client.Submit(ctx, req)
	if err != nil {
		w.log.Error("submission failed", "batchId", batch.ID, "error", err)
		w.fail(ctx, batch, jobs, err.Error())
		return
	}

	now := time.Now().UTC()
	batch.SentAt = &now
	batch.SESBatchID = res.BatchID
	batch.XMLHash = res.XMLHash
	batch.Response = res.Response

	if !res.Accepted {
		w.log.Warn("batch rejected", "batchId", batch.ID, "errors", len(res.Errors))
		batch.Status = job.BatchRejected
		batch.RejectedCount = len(guests)
		batch.Errors = res.Errors
		if err := w.store.UpdateBatch(ctx, batch); err != nil {
			w.log.Warn("batch update failed", "batchId", batch.ID, "error", err)
		}
		w.setJobStatus(ctx, jobs, job.JobError)
		return
	}

	outcome := sesclient.Outcome{
		Confirmation:  sesclient.AcceptedUnconfirmed,
		Status:        job.BatchAccepted,
		AcceptedCount: len(guests),
	}
	if res.BatchID != "" {
		outcome = w.client.Reconcile(ctx, res.BatchID, len(guests))
	}

	batch.Status = outcome.Status
	batch.AcceptedCount = outcome.AcceptedCount
	batch.RejectedCount = outcome.RejectedCount
	batch.Errors = outcome.Errors
	batch.Confirmation = string(outcome.Confirmation)
	if err := w.store.UpdateBatch(ctx, batch); err != nil {
		w.log.Warn("batch update failed", "batchId", batch.ID, "error", err)
	}

	jobStatus := job.JobSent
	if outcome.RejectedCount > 0 {
		jobStatus = job.JobPartialError
	}
	w.setJobStatus(ctx, jobs, jobStatus)

	w.log.Info("batch processed",
		"batchId", batch.ID,
		"sesBatchId", batch.SESBatchID,
		"status", batch.Status,
		"accepted", batch.AcceptedCount,
		"rejected", batch.RejectedCount)
}

func (w *Worker) fail(ctx context.Context, batch *job.CommunicationBatch, jobs []*job.ImportJob, reason string) {
	batch.Status = job.BatchError
	if batch.Response == "" {
		batch.Response = reason
	}
	if err := w.store.UpdateBatch(ctx, batch); err != nil {
		w.log.Warn("batch update failed", "batchId", batch.ID, "error", err)
	}
	w.setJobStatus(ctx, jobs, job.JobError)
}

func (w *Worker) setJobStatus(ctx context.Context, jobs []*job.ImportJob, status job.ImportJobStatus) {
	for _, j := range jobs {
		j.Status = status
		if err := w.store.UpdateJob(ctx, j); err != nil {
			w.log.Warn("job status update failed", "jobId", j.ID, "error", err)
		}
	}
}
