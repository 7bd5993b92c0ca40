// Package httpapi exposes the pipeline over HTTP: upload rows, watch
// validation, trigger submission, inspect batch outcomes.
package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/XimoLopez/ses-hospedajes/internal/ingest"
	"github.com/XimoLopez/ses-hospedajes/internal/job"
	"github.com/XimoLopez/ses-hospedajes/internal/logging"
	"github.com/XimoLopez/ses-hospedajes/internal/sesclient"
	"github.com/XimoLopez/ses-hospedajes/internal/validate"
	"github.com/XimoLopez/ses-hospedajes/internal/version"
)

// Handler handles HTTP requests.
type Handler struct {
	store   job.Store
	queue   *job.Queue
	timings *sesclient.Timings
	log     *logging.Logger
}

// NewHandler creates a new handler.
func NewHandler(store job.Store, queue *job.Queue, timings *sesclient.Timings) *Handler {
	return &Handler{
		store:   store,
		queue:   queue,
		timings: timings,
		log:     logging.Default(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// CreateJob handles POST /jobs: normalize the uploaded rows, validate
// them, and persist the result. Rows are spreadsheet cells keyed by
// header label; nothing is transmitted yet.
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Filename string                `json:"filename"`
		Type     job.CommunicationType `json:"type"`
		Rows     []map[string]string   `json:"rows"`
		Contract job.ContractMetadata  `json:"contract"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}
	if len(req.Rows) == 0 {
		http.Error(w, "rows is required", http.StatusBadRequest)
		return
	}
	if req.Type == "" {
		req.Type = job.TypeTravelerReport
	}
	if req.Type != job.TypeTravelerReport && req.Type != job.TypeReservation {
		http.Error(w, fmt.Sprintf("type must be %q or %q", job.TypeTravelerReport, job.TypeReservation), http.StatusBadRequest)
		return
	}

	guests := ingest.NormalizeRows(req.Rows)
	result := validate.Validate(guests)

	status := job.JobValidated
	if result.ValidCount == 0 {
		status = job.JobError
	}

	j := &job.ImportJob{
		Filename:   req.Filename,
		RowCount:   result.TotalRows,
		ValidCount: result.ValidCount,
		ErrorCount: result.ErrorCount,
		Status:     status,
		Type:       req.Type,
		Contract:   req.Contract,
		Guests:     guests,
		Validation: &result,
	}
	if err := h.store.CreateJob(r.Context(), j); err != nil {
		http.Error(w, fmt.Sprintf("Failed to create job: %v", err), http.StatusInternalServerError)
		return
	}

	h.log.Info("job created", "jobId", j.ID, "rows", j.RowCount, "valid", j.ValidCount, "errors", j.ErrorCount)
	writeJSON(w, http.StatusCreated, j)
}

// ListJobs handles GET /jobs.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.store.ListJobs(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs, "total": len(jobs)})
}

// GetJob handles GET /jobs/{jobId}.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	j, err := h.store.GetJob(r.Context(), mux.Vars(r)["jobId"])
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

// SendJob handles POST /jobs/{jobId}/send: create a communication
// batch over the job's valid guests and queue it for the worker.
// Additional job ids in the body are merged into the same batch; the
// addressed job's type and contract govern the whole submission.
func (h *Handler) SendJob(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobId"]

	var req struct {
		JobIDs []string `json:"jobIds"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
			return
		}
	}

	jobIDs := []string{jobID}
	seen := map[string]bool{jobID: true}
	for _, id := range req.JobIDs {
		if !seen[id] {
			seen[id] = true
			jobIDs = append(jobIDs, id)
		}
	}

	itemCount := 0
	primary := (*job.ImportJob)(nil)
	loaded := make([]*job.ImportJob, 0, len(jobIDs))
	for _, id := range jobIDs {
		j, err := h.store.GetJob(r.Context(), id)
		if err != nil {
			if errors.Is(err, job.ErrNotFound) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if primary == nil {
			primary = j
		}
		itemCount += j.ValidCount
		loaded = append(loaded, j)
	}
	if itemCount == 0 {
		http.Error(w, "no valid guests to send", http.StatusBadRequest)
		return
	}

	b := &job.CommunicationBatch{
		ID:        uuid.New().String(),
		JobID:     primary.ID,
		Type:      primary.Type,
		Status:    job.BatchPending,
		ItemCount: itemCount,
	}
	if err := h.store.CreateBatch(r.Context(), b); err != nil {
		http.Error(w, fmt.Sprintf("Failed to create batch: %v", err), http.StatusInternalServerError)
		return
	}

	if err := h.queue.Enqueue(job.Submission{BatchID: b.ID, JobIDs: jobIDs}); err != nil {
		b.Status = job.BatchError
		b.Response = err.Error()
		h.store.UpdateBatch(r.Context(), b)
		http.Error(w, "Queue is full, please try again later", http.StatusTooManyRequests)
		return
	}

	for _, j := range loaded {
		j.Status = job.JobSending
		if err := h.store.UpdateJob(r.Context(), j); err != nil {
			h.log.Warn("job status update failed", "jobId", j.ID, "error", err)
		}
	}

	h.log.Info("batch queued", "batchId", b.ID, "jobs", len(jobIDs), "items", itemCount)
	writeJSON(w, http.StatusAccepted, map[string]any{
		"batchId": b.ID,
		"status":  b.Status,
		"jobIds":  jobIDs,
	})
}

// GetBatch handles GET /batches/{batchId}.
func (h *Handler) GetBatch(w http.ResponseWriter, r *http.Request) {
	b, err := h.store.GetBatch(r.Context(), mux.Vars(r)["batchId"])
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// Dashboard handles GET /dashboard: aggregate counts plus transport
// timings.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.store.ListJobs(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	batches, err := h.store.ListBatches(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	jobsByStatus := make(map[job.ImportJobStatus]int)
	totalGuests := 0
	for _, j := range jobs {
		jobsByStatus[j.Status]++
		totalGuests += j.RowCount
	}

	batchesByStatus := make(map[job.BatchStatus]int)
	accepted, rejected := 0, 0
	for _, b := range batches {
		batchesByStatus[b.Status]++
		accepted += b.AcceptedCount
		rejected += b.RejectedCount
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"jobs": map[string]any{
			"total":    len(jobs),
			"byStatus": jobsByStatus,
			"guests":   totalGuests,
		},
		"batches": map[string]any{
			"total":    len(batches),
			"byStatus": batchesByStatus,
			"accepted": accepted,
			"rejected": rejected,
		},
		"timings": h.timings.Snapshot(),
	})
}

// Version handles GET /version.
func (h *Handler) Version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, version.Info())
}
