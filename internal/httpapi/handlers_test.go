package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/XimoLopez/ses-hospedajes/internal/ingest"
	"github.com/XimoLopez/ses-hospedajes/internal/job"
	"github.com/XimoLopez/ses-hospedajes/internal/sesclient"
)

func validRow() map[string]string {
	return map[string]string{
		ingest.FieldGivenName:      "María",
		ingest.FieldSurnames:       "García López",
		ingest.FieldBirthDate:      "15/05/1990",
		ingest.FieldNationality:    "España",
		ingest.FieldDocumentType:   "DNI",
		ingest.FieldDocumentNumber: "12345678Z",
		ingest.FieldAddress:        "Calle Mayor 1",
		ingest.FieldCity:           "Madrid",
		ingest.FieldProvince:       "Madrid",
		ingest.FieldPostalCode:     "28001",
		ingest.FieldAddressCountry: "España",
		ingest.FieldPhone:          "+34600111222",
		ingest.FieldEntryDate:      "01/07/2026",
		ingest.FieldExitDate:       "05/07/2026",
	}
}

type testEnv struct {
	store  *job.MemoryStore
	queue  *job.Queue
	server http.Handler
}

func newTestEnv() *testEnv {
	store := job.NewMemoryStore()
	queue := job.NewQueue(10)
	h := NewHandler(store, queue, sesclient.NewTimings())
	return &testEnv{store: store, queue: queue, server: NewRouter(h, "", "")}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) createJob(t *testing.T, rows []map[string]string) job.ImportJob {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/jobs", map[string]any{
		"filename": "guests.xlsx",
		"rows":     rows,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create job: status %d, body %s", rec.Code, rec.Body)
	}
	var j job.ImportJob
	if err := json.Unmarshal(rec.Body.Bytes(), &j); err != nil {
		t.Fatal(err)
	}
	return j
}

func TestCreateJob(t *testing.T) {
	env := newTestEnv()
	j := env.createJob(t, []map[string]string{validRow()})

	if j.ID == "" {
		t.Fatal("no job id")
	}
	if j.Status != job.JobValidated {
		t.Errorf("status = %q", j.Status)
	}
	if j.RowCount != 1 || j.ValidCount != 1 || j.ErrorCount != 0 {
		t.Errorf("counts = %d/%d/%d", j.RowCount, j.ValidCount, j.ErrorCount)
	}
	if j.Type != job.TypeTravelerReport {
		t.Errorf("default type = %q", j.Type)
	}
	if len(j.Guests) != 1 || j.Guests[0].GivenName != "María" {
		t.Errorf("guests = %+v", j.Guests)
	}
}

func TestCreateJobAllRowsInvalid(t *testing.T) {
	env := newTestEnv()
	j := env.createJob(t, []map[string]string{{ingest.FieldGivenName: "Solo Nombre"}})

	if j.Status != job.JobError {
		t.Errorf("status = %q, want %q", j.Status, job.JobError)
	}
	if j.ValidCount != 0 || j.ErrorCount != 1 {
		t.Errorf("counts = %d/%d", j.ValidCount, j.ErrorCount)
	}
}

func TestCreateJobBadRequests(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodPost, "/jobs", map[string]any{"rows": []map[string]string{}})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty rows: status %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/jobs", map[string]any{
		"rows": []map[string]string{validRow()},
		"type": "checkin",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad type: status %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/jobs", bytes.NewBufferString("{not json"))
	rec = httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad json: status %d", rec.Code)
	}
}

func TestGetJob(t *testing.T) {
	env := newTestEnv()
	j := env.createJob(t, []map[string]string{validRow()})

	rec := env.do(t, http.MethodGet, "/jobs/"+j.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/jobs/does-not-exist", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing job: status %d", rec.Code)
	}
}

func TestListJobs(t *testing.T) {
	env := newTestEnv()
	env.createJob(t, []map[string]string{validRow()})
	env.createJob(t, []map[string]string{validRow()})

	rec := env.do(t, http.MethodGet, "/jobs", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var resp struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 2 {
		t.Errorf("total = %d", resp.Total)
	}
}

func TestSendJob(t *testing.T) {
	env := newTestEnv()
	j := env.createJob(t, []map[string]string{validRow()})

	rec := env.do(t, http.MethodPost, "/jobs/"+j.ID+"/send", nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body)
	}
	var resp struct {
		BatchID string   `json:"batchId"`
		Status  string   `json:"status"`
		JobIDs  []string `json:"jobIds"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != string(job.BatchPending) || len(resp.JobIDs) != 1 {
		t.Errorf("response = %+v", resp)
	}

	b, err := env.store.GetBatch(context.Background(), resp.BatchID)
	if err != nil {
		t.Fatalf("batch not persisted: %v", err)
	}
	if b.JobID != j.ID || b.ItemCount != 1 {
		t.Errorf("batch = %+v", b)
	}

	updated, _ := env.store.GetJob(context.Background(), j.ID)
	if updated.Status != job.JobSending {
		t.Errorf("job status = %q", updated.Status)
	}

	sub, err := env.queue.Next(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sub.BatchID != resp.BatchID {
		t.Errorf("queued batch = %q", sub.BatchID)
	}
}

func TestSendJobMergesAdditionalJobs(t *testing.T) {
	env := newTestEnv()
	j1 := env.createJob(t, []map[string]string{validRow()})
	j2 := env.createJob(t, []map[string]string{validRow()})

	rec := env.do(t, http.MethodPost, "/jobs/"+j1.ID+"/send", map[string]any{
		"jobIds": []string{j2.ID},
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body)
	}
	var resp struct {
		BatchID string   `json:"batchId"`
		JobIDs  []string `json:"jobIds"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.JobIDs) != 2 {
		t.Fatalf("jobIds = %v", resp.JobIDs)
	}

	b, _ := env.store.GetBatch(context.Background(), resp.BatchID)
	if b.ItemCount != 2 {
		t.Errorf("itemCount = %d", b.ItemCount)
	}
	if b.JobID != j1.ID {
		t.Errorf("primary job = %q", b.JobID)
	}
}

func TestSendJobDeduplicatesJobIDs(t *testing.T) {
	env := newTestEnv()
	j1 := env.createJob(t, []map[string]string{validRow()})
	j2 := env.createJob(t, []map[string]string{validRow()})

	rec := env.do(t, http.MethodPost, "/jobs/"+j1.ID+"/send", map[string]any{
		"jobIds": []string{j2.ID, j2.ID, j1.ID},
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body)
	}
	var resp struct {
		BatchID string   `json:"batchId"`
		JobIDs  []string `json:"jobIds"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.JobIDs) != 2 {
		t.Fatalf("repeated ids must collapse, got %v", resp.JobIDs)
	}

	b, _ := env.store.GetBatch(context.Background(), resp.BatchID)
	if b.ItemCount != 2 {
		t.Errorf("itemCount = %d, repeated job double-counted", b.ItemCount)
	}
}

func TestSendJobWithoutValidGuests(t *testing.T) {
	env := newTestEnv()
	j := env.createJob(t, []map[string]string{{ingest.FieldGivenName: "Solo Nombre"}})

	rec := env.do(t, http.MethodPost, "/jobs/"+j.ID+"/send", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status %d", rec.Code)
	}
}

func TestSendJobQueueFull(t *testing.T) {
	store := job.NewMemoryStore()
	queue := job.NewQueue(0)
	h := NewHandler(store, queue, nil)
	env := &testEnv{store: store, queue: queue, server: NewRouter(h, "", "")}

	j := env.createJob(t, []map[string]string{validRow()})
	rec := env.do(t, http.MethodPost, "/jobs/"+j.ID+"/send", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestGetBatchNotFound(t *testing.T) {
	env := newTestEnv()
	rec := env.do(t, http.MethodGet, "/batches/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status %d", rec.Code)
	}
}

func TestDashboard(t *testing.T) {
	env := newTestEnv()
	env.createJob(t, []map[string]string{validRow(), validRow()})

	rec := env.do(t, http.MethodGet, "/dashboard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var resp struct {
		Jobs struct {
			Total  int `json:"total"`
			Guests int `json:"guests"`
		} `json:"jobs"`
		Batches struct {
			Total int `json:"total"`
		} `json:"batches"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Jobs.Total != 1 || resp.Jobs.Guests != 2 || resp.Batches.Total != 0 {
		t.Errorf("dashboard = %+v", resp)
	}
}

func TestVersionEndpoint(t *testing.T) {
	env := newTestEnv()
	rec := env.do(t, http.MethodGet, "/version", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var info map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatal(err)
	}
	if info["name"] != "ses-hospedajes" {
		t.Errorf("name = %q", info["name"])
	}
}
