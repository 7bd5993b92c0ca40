// Package job defines the persisted record shapes of the pipeline
// and the store that keeps them. The store is a plain create/read/
// update collaborator keyed by opaque ids; it carries no
// transactional semantics beyond read-modify-write of one record.
package job

import (
	"time"

	"github.com/XimoLopez/ses-hospedajes/internal/ingest"
	"github.com/XimoLopez/ses-hospedajes/internal/validate"
)

// CommunicationType selects the government schema variant.
type CommunicationType string

const (
	TypeReservation    CommunicationType = "reserva"
	TypeTravelerReport CommunicationType = "parte_viajeros"
)

// ImportJobStatus is the lifecycle of an uploaded batch of rows.
type ImportJobStatus string

const (
	JobUploaded     ImportJobStatus = "uploaded"
	JobValidating   ImportJobStatus = "validating"
	JobValidated    ImportJobStatus = "validated"
	JobSending      ImportJobStatus = "sending"
	JobSent         ImportJobStatus = "sent"
	JobError        ImportJobStatus = "error"
	JobPartialError ImportJobStatus = "partial_error"
)

// BatchStatus is the lifecycle of one submission attempt.
type BatchStatus string

const (
	BatchPending         BatchStatus = "pending"
	BatchProcessing      BatchStatus = "processing"
	BatchAccepted        BatchStatus = "accepted"
	BatchPartialRejected BatchStatus = "partial_rejected"
	BatchRejected        BatchStatus = "rejected"
	BatchError           BatchStatus = "error"
)

// ContractMetadata holds the communication-level fields shared by all
// guests of one submission. Global entry/exit dates override the
// per-guest dates when present.
type ContractMetadata struct {
	Reference    string `json:"referenciaContrato,omitempty"`
	ContractDate string `json:"fechaContrato,omitempty"` // YYYY-MM-DD
	EntryDate    string `json:"fechaEntradaGlobal,omitempty"`
	ExitDate     string `json:"fechaSalidaGlobal,omitempty"`
	Occupants    int    `json:"numeroPersonasGlobal,omitempty"`
	PaymentType  string `json:"tipoPago,omitempty"`
	PaymentDate  string `json:"fechaPago,omitempty"`
}

// ImportJob is one uploaded, normalized and validated batch of rows.
type ImportJob struct {
	ID         string            `json:"id"`
	Filename   string            `json:"filename"`
	RowCount   int               `json:"rowCount"`
	ValidCount int               `json:"validCount"`
	ErrorCount int               `json:"errorCount"`
	Status     ImportJobStatus   `json:"status"`
	Type       CommunicationType `json:"communicationType"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`

	Contract ContractMetadata `json:"contract"`

	Guests     []ingest.GuestRecord `json:"guests"`
	Validation *validate.Result     `json:"validationResult,omitempty"`
}

// SubmissionError is one rejection reason reported by the registry,
// kept verbatim on the batch record.
type SubmissionError struct {
	Code        string `json:"codigo"`
	Description string `json:"descripcion,omitempty"`
}

// CommunicationBatch is one submission attempt against the remote
// service and its (possibly reconciled) outcome.
type CommunicationBatch struct {
	ID            string            `json:"id"`
	JobID         string            `json:"importJobId"`
	SESBatchID    string            `json:"sesBatchId,omitempty"`
	Type          CommunicationType `json:"type"`
	Status        BatchStatus       `json:"status"`
	XMLHash       string            `json:"xmlHash,omitempty"`
	ItemCount     int               `json:"itemCount"`
	AcceptedCount int               `json:"acceptedCount"`
	RejectedCount int               `json:"rejectedCount"`
	Errors        []SubmissionError `json:"errors,omitempty"`
	Response      string            `json:"apiResponse,omitempty"`
	Confirmation  string            `json:"confirmation,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	SentAt        *time.Time        `json:"sentAt,omitempty"`
}
