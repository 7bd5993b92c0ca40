package sesclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/XimoLopez/ses-hospedajes/internal/job"
	"github.com/XimoLopez/ses-hospedajes/internal/logging"
	"github.com/XimoLopez/ses-hospedajes/internal/sesxml"
)

// HTTPError is a non-recoverable transport-level failure.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, truncate(e.Body, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Client talks to one SES endpoint with one set of credentials.
type Client struct {
	endpoint       string
	creds          sesxml.Credentials
	httpClient     *http.Client
	timings        *Timings
	log            *logging.Logger
	reconcileDelay time.Duration
}

// Options tune transport behavior; zero values get serviceable
// defaults.
type Options struct {
	Timeout        time.Duration
	ReconcileDelay time.Duration
	Timings        *Timings
	Logger         *logging.Logger
}

// NewClient builds a client with its own transport. The TLS config is
// scoped to this transport; the registry's endpoints still require
// client-initiated renegotiation, which Go disables globally by
// default.
func NewClient(endpoint string, creds sesxml.Credentials, opts Options) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	delay := opts.ReconcileDelay
	if delay == 0 {
		delay = 5 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = logging.Default()
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion:    tls.VersionTLS12,
			Renegotiation: tls.RenegotiateOnceAsClient,
		},
	}

	return &Client{
		endpoint: endpoint,
		creds:    creds,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		timings:        opts.Timings,
		log:            log,
		reconcileDelay: delay,
	}
}

// SubmitResult reports how the registry answered a submission.
type SubmitResult struct {
	Accepted bool
	BatchID  string
	Errors   []ErrorDetail
	XMLHash  string
	Response string
}

// Submit encodes, compresses, wraps and posts one communication. A
// returned error means the request never produced a classifiable
// response; a rejection is reported through the result, not the error.
func (c *Client) Submit(ctx context.Context, req sesxml.Request) (*SubmitResult, error) {
	buildStart := time.Now()
	comXML, err := sesxml.BuildCommunication(req)
	if err != nil {
		return nil, err
	}
	c.timings.ObserveBuild(time.Since(buildStart))

	zipStart := time.Now()
	payload, err := CompressPayload(comXML)
	if err != nil {
		return nil, err
	}
	c.timings.ObserveCompress(time.Since(zipStart))

	envelope, err := sesxml.BuildEnvelope(c.creds, req.Type, payload)
	if err != nil {
		return nil, err
	}

	respBody, err := c.post(ctx, envelope)
	if err != nil {
		return nil, err
	}

	result := Classify(respBody)
	c.log.Info("submission classified",
		"accepted", result.Accepted,
		"batchId", result.BatchID,
		"errors", len(result.Errors))

	return &SubmitResult{
		Accepted: result.Accepted,
		BatchID:  result.BatchID,
		Errors:   result.Errors,
		XMLHash:  XMLHash(comXML),
		Response: string(respBody),
	}, nil
}

// post performs one SOAP call. A 500 still returns its body because
// the registry is known to answer business acceptances with that
// status; every other 4xx/5xx is fatal.
func (c *Client) post(ctx context.Context, envelope []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(envelope))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "text/xml; charset=utf-8")
	httpReq.Header.Set("SOAPAction", `""`)
	httpReq.SetBasicAuth(c.creds.Username, c.creds.Password)
	httpReq.ContentLength = int64(len(envelope))
	httpReq.Close = true

	c.timings.IncAttempt()
	httpStart := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	c.timings.ObserveHTTP(time.Since(httpStart))
	if err != nil {
		return nil, fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusInternalServerError {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}

// Confirmation says how much of an outcome was verified against the
// registry rather than assumed.
type Confirmation string

const (
	ConfirmedAccepted   Confirmation = "confirmed_accepted"
	ConfirmedPartial    Confirmation = "confirmed_partial"
	AcceptedUnconfirmed Confirmation = "accepted_unconfirmed"
)

// Outcome is the reconciled state of a submitted batch.
type Outcome struct {
	Confirmation  Confirmation
	Status        job.BatchStatus
	AcceptedCount int
	RejectedCount int
	Errors        []ErrorDetail
}

// Reconcile waits for the registry to process a batch, then queries
// its status and counts per-guest rejections. A failed or unreadable
// query degrades to an optimistic full accept; the submission itself
// already succeeded and must not be reported as lost.
func (c *Client) Reconcile(ctx context.Context, batchID string, guestCount int) Outcome {
	optimistic := Outcome{
		Confirmation:  AcceptedUnconfirmed,
		Status:        job.BatchAccepted,
		AcceptedCount: guestCount,
	}

	select {
	case <-ctx.Done():
		return optimistic
	case <-time.After(c.reconcileDelay):
	}

	query, err := sesxml.BuildBatchQuery(c.creds, batchID)
	if err != nil {
		c.log.Warn("batch query build failed", "batchId", batchID, "error", err)
		return optimistic
	}

	respBody, err := c.post(ctx, query)
	if err != nil {
		c.log.Warn("batch status query failed", "batchId", batchID, "error", err)
		return optimistic
	}

	errs := extractErrors(string(respBody))
	state := firstMatch(stateRe, string(respBody))
	c.log.Info("batch status", "batchId", batchID, "estado", state, "errors", len(errs))

	if len(errs) == 0 {
		return Outcome{
			Confirmation:  ConfirmedAccepted,
			Status:        job.BatchAccepted,
			AcceptedCount: guestCount,
		}
	}

	rejected := len(errs)
	if rejected > guestCount {
		rejected = guestCount
	}
	return Outcome{
		Confirmation:  ConfirmedPartial,
		Status:        job.BatchPartialRejected,
		AcceptedCount: guestCount - rejected,
		RejectedCount: rejected,
		Errors:        errs,
	}
}
