// Package sesclient submits encoded communications to the SES
// Hospedajes SOAP endpoint and reconciles their acceptance state. The
// registry accepts a batch as a whole over HTTP and reports per-guest
// rejections only through a later status query, so submission and
// reconciliation are separate steps.
package sesclient

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// payloadEntryName is the fixed archive member name the registry
// expects inside the compressed payload.
const payloadEntryName = "comunicacion.xml"

// CompressPayload wraps the communication XML in a single-entry ZIP
// archive and returns it base64-encoded, ready for the envelope.
func CompressPayload(xmlData []byte) (string, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.Create(payloadEntryName)
	if err != nil {
		return "", fmt.Errorf("create zip entry: %w", err)
	}
	if _, err := w.Write(xmlData); err != nil {
		return "", fmt.Errorf("write zip entry: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("close zip: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// XMLHash returns a hex digest of the communication XML, kept on the
// batch record so a resubmission of identical content can be spotted.
func XMLHash(xmlData []byte) string {
	sum := sha256.Sum256(xmlData)
	return hex.EncodeToString(sum[:])
}
