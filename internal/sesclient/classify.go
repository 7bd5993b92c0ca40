package sesclient

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/XimoLopez/ses-hospedajes/internal/job"
)

// ErrorDetail is one rejection reason extracted from a response. It
// aliases the batch record's error shape so outcomes persist without
// conversion.
type ErrorDetail = job.SubmissionError

// Result is the classified outcome of a submission response.
type Result struct {
	Accepted bool
	BatchID  string
	Errors   []ErrorDetail
}

// The registry's responses are not schema-stable across environments,
// so classification scans for known markers instead of unmarshalling
// into a fixed document shape.
var (
	faultRe      = regexp.MustCompile(`(?s)<faultstring[^>]*>(.*?)</faultstring>`)
	errorBlockRe = regexp.MustCompile(`(?s)<error>(.*?)</error>`)
	codeRe       = regexp.MustCompile(`(?s)<codigo[^>]*>(.*?)</codigo>`)
	descRe       = regexp.MustCompile(`(?s)<descripcion[^>]*>(.*?)</descripcion>`)
	messageRe    = regexp.MustCompile(`(?s)<mensaje[^>]*>(.*?)</mensaje>`)
	batchIDRe    = regexp.MustCompile(`(?s)<lote[^>]*>(.*?)</lote>`)
	stateRe      = regexp.MustCompile(`(?s)<estado[^>]*>(.*?)</estado>`)
)

func firstMatch(re *regexp.Regexp, body string) string {
	m := re.FindStringSubmatch(body)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// extractErrors collects every <error> block. Blocks without their own
// code get a positional placeholder so callers can still count and
// report them.
func extractErrors(body string) []ErrorDetail {
	var out []ErrorDetail
	for i, m := range errorBlockRe.FindAllStringSubmatch(body, -1) {
		block := m[1]
		code := firstMatch(codeRe, block)
		if code == "" {
			code = fmt.Sprintf("ERR_%d", i)
		}
		desc := firstMatch(descRe, block)
		if desc == "" {
			desc = firstMatch(messageRe, block)
		}
		out = append(out, ErrorDetail{Code: code, Description: desc})
	}
	return out
}

// Classify reads a submission response body in a fixed precedence
// order: a SOAP fault first, then explicit error blocks, then a
// non-zero global response code, and only then acceptance.
func Classify(body []byte) Result {
	s := string(body)

	if fault := firstMatch(faultRe, s); fault != "" {
		return Result{Errors: []ErrorDetail{{Code: "SOAP_FAULT", Description: fault}}}
	}

	if errs := extractErrors(s); len(errs) > 0 {
		return Result{Errors: errs, BatchID: firstMatch(batchIDRe, s)}
	}

	if code := firstMatch(codeRe, s); code != "" && code != "0" {
		desc := firstMatch(descRe, s)
		if desc == "" {
			desc = firstMatch(messageRe, s)
		}
		return Result{Errors: []ErrorDetail{{Code: code, Description: desc}}}
	}

	return Result{Accepted: true, BatchID: firstMatch(batchIDRe, s)}
}
