// Package catalog holds the static lookup tables used to normalize
// guest data to the codes required by the SES Hospedajes schemas
// (RD 933/2021). All functions are pure and total: unmatched input is
// either passed through or mapped to a documented default, never an
// error. Both the normalizer and the XML encoder go through this
// package so ingestion and encoding can never disagree on a code.
package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Document type letter codes. The letter codes are the canonical
// internal representation; the wire format wants the numeric codes
// from DocumentTypeCode.
const (
	DocTypeDNI             = "D"
	DocTypePassport        = "P"
	DocTypeDrivingLicence  = "C"
	DocTypeIdentityCard    = "I"
	DocTypeResidencePermit = "N"
	DocTypeNIE             = "X"
)

// docTypeLabels maps free-text document-type labels to letter codes.
var docTypeLabels = map[string]string{
	"dni":                             DocTypeDNI,
	"d.n.i.":                          DocTypeDNI,
	"d.n.i":                           DocTypeDNI,
	"nif":                             DocTypeDNI,
	"documento nacional de identidad": DocTypeDNI,
	"pasaporte":                       DocTypePassport,
	"passport":                        DocTypePassport,
	"permiso de conducir":             DocTypeDrivingLicence,
	"conducir":                        DocTypeDrivingLicence,
	"driving license":                 DocTypeDrivingLicence,
	"carta de identidad":              DocTypeIdentityCard,
	"identity card":                   DocTypeIdentityCard,
	"id card":                         DocTypeIdentityCard,
	"identidad":                       DocTypeIdentityCard,
	"permiso de residencia":           DocTypeResidencePermit,
	"residency permit":                DocTypeResidencePermit,
	"tie":                             DocTypeResidencePermit,
	"nie":                             DocTypeNIE,
	"n.i.e.":                          DocTypeNIE,
	"n.i.e":                           DocTypeNIE,
}

// docTypeCodes maps letter codes to the numeric codes the wire
// schema expects.
var docTypeCodes = map[string]string{
	DocTypeDNI:             "1",
	DocTypePassport:        "2",
	DocTypeDrivingLicence:  "3",
	DocTypeResidencePermit: "4",
	DocTypeNIE:             "4",
	DocTypeIdentityCard:    "5",
}

// DocumentTypeNames maps wire numeric codes to display names. Used by
// validation to decide whether a code is known.
var DocumentTypeNames = map[string]string{
	"1": "DNI",
	"2": "Pasaporte",
	"3": "Permiso de conducir",
	"4": "Permiso de residencia / TIE / NIE",
	"5": "Carta de identidad",
}

// NormalizeDocumentType maps a raw document-type value to a letter
// code. Single letters and digits pass through; free-text labels go
// through the label table; anything unrecognized defaults to DNI.
func NormalizeDocumentType(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) == 1 {
		upper := strings.ToUpper(trimmed)
		c := upper[0]
		if (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			return upper
		}
	}
	if code, ok := docTypeLabels[strings.ToLower(trimmed)]; ok {
		return code
	}
	return DocTypeDNI
}

// DocumentTypeCode converts a letter code to the numeric code used in
// the communication XML. Numeric input passes through; unknown input
// maps to the DNI code.
func DocumentTypeCode(letter string) string {
	trimmed := strings.TrimSpace(letter)
	if len(trimmed) == 1 && trimmed[0] >= '0' && trimmed[0] <= '9' {
		return trimmed
	}
	if code, ok := docTypeCodes[strings.ToUpper(trimmed)]; ok {
		return code
	}
	return "1"
}

// KnownDocumentCode reports whether a numeric wire code is in the
// RD 933/2021 catalog.
func KnownDocumentCode(code string) bool {
	_, ok := DocumentTypeNames[code]
	return ok
}

// KnownDocumentType reports whether a normalized document-type value
// (letter or numeric) belongs to the catalog.
func KnownDocumentType(code string) bool {
	trimmed := strings.ToUpper(strings.TrimSpace(code))
	if _, ok := docTypeCodes[trimmed]; ok {
		return true
	}
	return KnownDocumentCode(trimmed)
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// fold lowercases, trims and strips diacritics so "Málaga", "malaga"
// and "MALAGA " all hit the same table row.
func fold(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}
