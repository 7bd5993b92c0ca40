// Package ingest turns tokenized spreadsheet rows into typed guest
// records. It does no validation: malformed values pass through so
// the validation engine can report them against the source row.
package ingest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/XimoLopez/ses-hospedajes/internal/catalog"
)

var (
	isoDateRe     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	isoDateTimeRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}`)
	dmyRe         = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)
	dmyTimeRe     = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})[T\s]+(\d{2}):(\d{2})(?::\d{2})?$`)
)

// NormalizeDate reformats the date shapes seen in the source
// spreadsheets to YYYY-MM-DD, or YYYY-MM-DDTHH:MM when a time of day
// is present. Unrecognized input is returned trimmed but otherwise
// unchanged; validation rejects it later with the row number
// attached. Normalizing an already-normalized value is a no-op.
func NormalizeDate(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	if isoDateRe.MatchString(trimmed) {
		return trimmed
	}
	if isoDateTimeRe.MatchString(trimmed) {
		return trimmed[:16]
	}
	if m := dmyRe.FindStringSubmatch(trimmed); m != nil {
		return fmt.Sprintf("%s-%s-%s", m[3], pad2(m[2]), pad2(m[1]))
	}
	if m := dmyTimeRe.FindStringSubmatch(trimmed); m != nil {
		return fmt.Sprintf("%s-%s-%sT%s:%s", m[3], pad2(m[2]), pad2(m[1]), m[4], m[5])
	}

	return trimmed
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// surnameParticles are linking particles that belong to the surname
// that follows them, not to a surname of their own.
var surnameParticles = map[string]bool{
	"de": true, "del": true, "la": true, "las": true,
	"los": true, "y": true, "san": true, "santa": true,
}

// SplitSurnames splits a full-surname string into first and second
// family name. One and two tokens map directly; longer inputs are
// grouped so particles attach to the following token ("de la Vega
// Carpio" -> "de la Vega", "Carpio"). A trailing particle fragment is
// reattached to the previous group. The second name is never
// non-empty while the first is empty.
func SplitSurnames(full string) (first, second string) {
	parts := strings.Fields(strings.TrimSpace(full))
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	case 2:
		return parts[0], parts[1]
	}

	var groups []string
	var current string
	for _, part := range parts {
		if current != "" {
			current += " "
		}
		current += part
		if !surnameParticles[strings.ToLower(part)] {
			groups = append(groups, current)
			current = ""
		}
	}
	if current != "" {
		if len(groups) > 0 {
			groups[len(groups)-1] += " " + current
		} else {
			groups = append(groups, current)
		}
	}

	if len(groups) == 1 {
		return groups[0], ""
	}
	return groups[0], strings.Join(groups[1:], " ")
}

// NormalizeRow converts one string-keyed row into a GuestRecord.
// rowNumber is the 1-based source row (header row included, so data
// starts at 2). Required fields normalize blank input to the empty
// string; optional fields stay empty when absent.
func NormalizeRow(row map[string]string, rowNumber int) GuestRecord {
	get := func(label string) string {
		return strings.TrimSpace(row[label])
	}

	first, second := SplitSurnames(get(FieldSurnames))

	nationality := get(FieldNationality)
	if nationality == "" {
		nationality = get(FieldAddressCountry)
	}

	postal := get(FieldPostalCode)
	if postal == "" {
		postal = get(FieldAddressZIP)
	}

	phone := get(FieldPhone)
	if phone == "" {
		phone = get(FieldPhoneOrEmail)
	}

	city := get(FieldCity)
	province := get(FieldProvince)

	return GuestRecord{
		RowNumber:        rowNumber,
		GivenName:        get(FieldGivenName),
		FirstSurname:     first,
		SecondSurname:    second,
		BirthDate:        NormalizeDate(get(FieldBirthDate)),
		Nationality:      catalog.NormalizeCountry(nationality),
		DocumentType:     catalog.NormalizeDocumentType(get(FieldDocumentType)),
		DocumentNumber:   get(FieldDocumentNumber),
		SupportNumber:    get(FieldSupportNumber),
		Address:          get(FieldAddress),
		AddressExtra:     get(FieldAddressExtra),
		City:             city,
		Province:         province,
		MunicipalityCode: catalog.MunicipalityCode(city, province, postal),
		PostalCode:       postal,
		Country:          catalog.NormalizeCountry(get(FieldAddressCountry)),
		Phone:            phone,
		Email:            get(FieldEmail),
		EntryDate:        NormalizeDate(get(FieldEntryDate)),
		ExitDate:         NormalizeDate(get(FieldExitDate)),
		Kinship:          get(FieldKinship),
		Role:             RoleTraveler,
	}
}

// NormalizeRows maps a slice of rows to guest records. Row numbers
// start at 2 to match the spreadsheet the operator is looking at.
func NormalizeRows(rows []map[string]string) []GuestRecord {
	guests := make([]GuestRecord, 0, len(rows))
	for i, row := range rows {
		guests = append(guests, NormalizeRow(row, i+2))
	}
	return guests
}
