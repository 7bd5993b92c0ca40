package validate

import (
	"testing"

	"github.com/XimoLopez/ses-hospedajes/internal/ingest"
)

func completeGuest(row int) ingest.GuestRecord {
	return ingest.GuestRecord{
		RowNumber:      row,
		GivenName:      "María",
		FirstSurname:   "García",
		SecondSurname:  "López",
		BirthDate:      "1985-07-23",
		Nationality:    "ESP",
		DocumentType:   "D",
		DocumentNumber: "12345678Z",
		Address:        "Calle Mayor 1",
		City:           "Madrid",
		Province:       "Madrid",
		PostalCode:     "28013",
		Country:        "ESP",
		Email:          "maria@example.com",
		EntryDate:      "2024-08-01",
		Role:           ingest.RoleTraveler,
	}
}

func TestValidateCompleteGuest(t *testing.T) {
	result := Validate([]ingest.GuestRecord{completeGuest(2)})

	if !result.IsValid {
		t.Fatalf("expected valid, got errors: %+v", result.Errors)
	}
	if result.ValidCount != 1 || result.ErrorCount != 0 {
		t.Errorf("counts = %d valid, %d errors", result.ValidCount, result.ErrorCount)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %+v", result.Warnings)
	}
}

func TestValidateCountsInvariant(t *testing.T) {
	ok := completeGuest(2)
	missing := completeGuest(3)
	missing.GivenName = ""
	alsoBad := completeGuest(4)
	alsoBad.BirthDate = "not a date"

	result := Validate([]ingest.GuestRecord{ok, missing, alsoBad})

	if result.ValidCount+result.ErrorCount != result.TotalRows {
		t.Errorf("validCount(%d) + errorCount(%d) != totalRows(%d)",
			result.ValidCount, result.ErrorCount, result.TotalRows)
	}
	if result.ValidCount != len(result.ValidGuests) {
		t.Errorf("ValidCount %d != len(ValidGuests) %d", result.ValidCount, len(result.ValidGuests))
	}
	if result.ValidCount != 1 {
		t.Errorf("ValidCount = %d, want 1", result.ValidCount)
	}
}

func TestValidateRequiredFields(t *testing.T) {
	clear := []struct {
		name  string
		field string
		apply func(*ingest.GuestRecord)
	}{
		{"missing name", "nombre", func(g *ingest.GuestRecord) { g.GivenName = "" }},
		{"missing surname", "primerApellido", func(g *ingest.GuestRecord) { g.FirstSurname = "" }},
		{"missing doc type", "tipoDocumento", func(g *ingest.GuestRecord) { g.DocumentType = "" }},
		{"missing doc number", "numeroDocumento", func(g *ingest.GuestRecord) { g.DocumentNumber = "" }},
		{"missing birth date", "fechaNacimiento", func(g *ingest.GuestRecord) { g.BirthDate = "" }},
		{"missing nationality", "nacionalidad", func(g *ingest.GuestRecord) { g.Nationality = "" }},
		{"missing address", "direccion", func(g *ingest.GuestRecord) { g.Address = "" }},
		{"missing city", "ciudad", func(g *ingest.GuestRecord) { g.City = "" }},
		{"missing country", "pais", func(g *ingest.GuestRecord) { g.Country = "" }},
		{"missing entry date", "fechaEntrada", func(g *ingest.GuestRecord) { g.EntryDate = "" }},
	}

	for _, tt := range clear {
		t.Run(tt.name, func(t *testing.T) {
			g := completeGuest(2)
			tt.apply(&g)
			result := Validate([]ingest.GuestRecord{g})

			if result.ValidCount != 0 {
				t.Fatalf("record with %s should be excluded", tt.name)
			}
			found := false
			for _, issue := range result.Errors {
				if issue.Field == tt.field && issue.Severity == SeverityError {
					found = true
				}
			}
			if !found {
				t.Errorf("no error for field %q, got %+v", tt.field, result.Errors)
			}
		})
	}
}

func TestValidateContactRule(t *testing.T) {
	g := completeGuest(2)
	g.Email = ""
	g.Phone = ""

	result := Validate([]ingest.GuestRecord{g})

	if len(result.Errors) != 1 {
		t.Fatalf("expected exactly one error, got %+v", result.Errors)
	}
	if result.Errors[0].Field != "contacto" || result.Errors[0].Row != 2 {
		t.Errorf("error = %+v", result.Errors[0])
	}
	if result.ErrorCount != 1 {
		t.Errorf("ErrorCount = %d, want 1", result.ErrorCount)
	}

	// Phone alone satisfies the rule.
	g.Phone = "+34 600 000 000"
	if r := Validate([]ingest.GuestRecord{g}); !r.IsValid {
		t.Errorf("phone-only guest should be valid, errors: %+v", r.Errors)
	}
}

func TestValidateSecondSurnameForDNI(t *testing.T) {
	g := completeGuest(2)
	g.SecondSurname = ""

	result := Validate([]ingest.GuestRecord{g})
	if result.IsValid {
		t.Fatal("DNI guest without second surname should be invalid")
	}
	if result.Errors[0].Field != "segundoApellido" {
		t.Errorf("field = %q", result.Errors[0].Field)
	}

	// Passports do not need a second surname.
	g.DocumentType = "P"
	g.DocumentNumber = "AB123456"
	if r := Validate([]ingest.GuestRecord{g}); !r.IsValid {
		t.Errorf("passport guest should be valid, errors: %+v", r.Errors)
	}
}

func TestValidateCalendarDates(t *testing.T) {
	tests := []struct {
		name  string
		date  string
		valid bool
	}{
		{"normal date", "2024-03-15", true},
		{"leap day on leap year", "2024-02-29", true},
		{"leap day on non-leap year", "2023-02-29", false},
		{"century non-leap", "1900-02-29", false},
		{"century leap", "2000-02-29", true},
		{"february 30", "2023-02-30", false},
		{"month 13", "2023-13-01", false},
		{"day zero", "2023-05-00", false},
		{"april 31", "2023-04-31", false},
		{"wrong shape", "15/03/2024", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := completeGuest(2)
			g.BirthDate = tt.date
			result := Validate([]ingest.GuestRecord{g})
			if got := result.IsValid; got != tt.valid {
				t.Errorf("date %q: valid = %v, want %v (errors %+v)", tt.date, got, tt.valid, result.Errors)
			}
		})
	}
}

func TestValidateDocumentNumberWarnings(t *testing.T) {
	tests := []struct {
		name     string
		docType  string
		number   string
		wantWarn bool
	}{
		{"dni ok", "D", "12345678Z", false},
		{"dni lowercase letter ok", "D", "12345678z", false},
		{"dni too short", "D", "1234567Z", true},
		{"nie ok", "X", "X1234567L", false},
		{"nie bad prefix", "X", "A1234567L", true},
		{"passport ok", "P", "AB123", false},
		{"passport too short", "P", "AB12", true},
		{"other type min length", "C", "AB1", false},
		{"other type too short", "C", "AB", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := completeGuest(2)
			g.DocumentType = tt.docType
			g.DocumentNumber = tt.number
			if tt.docType != "D" {
				g.SecondSurname = "" // not required for non-DNI
			}

			result := Validate([]ingest.GuestRecord{g})

			// Shape problems are warnings only; the record stays valid.
			if result.ValidCount != 1 {
				t.Fatalf("record should remain valid, errors: %+v", result.Errors)
			}
			warned := false
			for _, w := range result.Warnings {
				if w.Field == "numeroDocumento" {
					warned = true
				}
			}
			if warned != tt.wantWarn {
				t.Errorf("warned = %v, want %v (warnings %+v)", warned, tt.wantWarn, result.Warnings)
			}
		})
	}
}

func TestValidateFormatWarnings(t *testing.T) {
	g := completeGuest(2)
	g.Email = "not-an-email"
	g.Phone = "abc"
	g.Nationality = "Atlantis"

	result := Validate([]ingest.GuestRecord{g})

	if result.ValidCount != 1 {
		t.Fatalf("warnings must not exclude the record, errors: %+v", result.Errors)
	}
	fields := map[string]bool{}
	for _, w := range result.Warnings {
		fields[w.Field] = true
	}
	for _, want := range []string{"email", "telefono", "nacionalidad"} {
		if !fields[want] {
			t.Errorf("missing warning for %q, got %+v", want, result.Warnings)
		}
	}
}

func TestValidateUnknownDocTypeWarning(t *testing.T) {
	g := completeGuest(2)
	g.DocumentType = "7"
	g.SecondSurname = ""
	g.DocumentNumber = "ABC123"

	result := Validate([]ingest.GuestRecord{g})
	if result.ValidCount != 1 {
		t.Fatalf("unknown doc type is a warning, errors: %+v", result.Errors)
	}
	found := false
	for _, w := range result.Warnings {
		if w.Field == "tipoDocumento" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected tipoDocumento warning, got %+v", result.Warnings)
	}
}

func TestValidateIssueOrderDeterministic(t *testing.T) {
	bad1 := completeGuest(2)
	bad1.GivenName = ""
	bad1.City = ""
	bad2 := completeGuest(3)
	bad2.Address = ""

	first := Validate([]ingest.GuestRecord{bad1, bad2})
	second := Validate([]ingest.GuestRecord{bad1, bad2})

	if len(first.Errors) != len(second.Errors) {
		t.Fatal("non-deterministic error count")
	}
	for i := range first.Errors {
		if first.Errors[i] != second.Errors[i] {
			t.Errorf("issue %d differs: %+v vs %+v", i, first.Errors[i], second.Errors[i])
		}
	}
	// Input order, then rule order.
	if first.Errors[0].Field != "nombre" || first.Errors[1].Field != "ciudad" || first.Errors[2].Field != "direccion" {
		t.Errorf("unexpected order: %+v", first.Errors)
	}
}
