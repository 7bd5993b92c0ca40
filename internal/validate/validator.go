// Package validate applies the SES Hospedajes business rules to a
// batch of guest records. Errors block a record from submission,
// warnings are informational only. Validation never mutates the
// records it inspects.
package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/XimoLopez/ses-hospedajes/internal/catalog"
	"github.com/XimoLopez/ses-hospedajes/internal/ingest"
)

// Severity of a validation issue.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Issue is one finding against one field of one source row.
type Issue struct {
	Row      int    `json:"row"`
	Field    string `json:"field"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// Result aggregates validation over a batch. A record appears in
// ValidGuests iff it produced zero error-severity issues; warnings
// never exclude. ValidCount+ErrorCount always equals TotalRows.
type Result struct {
	IsValid      bool                 `json:"isValid"`
	Errors       []Issue              `json:"errors"`
	Warnings     []Issue              `json:"warnings"`
	ValidGuests  []ingest.GuestRecord `json:"validGuests"`
	TotalRows    int                  `json:"totalRows"`
	ValidCount   int                  `json:"validCount"`
	ErrorCount   int                  `json:"errorCount"`
	WarningCount int                  `json:"warningCount"`
}

var (
	dniNumberRe = regexp.MustCompile(`^\d{8}[A-Za-z]$`)
	nieNumberRe = regexp.MustCompile(`^[XYZxyz]\d{7}[A-Za-z]$`)
	iso3Re      = regexp.MustCompile(`^[A-Z]{3}$`)
	emailRe     = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe     = regexp.MustCompile(`^[+\d\s()-]{6,20}$`)
	calendarRe  = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
)

// validCalendarDate reports whether the first ten characters of s are
// a real calendar date. The components are parsed, the date is
// rebuilt, and the round trip must match, which rejects 2023-02-30
// and keeps leap years honest.
func validCalendarDate(s string) bool {
	if len(s) < 10 {
		return false
	}
	m := calendarRe.FindStringSubmatch(s[:10])
	if m == nil {
		return false
	}
	y, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	d, _ := strconv.Atoi(m[3])
	if mo < 1 || mo > 12 || d < 1 {
		return false
	}
	return d <= daysInMonth(y, mo)
}

func daysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	default:
		if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
			return 29
		}
		return 28
	}
}

// validDocumentNumber checks the number shape for the declared letter
// code. DNI wants 8 digits plus a letter, NIE a leading X/Y/Z plus 7
// digits plus a letter, passports 5-20 characters; anything else only
// needs length 3.
func validDocumentNumber(docType, number string) bool {
	trimmed := strings.TrimSpace(number)
	switch strings.ToUpper(docType) {
	case catalog.DocTypeDNI:
		return dniNumberRe.MatchString(trimmed)
	case catalog.DocTypeNIE:
		return nieNumberRe.MatchString(trimmed)
	case catalog.DocTypePassport:
		return len(trimmed) >= 5 && len(trimmed) <= 20
	default:
		return len(trimmed) >= 3
	}
}

// Validate applies the full rule set to every record, in input order,
// with a fixed rule order per record, so the issue lists are
// reproducible for identical input.
func Validate(guests []ingest.GuestRecord) Result {
	result := Result{TotalRows: len(guests)}

	for _, g := range guests {
		var errs, warns []Issue

		requireField := func(field, value, message string) bool {
			if strings.TrimSpace(value) == "" {
				errs = append(errs, Issue{Row: g.RowNumber, Field: field, Message: message, Severity: SeverityError})
				return false
			}
			return true
		}
		warn := func(field, message string) {
			warns = append(warns, Issue{Row: g.RowNumber, Field: field, Message: message, Severity: SeverityWarning})
		}

		requireField("nombre", g.GivenName, "El nombre es obligatorio")
		requireField("primerApellido", g.FirstSurname, "El primer apellido es obligatorio")

		if catalog.NormalizeDocumentType(g.DocumentType) == catalog.DocTypeDNI &&
			strings.TrimSpace(g.DocumentType) != "" && strings.TrimSpace(g.SecondSurname) == "" {
			errs = append(errs, Issue{
				Row:      g.RowNumber,
				Field:    "segundoApellido",
				Message:  "El segundo apellido es obligatorio para documentos tipo DNI",
				Severity: SeverityError,
			})
		}

		if requireField("tipoDocumento", g.DocumentType, "El tipo de documento es obligatorio") {
			if !catalog.KnownDocumentType(catalog.NormalizeDocumentType(g.DocumentType)) {
				warn("tipoDocumento", fmt.Sprintf("Tipo de documento %q no reconocido", g.DocumentType))
			}
		}

		if requireField("numeroDocumento", g.DocumentNumber, "El número de documento es obligatorio") {
			if !validDocumentNumber(g.DocumentType, g.DocumentNumber) {
				warn("numeroDocumento", fmt.Sprintf("Formato del documento %q puede no ser válido para tipo %q", g.DocumentNumber, g.DocumentType))
			}
		}

		if requireField("fechaNacimiento", g.BirthDate, "La fecha de nacimiento es obligatoria") {
			if !validCalendarDate(g.BirthDate) {
				errs = append(errs, Issue{
					Row:      g.RowNumber,
					Field:    "fechaNacimiento",
					Message:  fmt.Sprintf("Fecha de nacimiento inválida: %q. Formato esperado: YYYY-MM-DD", g.BirthDate),
					Severity: SeverityError,
				})
			}
		}

		if requireField("nacionalidad", g.Nationality, "La nacionalidad es obligatoria") {
			if !catalog.KnownCountry(g.Nationality) && !iso3Re.MatchString(g.Nationality) {
				warn("nacionalidad", fmt.Sprintf("Código de nacionalidad %q puede no ser un código ISO válido", g.Nationality))
			}
		}

		requireField("direccion", g.Address, "La dirección es obligatoria")
		requireField("ciudad", g.City, "La ciudad es obligatoria")
		requireField("pais", g.Country, "El país es obligatorio")

		if requireField("fechaEntrada", g.EntryDate, "La fecha de entrada es obligatoria") {
			if !validCalendarDate(g.EntryDate) {
				errs = append(errs, Issue{
					Row:      g.RowNumber,
					Field:    "fechaEntrada",
					Message:  fmt.Sprintf("Fecha de entrada inválida: %q", g.EntryDate),
					Severity: SeverityError,
				})
			}
		}

		if strings.TrimSpace(g.Phone) == "" && strings.TrimSpace(g.Email) == "" {
			errs = append(errs, Issue{
				Row:      g.RowNumber,
				Field:    "contacto",
				Message:  "Se requiere al menos un dato de contacto (teléfono o email)",
				Severity: SeverityError,
			})
		}

		if email := strings.TrimSpace(g.Email); email != "" && !emailRe.MatchString(email) {
			warn("email", fmt.Sprintf("Formato de email posiblemente inválido: %q", g.Email))
		}
		if phone := strings.TrimSpace(g.Phone); phone != "" && !phoneRe.MatchString(phone) {
			warn("telefono", fmt.Sprintf("Formato de teléfono posiblemente inválido: %q", g.Phone))
		}

		result.Errors = append(result.Errors, errs...)
		result.Warnings = append(result.Warnings, warns...)
		if len(errs) == 0 {
			result.ValidGuests = append(result.ValidGuests, g)
		}
	}

	result.ValidCount = len(result.ValidGuests)
	result.ErrorCount = result.TotalRows - result.ValidCount
	result.WarningCount = len(result.Warnings)
	result.IsValid = len(result.Errors) == 0
	return result
}
