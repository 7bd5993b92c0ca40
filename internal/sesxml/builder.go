// Package sesxml builds the XML documents of the SES Hospedajes wire
// protocol: the communication payload in its two schema variants, the
// authenticated SOAP envelope around the compressed payload, and the
// batch status query. Building is total over a well-formed request;
// shape problems are validation's job, not the encoder's.
package sesxml

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/XimoLopez/ses-hospedajes/internal/catalog"
	"github.com/XimoLopez/ses-hospedajes/internal/ingest"
	"github.com/XimoLopez/ses-hospedajes/internal/job"
)

// Namespaces of the two communication schema variants.
const (
	nsReservation    = "http://www.neg.hospedajes.mir.es/altaReservaHospedaje"
	nsTravelerReport = "http://www.neg.hospedajes.mir.es/altaParteHospedaje"
	nsGeneralTypes   = "http://www.neg.hospedajes.mir.es/tiposGenerales"
)

// Request is everything needed to encode one communication.
type Request struct {
	EstablishmentCode string
	Type              job.CommunicationType
	Guests            []ingest.GuestRecord
	Contract          job.ContractMetadata
}

type peticionDoc struct {
	XMLName    xml.Name  `xml:"peticion"`
	Xmlns      string    `xml:"xmlns,attr"`
	XmlnsHospe string    `xml:"xmlns:hospe,attr"`
	Solicitud  solicitud `xml:"solicitud"`
}

type solicitud struct {
	Xmlns             string       `xml:"xmlns,attr"`
	EstablishmentCode string       `xml:"codigoEstablecimiento,omitempty"`
	Comunicacion      comunicacion `xml:"comunicacion"`
}

type comunicacion struct {
	Establecimiento *establecimiento `xml:"establecimiento,omitempty"`
	Contrato        contrato         `xml:"contrato"`
	Personas        []persona        `xml:"persona"`
}

type establecimiento struct {
	Codigo string `xml:"codigo"`
}

type contrato struct {
	Referencia    string `xml:"referencia"`
	FechaContrato string `xml:"fechaContrato"`
	FechaEntrada  string `xml:"fechaEntrada"`
	FechaSalida   string `xml:"fechaSalida,omitempty"`
	NumPersonas   int    `xml:"numPersonas"`
	Pago          pago   `xml:"pago"`
}

type pago struct {
	TipoPago  string `xml:"tipoPago"`
	FechaPago string `xml:"fechaPago,omitempty"`
}

type persona struct {
	Rol              string    `xml:"rol"`
	Nombre           string    `xml:"nombre"`
	Apellido1        string    `xml:"apellido1"`
	Apellido2        string    `xml:"apellido2,omitempty"`
	TipoDocumento    string    `xml:"tipoDocumento"`
	NumeroDocumento  string    `xml:"numeroDocumento,omitempty"`
	SoporteDocumento string    `xml:"soporteDocumento,omitempty"`
	FechaNacimiento  string    `xml:"fechaNacimiento,omitempty"`
	Nacionalidad     string    `xml:"nacionalidad,omitempty"`
	Direccion        direccion `xml:"direccion"`
	Telefono         string    `xml:"telefono,omitempty"`
	Correo           string    `xml:"correo,omitempty"`
	Parentesco       string    `xml:"parentesco,omitempty"`
}

type direccion struct {
	Direccion               string `xml:"direccion"`
	DireccionComplementaria string `xml:"direccionComplementaria,omitempty"`
	CodigoMunicipio         string `xml:"codigoMunicipio,omitempty"`
	NombreMunicipio         string `xml:"nombreMunicipio"`
	CodigoPostal            string `xml:"codigoPostal"`
	Pais                    string `xml:"pais"`
}

// formatDateTime widens a date to the xsd:dateTime shape the schema
// wants. Date-only values get a noon default so timezone drift cannot
// move the stay to the previous day.
func formatDateTime(dt string) string {
	switch len(dt) {
	case 0:
		return ""
	case 10:
		return dt + "T12:00:00"
	case 16:
		return dt + ":00"
	default:
		return dt
	}
}

// BuildCommunication encodes a request into the variant selected by
// its communication type. Guests are emitted in input order. When no
// guest carries the holder role, the first persona is written as
// holder; the records themselves are never mutated.
func BuildCommunication(req Request) ([]byte, error) {
	isReservation := req.Type == job.TypeReservation

	ns := nsTravelerReport
	if isReservation {
		ns = nsReservation
	}

	doc := peticionDoc{
		Xmlns:      ns,
		XmlnsHospe: nsGeneralTypes,
		Solicitud:  solicitud{},
	}

	// Traveler reports carry the establishment code once at the
	// solicitation level; reservations nest it per communication.
	var com comunicacion
	if isReservation {
		com.Establecimiento = &establecimiento{Codigo: req.EstablishmentCode}
	} else {
		doc.Solicitud.EstablishmentCode = req.EstablishmentCode
	}

	com.Contrato = buildContract(req)

	hasHolder := false
	for _, g := range req.Guests {
		if g.Role == ingest.RoleHolder {
			hasHolder = true
			break
		}
	}

	for i, g := range req.Guests {
		role := g.Role
		if role == "" {
			role = ingest.RoleTraveler
		}
		if !hasHolder && i == 0 {
			role = ingest.RoleHolder
		}
		com.Personas = append(com.Personas, buildPersona(g, role, isReservation))
	}

	doc.Solicitud.Comunicacion = com

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode communication: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

func buildContract(req Request) contrato {
	c := req.Contract

	reference := c.Reference
	if reference == "" {
		reference = fmt.Sprintf("REF-%d", time.Now().UnixMilli())
	}
	contractDate := c.ContractDate
	if contractDate == "" {
		contractDate = time.Now().UTC().Format("2006-01-02")
	}

	// Global stay dates win over the first guest's own dates.
	entry := c.EntryDate
	exit := c.ExitDate
	if len(req.Guests) > 0 {
		if entry == "" {
			entry = req.Guests[0].EntryDate
		}
		if exit == "" {
			exit = req.Guests[0].ExitDate
		}
	}

	occupants := c.Occupants
	if occupants == 0 {
		occupants = len(req.Guests)
	}

	return contrato{
		Referencia:    reference,
		FechaContrato: contractDate,
		FechaEntrada:  formatDateTime(entry),
		FechaSalida:   formatDateTime(exit),
		NumPersonas:   occupants,
		Pago: pago{
			TipoPago:  PaymentCode(c.PaymentType),
			FechaPago: c.PaymentDate,
		},
	}
}

func buildPersona(g ingest.GuestRecord, role string, isReservation bool) persona {
	docType := g.DocumentType
	if docType == "" {
		docType = catalog.DocTypeDNI
	}
	country := g.Country
	if country == "" {
		country = "ESP"
	}
	mappedCountry := catalog.NormalizeCountry(country)

	nationality := ""
	if g.Nationality != "" {
		nationality = catalog.NormalizeCountry(g.Nationality)
	}

	// The INE code only makes sense for Spanish addresses; the portal
	// uses it to auto-populate province and city.
	municipality := ""
	if mappedCountry == "ESP" {
		municipality = g.MunicipalityCode
		if municipality == "" {
			municipality = catalog.MunicipalityCode(g.City, g.Province, g.PostalCode)
		}
	}

	cityName := g.City
	if g.Province != "" {
		cityName = fmt.Sprintf("%s (%s)", g.City, g.Province)
	}

	p := persona{
		Rol:             role,
		Nombre:          g.GivenName,
		Apellido1:       g.FirstSurname,
		Apellido2:       g.SecondSurname,
		TipoDocumento:   catalog.DocumentTypeCode(catalog.NormalizeDocumentType(docType)),
		NumeroDocumento: g.DocumentNumber,
		FechaNacimiento: g.BirthDate,
		Nacionalidad:    nationality,
		Direccion: direccion{
			Direccion:               g.Address,
			DireccionComplementaria: g.AddressExtra,
			CodigoMunicipio:         municipality,
			NombreMunicipio:         cityName,
			CodigoPostal:            g.PostalCode,
			Pais:                    mappedCountry,
		},
		Telefono: g.Phone,
		Correo:   g.Email,
	}

	// Supporting document and kinship exist only in the traveler
	// report schema; the reservation variant rejects them.
	if !isReservation {
		p.SoporteDocumento = g.SupportNumber
		p.Parentesco = g.Kinship
	}

	return p
}
