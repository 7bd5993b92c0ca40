package sesxml

import (
	"encoding/xml"
	"fmt"

	"github.com/XimoLopez/ses-hospedajes/internal/job"
)

const (
	nsSoapEnv       = "http://schemas.xmlsoap.org/soap/envelope/"
	nsComunicacion  = "http://www.soap.servicios.hospedajes.mir.es/comunicacion"
	nsWSSecurity    = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-secext-1.0.xsd"
	passwordTextURI = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-username-token-profile-1.0#PasswordText"

	applicationID = "SES-HOSPEDAJES-APP"
)

// Credentials authenticate the SOAP call. EntityCode is the lessor
// code assigned by the registry, distinct from the establishment code.
type Credentials struct {
	Username   string
	Password   string
	EntityCode string
}

type envelope struct {
	XMLName   xml.Name `xml:"soapenv:Envelope"`
	NsSoapEnv string   `xml:"xmlns:soapenv,attr"`
	NsCom     string   `xml:"xmlns:com,attr"`
	Header    header   `xml:"soapenv:Header"`
	Body      body     `xml:"soapenv:Body"`
}

type header struct {
	Security security `xml:"wsse:Security"`
}

type security struct {
	NsWsse string        `xml:"xmlns:wsse,attr"`
	Token  usernameToken `xml:"wsse:UsernameToken"`
}

type usernameToken struct {
	Username string   `xml:"wsse:Username"`
	Password password `xml:"wsse:Password"`
}

type password struct {
	Type  string `xml:"Type,attr"`
	Value string `xml:",chardata"`
}

type body struct {
	Communication *communicationRequest `xml:"com:comunicacionRequest,omitempty"`
	BatchQuery    *batchQueryRequest    `xml:"com:consultaLoteRequest,omitempty"`
}

type communicationRequest struct {
	Peticion envelopePeticion `xml:"peticion"`
}

type envelopePeticion struct {
	Cabecera  cabecera `xml:"cabecera"`
	Solicitud string   `xml:"solicitud"`
}

type cabecera struct {
	CodigoArrendador string `xml:"codigoArrendador"`
	Aplicacion       string `xml:"aplicacion"`
	TipoOperacion    string `xml:"tipoOperacion,omitempty"`
	TipoComunicacion string `xml:"tipoComunicacion,omitempty"`
}

type batchQueryRequest struct {
	Peticion batchQueryPeticion `xml:"peticion"`
}

type batchQueryPeticion struct {
	Cabecera cabecera    `xml:"cabecera"`
	Codigos  codigosLote `xml:"codigosLote"`
}

type codigosLote struct {
	Lotes []string `xml:"lote"`
}

// CommunicationTag returns the two-letter communication discriminator
// used in the SOAP header.
func CommunicationTag(t job.CommunicationType) string {
	if t == job.TypeReservation {
		return "RH"
	}
	return "PV"
}

func wrap(creds Credentials, b body) ([]byte, error) {
	env := envelope{
		NsSoapEnv: nsSoapEnv,
		NsCom:     nsComunicacion,
		Header: header{
			Security: security{
				NsWsse: nsWSSecurity,
				Token: usernameToken{
					Username: creds.Username,
					Password: password{Type: passwordTextURI, Value: creds.Password},
				},
			},
		},
		Body: b,
	}
	out, err := xml.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// BuildEnvelope wraps a base64-encoded compressed payload in the
// authenticated SOAP envelope for submission.
func BuildEnvelope(creds Credentials, commType job.CommunicationType, payloadB64 string) ([]byte, error) {
	return wrap(creds, body{
		Communication: &communicationRequest{
			Peticion: envelopePeticion{
				Cabecera: cabecera{
					CodigoArrendador: creds.EntityCode,
					Aplicacion:       applicationID,
					TipoOperacion:    "A",
					TipoComunicacion: CommunicationTag(commType),
				},
				Solicitud: payloadB64,
			},
		},
	})
}

// BuildBatchQuery builds the status query for a previously assigned
// batch identifier.
func BuildBatchQuery(creds Credentials, batchID string) ([]byte, error) {
	return wrap(creds, body{
		BatchQuery: &batchQueryRequest{
			Peticion: batchQueryPeticion{
				Cabecera: cabecera{
					CodigoArrendador: creds.EntityCode,
					Aplicacion:       applicationID,
				},
				Codigos: codigosLote{Lotes: []string{batchID}},
			},
		},
	})
}
