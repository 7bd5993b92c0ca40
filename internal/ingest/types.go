package ingest

// Guest roles in a communication. The remote system wants exactly one
// titular per batch; promotion happens at encoding time, records keep
// the role they were ingested with.
const (
	RoleTraveler = "VI"
	RoleHolder   = "TI"
)

// GuestRecord is one traveler row after normalization. JSON tags
// follow the field names the dashboard API has always used.
type GuestRecord struct {
	RowNumber int `json:"csvRowNumber"`

	GivenName     string `json:"nombre"`
	FirstSurname  string `json:"primerApellido"`
	SecondSurname string `json:"segundoApellido,omitempty"`
	BirthDate     string `json:"fechaNacimiento"` // YYYY-MM-DD
	Nationality   string `json:"nacionalidad"`    // ISO 3166-1 alpha-3

	DocumentType   string `json:"tipoDocumento"` // catalog letter code
	DocumentNumber string `json:"numeroDocumento"`
	SupportNumber  string `json:"soporteDocumento,omitempty"`

	Address          string `json:"direccion"`
	AddressExtra     string `json:"direccion2,omitempty"`
	City             string `json:"ciudad"`
	Province         string `json:"provincia,omitempty"`
	MunicipalityCode string `json:"codigoMunicipio,omitempty"` // 5-digit INE code
	PostalCode       string `json:"codigoPostal"`
	Country          string `json:"pais"` // ISO 3166-1 alpha-3

	Phone string `json:"telefono,omitempty"`
	Email string `json:"email,omitempty"`

	EntryDate string `json:"fechaEntrada"` // YYYY-MM-DD or YYYY-MM-DDTHH:MM
	ExitDate  string `json:"fechaSalida,omitempty"`

	Kinship string `json:"parentesco,omitempty"` // minors only
	Role    string `json:"rol"`
}

// Input row field labels. These are the headers of the spreadsheet
// export feeding the system; unknown labels in a row are ignored.
const (
	FieldGivenName      = "Nombre Completo (Nombre)"
	FieldSurnames       = "Nombre Completo (Apellidos)"
	FieldAddress        = "Dirección (Dirección)"
	FieldAddressExtra   = "Dirección (Dirección 2)"
	FieldCity           = "Dirección (Ciudad)"
	FieldProvince       = "Dirección (Estado/Provincia)"
	FieldAddressZIP     = "Dirección (ZIP / Código Postal)"
	FieldAddressCountry = "Dirección (País)"
	FieldPostalCode     = "Codigo Postal"
	FieldDocumentType   = "Tipo de Documento"
	FieldDocumentNumber = "Número del documento"
	FieldSupportNumber  = "Número de soporte del documento"
	FieldNationality    = "Nacionalidad (País)"
	FieldBirthDate      = "Fecha de Nacimiento"
	FieldPhoneOrEmail   = "Teléfono o e-mail"
	FieldPhone          = "Teléfono"
	FieldEmail          = "e-mail"
	FieldEntryDate      = "Fecha entrada"
	FieldExitDate       = "Fecha salida"
	FieldKinship        = "Parentesco"
)
