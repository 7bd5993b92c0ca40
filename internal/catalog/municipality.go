package catalog

// provincePrefix maps folded province names to the two leading digits
// of the INE municipality code.
var provincePrefix = map[string]string{
	"alava":    "01",
	"albacete": "02",
	"alicante": "03", "alacant": "03",
	"almeria":  "04",
	"avila":    "05",
	"badajoz":  "06",
	"baleares": "07", "illes balears": "07", "palma": "07",
	"barcelona": "08",
	"burgos":    "09",
	"caceres":   "10",
	"cadiz":     "11",
	"castellon": "12", "castello": "12",
	"ciudad real": "13",
	"cordoba":     "14",
	"la coruna":   "15", "a coruna": "15", "coruna": "15",
	"cuenca": "16",
	"gerona": "17", "girona": "17",
	"granada":     "18",
	"guadalajara": "19",
	"guipuzcoa":   "20", "gipuzkoa": "20",
	"huelva": "21",
	"huesca": "22",
	"jaen":   "23",
	"leon":   "24",
	"lerida": "25", "lleida": "25",
	"la rioja": "26", "rioja": "26",
	"lugo":    "27",
	"madrid":  "28",
	"malaga":  "29",
	"murcia":  "30",
	"navarra": "31",
	"orense":  "32", "ourense": "32",
	"asturias":               "33",
	"palencia":               "34",
	"las palmas":             "35",
	"pontevedra":             "36",
	"salamanca":              "37",
	"santa cruz de tenerife": "38", "tenerife": "38",
	"cantabria":  "39",
	"segovia":    "40",
	"sevilla":    "41",
	"soria":      "42",
	"tarragona":  "43",
	"teruel":     "44",
	"toledo":     "45",
	"valencia":   "46",
	"valladolid": "47",
	"vizcaya":    "48", "bizkaia": "48",
	"zamora":   "49",
	"zaragoza": "50",
	"ceuta":    "51",
	"melilla":  "52",
}

// MunicipalityCode derives the 5-digit INE code the SES portal uses
// to auto-populate province and city. A 5-digit postal code wins;
// otherwise the province name resolves the prefix. The "000" suffix
// is the provincial capital / generic municipality, which SES
// accepts. Returns "" when neither signal resolves.
func MunicipalityCode(city, province, postalCode string) string {
	prefix := ""
	if len(postalCode) == 5 && isDigits(postalCode) {
		prefix = postalCode[:2]
	} else if province != "" {
		prefix = provincePrefix[fold(province)]
	}
	if prefix == "" {
		return ""
	}
	return prefix + "000"
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
