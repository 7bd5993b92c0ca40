package catalog

import "strings"

// alpha2to3 converts the ISO 3166-1 alpha-2 codes seen in the source
// spreadsheets to alpha-3.
var alpha2to3 = map[string]string{
	"ES": "ESP", "FR": "FRA", "DE": "DEU", "GB": "GBR", "IT": "ITA",
	"PT": "PRT", "NL": "NLD", "BE": "BEL", "US": "USA", "AR": "ARG",
	"MX": "MEX", "CO": "COL", "BR": "BRA", "CN": "CHN", "JP": "JPN",
	"CH": "CHE", "AT": "AUT", "IE": "IRL", "SE": "SWE", "NO": "NOR",
	"DK": "DNK", "FI": "FIN", "PL": "POL", "RO": "ROU", "MA": "MAR",
}

// countryNames maps folded country names (Spanish and English) to
// ISO 3166-1 alpha-3. Keys must be pre-folded: lowercase, no
// diacritics.
var countryNames = map[string]string{
	"espana": "ESP", "spain": "ESP", "espagne": "ESP",
	"francia": "FRA", "france": "FRA",
	"alemania": "DEU", "germany": "DEU", "deutschland": "DEU",
	"reino unido": "GBR", "united kingdom": "GBR", "uk": "GBR",
	"italia": "ITA", "italy": "ITA",
	"portugal":     "PRT",
	"paises bajos": "NLD", "netherlands": "NLD", "holanda": "NLD",
	"belgica": "BEL", "belgium": "BEL",
	"estados unidos": "USA", "united states": "USA", "usa": "USA",
	"suiza": "CHE", "switzerland": "CHE",
	"austria": "AUT",
	"irlanda": "IRL", "ireland": "IRL",
	"suecia": "SWE", "sweden": "SWE",
	"noruega": "NOR", "norway": "NOR",
	"dinamarca": "DNK", "denmark": "DNK",
	"finlandia": "FIN", "finland": "FIN",
	"polonia": "POL", "poland": "POL",
	"rumania": "ROU", "romania": "ROU",
	"republica checa": "CZE", "czech republic": "CZE", "chequia": "CZE",
	"hungria": "HUN", "hungary": "HUN",
	"grecia": "GRC", "greece": "GRC",
	"croacia": "HRV", "croatia": "HRV",
	"bulgaria": "BGR",
	"ucrania":  "UKR", "ukraine": "UKR",
	"rusia": "RUS", "russia": "RUS",
	"turquia": "TUR", "turkey": "TUR",
	"marruecos": "MAR", "morocco": "MAR",
	"china": "CHN",
	"japon": "JPN", "japan": "JPN",
	"argentina": "ARG",
	"mexico":    "MEX",
	"colombia":  "COL",
	"brasil":    "BRA", "brazil": "BRA",
	"chile":                "CHL",
	"peru":                 "PER",
	"venezuela":            "VEN",
	"ecuador":              "ECU",
	"bolivia":              "BOL",
	"uruguay":              "URY",
	"paraguay":             "PRY",
	"cuba":                 "CUB",
	"republica dominicana": "DOM",
	"guatemala":            "GTM",
	"honduras":             "HND",
	"el salvador":          "SLV",
	"nicaragua":            "NIC",
	"costa rica":           "CRI",
	"panama":               "PAN",
	"andorra":              "AND",
	"canada":               "CAN",
	"australia":            "AUS",
}

// knownCountries is the set of alpha-3 codes the validator treats as
// recognized nationalities.
var knownCountries = map[string]string{
	"ESP": "España", "FRA": "Francia", "DEU": "Alemania",
	"GBR": "Reino Unido", "ITA": "Italia", "PRT": "Portugal",
	"NLD": "Países Bajos", "BEL": "Bélgica", "USA": "Estados Unidos",
	"ARG": "Argentina", "MEX": "México", "COL": "Colombia",
	"BRA": "Brasil", "CHN": "China", "JPN": "Japón",
	"MAR": "Marruecos", "ROU": "Rumanía", "POL": "Polonia",
	"CHE": "Suiza", "AUT": "Austria", "SWE": "Suecia",
	"NOR": "Noruega", "DNK": "Dinamarca", "FIN": "Finlandia",
	"IRL": "Irlanda", "CZE": "República Checa", "HUN": "Hungría",
	"GRC": "Grecia", "HRV": "Croacia", "BGR": "Bulgaria",
	"UKR": "Ucrania", "RUS": "Rusia", "TUR": "Turquía",
	"CAN": "Canadá", "AUS": "Australia", "CHL": "Chile",
	"PER": "Perú", "VEN": "Venezuela", "ECU": "Ecuador",
	"BOL": "Bolivia", "URY": "Uruguay", "PRY": "Paraguay",
	"CUB": "Cuba", "DOM": "República Dominicana", "AND": "Andorra",
}

// NormalizeCountry maps a raw country value to ISO 3166-1 alpha-3.
// Three-letter input passes through uppercased, two-letter input goes
// through the alpha-2 table, everything else through the folded name
// table. Unmatched input is returned unmodified so validation can
// flag it instead of silently re-homing the guest.
func NormalizeCountry(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) == 3 && isLetters(trimmed) {
		return strings.ToUpper(trimmed)
	}
	if len(trimmed) == 2 && isLetters(trimmed) {
		if iso3, ok := alpha2to3[strings.ToUpper(trimmed)]; ok {
			return iso3
		}
		return trimmed
	}
	if iso3, ok := countryNames[fold(trimmed)]; ok {
		return iso3
	}
	return trimmed
}

// KnownCountry reports whether an alpha-3 code is in the catalog.
func KnownCountry(iso3 string) bool {
	_, ok := knownCountries[iso3]
	return ok
}

// CountryName returns the display name for a known alpha-3 code.
func CountryName(iso3 string) (string, bool) {
	name, ok := knownCountries[iso3]
	return name, ok
}

func isLetters(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}
