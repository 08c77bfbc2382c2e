package analytics

import (
	"strings"
	"unicode/utf8"

	"github.com/asaskevich/govalidator"
	"github.com/vitralis/atelier-manager/internal/entity"
)

// countryFields is the probe order for the country of a record. Records come
// from several collections with different shapes; the first non-empty value
// wins. A record with none of these is skipped by callers so unknown-origin
// activity never pollutes the geographic aggregates.
var countryFields = []string{
	"countryCode",
	"country",
	"shippingAddress.countryCode",
	"shippingAddress.country",
	"billingAddress.countryCode",
	"billingAddress.country",
	"customerCountry",
}

var countryNames = map[string]string{
	"AR": "Argentina",
	"AT": "Austria",
	"AU": "Australia",
	"AE": "United Arab Emirates",
	"BE": "Belgium",
	"BH": "Bahrain",
	"BO": "Bolivia",
	"BR": "Brazil",
	"CA": "Canada",
	"CH": "Switzerland",
	"CL": "Chile",
	"CN": "China",
	"CO": "Colombia",
	"CR": "Costa Rica",
	"CZ": "Czechia",
	"DE": "Germany",
	"DK": "Denmark",
	"DO": "Dominican Republic",
	"EC": "Ecuador",
	"EG": "Egypt",
	"ES": "Spain",
	"FI": "Finland",
	"FR": "France",
	"GB": "United Kingdom",
	"GR": "Greece",
	"GT": "Guatemala",
	"HK": "Hong Kong",
	"HU": "Hungary",
	"ID": "Indonesia",
	"IE": "Ireland",
	"IL": "Israel",
	"IN": "India",
	"IT": "Italy",
	"JP": "Japan",
	"KR": "South Korea",
	"KW": "Kuwait",
	"MA": "Morocco",
	"MX": "Mexico",
	"MY": "Malaysia",
	"NL": "Netherlands",
	"NO": "Norway",
	"NZ": "New Zealand",
	"OM": "Oman",
	"PA": "Panama",
	"PE": "Peru",
	"PH": "Philippines",
	"PL": "Poland",
	"PT": "Portugal",
	"PY": "Paraguay",
	"QA": "Qatar",
	"RO": "Romania",
	"SA": "Saudi Arabia",
	"SE": "Sweden",
	"SG": "Singapore",
	"TH": "Thailand",
	"TR": "Turkey",
	"TW": "Taiwan",
	"US": "United States",
	"UY": "Uruguay",
	"VE": "Venezuela",
	"VN": "Vietnam",
}

// common aliases that the name table alone would miss
var countryAliases = map[string]string{
	"usa":            "US",
	"united states of america": "US",
	"uk":             "GB",
	"great britain":  "GB",
	"england":        "GB",
	"holland":        "NL",
	"korea":          "KR",
	"uae":            "AE",
	"czech republic": "CZ",
}

var regionCodes = map[entity.Region][]string{
	entity.RegionLATAM: {"AR", "BO", "BR", "CL", "CO", "CR", "DO", "EC", "GT", "MX", "PA", "PE", "PY", "UY", "VE"},
	entity.RegionEU:    {"AT", "BE", "CH", "CZ", "DE", "DK", "ES", "FI", "FR", "GB", "GR", "HU", "IE", "IT", "NL", "NO", "PL", "PT", "RO", "SE"},
	entity.RegionAPAC:  {"AU", "CN", "HK", "ID", "IN", "JP", "KR", "MY", "NZ", "PH", "SG", "TH", "TW", "VN"},
	entity.RegionNA:    {"CA", "US"},
	entity.RegionMENA:  {"AE", "BH", "EG", "IL", "KW", "MA", "OM", "QA", "SA", "TR"},
}

var (
	nameIndex   map[string]string
	regionIndex map[string]entity.Region
)

func init() {
	nameIndex = make(map[string]string, len(countryNames)+len(countryAliases))
	for code, name := range countryNames {
		nameIndex[strings.ToLower(name)] = code
	}
	for alias, code := range countryAliases {
		nameIndex[alias] = code
	}
	regionIndex = make(map[string]entity.Region)
	for region, codes := range regionCodes {
		for _, code := range codes {
			regionIndex[code] = region
		}
	}
}

// ExtractCountryCode probes the record's country fields and normalizes the
// first hit to an uppercase ISO-3166-1 alpha-2 code. Values that are not a
// valid two-letter code go through the name table; unrecognized names come
// back uppercased and classify as OTHER downstream. An empty result means the
// record carries no origin and must be skipped.
func ExtractCountryCode(rec entity.Record) string {
	raw := strings.TrimSpace(rec.Str(countryFields...))
	if raw == "" {
		return ""
	}
	upper := strings.ToUpper(raw)
	if utf8.RuneCountInString(raw) > 2 || !govalidator.IsISO3166Alpha2(upper) {
		if code, ok := nameIndex[strings.ToLower(raw)]; ok {
			return code
		}
	}
	return upper
}

// RegionOf buckets a country code into one of the five fixed regions.
func RegionOf(code string) entity.Region {
	if region, ok := regionIndex[strings.ToUpper(code)]; ok {
		return region
	}
	return entity.RegionOther
}

// CountryNameOf returns the display name for a code, or the code itself when
// it is not in the table.
func CountryNameOf(code string) string {
	if name, ok := countryNames[strings.ToUpper(code)]; ok {
		return name
	}
	return code
}
