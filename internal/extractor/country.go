package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const defaultCountry = "US"

// tldCountries maps country-code TLDs to ISO 3166 regions. Generic TLDs are
// intentionally absent.
var tldCountries = map[string]string{
	"no": "NO",
	"se": "SE",
	"dk": "DK",
	"fi": "FI",
	"is": "IS",
	"uk": "GB",
	"gb": "GB",
	"ie": "IE",
	"de": "DE",
	"at": "AT",
	"ch": "CH",
	"fr": "FR",
	"be": "BE",
	"nl": "NL",
	"lu": "LU",
	"es": "ES",
	"pt": "PT",
	"it": "IT",
	"pl": "PL",
	"cz": "CZ",
	"us": "US",
	"ca": "CA",
	"mx": "MX",
	"br": "BR",
	"au": "AU",
	"nz": "NZ",
	"jp": "JP",
	"cn": "CN",
	"hk": "HK",
	"tw": "TW",
	"sg": "SG",
	"in": "IN",
	"za": "ZA",
	"ae": "AE",
}

// detectCountry picks the region used for phone formatting: the og:locale
// region first, then the ccTLD, then the default.
func detectCountry(doc *goquery.Document, tld string) string {
	if loc, ok := doc.Find(`meta[property="og:locale"]`).First().Attr("content"); ok {
		if i := strings.IndexAny(loc, "_-"); i > 0 && i+1 < len(loc) {
			if region, err := language.ParseRegion(loc[i+1:]); err == nil && region.IsCountry() {
				return region.String()
			}
		}
	}
	if cc, ok := tldCountries[tld]; ok {
		return cc
	}
	return defaultCountry
}

// addressCountryHints resolves well known names and cities found in address
// text. Order matters: the first hint found wins.
var addressCountryHints = []struct {
	needle string
	region string
}{
	{"norway", "NO"}, {"norge", "NO"}, {"oslo", "NO"}, {"bergen", "NO"}, {"trondheim", "NO"},
	{"ireland", "IE"}, {"dublin", "IE"}, {"cork", "IE"}, {"galway", "IE"}, {"limerick", "IE"},
	{"united kingdom", "GB"}, {"england", "GB"}, {"scotland", "GB"}, {"wales", "GB"}, {"london", "GB"},
	{"sweden", "SE"}, {"sverige", "SE"}, {"stockholm", "SE"},
	{"denmark", "DK"}, {"danmark", "DK"}, {"copenhagen", "DK"}, {"københavn", "DK"},
	{"finland", "FI"}, {"helsinki", "FI"},
	{"germany", "DE"}, {"deutschland", "DE"}, {"berlin", "DE"},
	{"france", "FR"}, {"paris", "FR"},
	{"netherlands", "NL"}, {"amsterdam", "NL"},
	{"australia", "AU"}, {"sydney", "AU"}, {"melbourne", "AU"},
	{"canada", "CA"}, {"toronto", "CA"},
	{"united states", "US"}, {"usa", "US"},
}

// recordCountry resolves the human readable country for the record from
// structured data, address text or the ccTLD. A generic TLD with no other
// evidence yields "".
func recordCountry(p *page, address string) string {
	if name := countryName(p.ld.country); name != "" {
		return name
	}
	if address != "" {
		lower := strings.ToLower(address)
		for _, h := range addressCountryHints {
			if containsWord(lower, h.needle) {
				return countryName(h.region)
			}
		}
	}
	if cc, ok := tldCountries[p.tld]; ok {
		return countryName(cc)
	}
	return ""
}

// countryName turns an ISO region code into its English name. Values that are
// not codes are returned as written.
func countryName(v string) string {
	v = collapse(v)
	if v == "" {
		return ""
	}
	if len(v) == 2 || len(v) == 3 {
		if region, err := language.ParseRegion(v); err == nil && region.IsCountry() {
			if name := display.English.Regions().Name(region); name != "" {
				return name
			}
		}
	}
	return v
}

// containsWord reports whether needle occurs in s bounded by non-letters.
func containsWord(s, needle string) bool {
	for start := 0; ; {
		i := strings.Index(s[start:], needle)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(needle)
		if (i == 0 || !isLetter(s[i-1])) && (end == len(s) || !isLetter(s[end])) {
			return true
		}
		start = i + 1
	}
}

func isLetter(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

// appendCountry adds ", <country>" when the address does not already name it.
func appendCountry(address, country string) string {
	if address == "" || country == "" {
		return address
	}
	if strings.Contains(strings.ToLower(address), strings.ToLower(country)) {
		return address
	}
	return truncate(address+", "+country, maxAddressLen)
}
