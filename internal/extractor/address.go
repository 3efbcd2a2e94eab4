package extractor

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxAddressLen = 200

var addressStrategies = []strategy{
	structuredAddress,
	elementAddress,
	postalCodeAddress,
}

func structuredAddress(p *page) string {
	return cleanAddress(p.ld.address)
}

var addressSelectors = []string{
	"address",
	`[itemprop="address"]`,
	".address",
	"#address",
	`[class*="address"]`,
	`[class*="location"]`,
	`[class*="contact-info"]`,
	`[class*="contact"]`,
}

var addressKeywords = []string{
	"address", "adresse", "地址", "location", "位置", "street", "road", "avenue", "街道",
}

// streetSuffix matches common street words in the supported locales.
var streetSuffix = regexp.MustCompile(`(?i)\b(?:street|road|avenue|lane|drive|boulevard|blvd|way|place|square|weg|rue|st\.|rd\.|ave\.)|(?:gata|gate|gatan|veien|vegen|vei|vej|vägen|straße|strasse)\b`)

var hasDigit = regexp.MustCompile(`\d`)

func elementAddress(p *page) string {
	for _, sel := range addressSelectors {
		text := firstText(p.doc, sel)
		if text == "" {
			continue
		}
		if containsAddressKeyword(text) || (hasDigit.MatchString(text) && streetSuffix.MatchString(text)) {
			return cleanAddress(text)
		}
	}
	return ""
}

func containsAddressKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range addressKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// postalPatterns are keyed by ISO region. Bare digit codes require a
// capitalised place name after them to keep years and prices out.
var postalPatterns = map[string]*regexp.Regexp{
	"NO": regexp.MustCompile(`\b\d{4}\s+[A-ZÆØÅ][a-zæøå]+`),
	"DK": regexp.MustCompile(`\b\d{4}\s+[A-ZÆØÅ][a-zæøå]+`),
	"SE": regexp.MustCompile(`\b\d{3}\s?\d{2}\s+[A-ZÅÄÖ][a-zåäö]+`),
	"FI": regexp.MustCompile(`\b\d{5}\s+[A-ZÅÄÖ][a-zåäö]+`),
	"DE": regexp.MustCompile(`\b\d{5}\s+[A-ZÄÖÜ][a-zäöüß]+`),
	"FR": regexp.MustCompile(`\b\d{5}\s+[A-Z][\p{L}-]+`),
	"ES": regexp.MustCompile(`\b\d{5}\s+[A-Z][\p{L}-]+`),
	"IT": regexp.MustCompile(`\b\d{5}\s+[A-Z][\p{L}-]+`),
	"CH": regexp.MustCompile(`\b\d{4}\s+[A-Z][\p{L}-]+`),
	"AT": regexp.MustCompile(`\b\d{4}\s+[A-Z][\p{L}-]+`),
	"BE": regexp.MustCompile(`\b\d{4}\s+[A-Z][\p{L}-]+`),
	"NL": regexp.MustCompile(`\b\d{4}\s?[A-Z]{2}\b`),
	"PT": regexp.MustCompile(`\b\d{4}-\d{3}\b`),
	"PL": regexp.MustCompile(`\b\d{2}-\d{3}\b`),
	"GB": regexp.MustCompile(`\b[A-Z]{1,2}\d[A-Z\d]?\s*\d[A-Z]{2}\b`),
	"IE": regexp.MustCompile(`\b(?:[AC-FHKNPRTV-Y]\d{2}|D6W)\s?[AC-FHKNPRTV-Y\d]{4}\b|\bDublin\s+\d{1,2}\b`),
	"US": regexp.MustCompile(`\b[A-Z]{2}\s+\d{5}(?:-\d{4})?\b`),
	"CA": regexp.MustCompile(`\b[A-Z]\d[A-Z]\s?\d[A-Z]\d\b`),
	"AU": regexp.MustCompile(`\b(?:NSW|VIC|QLD|WA|SA|TAS|ACT|NT)\s+\d{4}\b`),
	"NZ": regexp.MustCompile(`\b[A-Z][a-z]+\s+\d{4}\b`),
}

const (
	postalLookBehind = 80
	postalLookAhead  = 40
)

// postalCodeAddress scans the body text for the detected country's postal
// code format and returns the surrounding text window.
func postalCodeAddress(p *page) string {
	re, ok := postalPatterns[p.country]
	if !ok {
		return ""
	}
	loc := re.FindStringIndex(p.text)
	if loc == nil {
		return ""
	}
	return cleanAddress(postalWindow(p.text, loc))
}

const windowDelimiters = ".:;|!?•"

func isWindowDelimiter(r rune) bool {
	return strings.ContainsRune(windowDelimiters, r)
}

// postalWindow widens the match at loc to the enclosing clause, bounded on both
// sides. Partial words at a cut edge are dropped.
func postalWindow(text string, loc []int) string {
	start := loc[0] - postalLookBehind
	if start < 0 {
		start = 0
	}
	for start < loc[0] && !utf8.RuneStart(text[start]) {
		start++
	}
	end := loc[1] + postalLookAhead
	if end > len(text) {
		end = len(text)
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}

	before := text[start:loc[0]]
	if i := strings.LastIndexFunc(before, isWindowDelimiter); i >= 0 {
		_, size := utf8.DecodeRuneInString(before[i:])
		before = before[i+size:]
	} else if start > 0 {
		if i := strings.IndexByte(before, ' '); i >= 0 {
			before = before[i+1:]
		}
	}

	after := text[loc[1]:end]
	if i := strings.IndexFunc(after, isWindowDelimiter); i >= 0 {
		after = after[:i]
	} else if end < len(text) {
		if i := strings.LastIndexByte(after, ' '); i >= 0 {
			after = after[:i]
		}
	}

	return before + text[loc[0]:loc[1]] + after
}

func cleanAddress(s string) string {
	s = strings.Trim(collapse(s), " ,")
	return truncate(s, maxAddressLen)
}
