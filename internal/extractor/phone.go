package extractor

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nyaruka/phonenumbers"
)

const (
	minPhoneDigits = 7
	maxPhoneDigits = 16
)

var phoneStrategies = []strategy{
	telLinkPhone,
	localePhone,
	internationalPhone,
	structuredPhone,
	fallbackPhone,
}

func telLinkPhone(p *page) string {
	var found string
	p.doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if len(href) < 4 || !strings.EqualFold(href[:4], "tel:") {
			return true
		}
		raw := href[4:]
		if unescaped, err := url.PathUnescape(raw); err == nil {
			raw = unescaped
		}
		if n := len(digitsOnly(raw)); n >= minPhoneDigits && n <= maxPhoneDigits {
			found = FormatPhone(raw, p.country)
			return false
		}
		return true
	})
	return found
}

// localePatterns hold the prefixed and local number shapes per region, tried
// before any other text pattern when the page country matches.
var localePatterns = map[string][]*regexp.Regexp{
	"NO": {
		regexp.MustCompile(`\+47[\s-]*\d{2}[\s-]*\d{2}[\s-]*\d{2}[\s-]*\d{2}\b`),
		regexp.MustCompile(`\b\d{2} \d{2} \d{2} \d{2}\b`),
		regexp.MustCompile(`\b\d{3} \d{2} \d{3}\b`),
	},
	"GB": {
		regexp.MustCompile(`\+44\s*(?:\(0\)\s*)?\d{2,4}[\s-]*\d{3,4}[\s-]*\d{3,4}\b`),
		regexp.MustCompile(`\b0\d{2,4}[\s-]?\d{3,4}[\s-]?\d{3,4}\b`),
	},
	"IE": {
		regexp.MustCompile(`\+353\s*(?:\(0\)\s*)?\d{1,3}[\s-]*\d{3,4}[\s-]*\d{3,4}\b`),
		regexp.MustCompile(`\b0\d{1,3}[\s-]?\d{3,4}[\s-]?\d{3,4}\b`),
	},
	"US": {
		regexp.MustCompile(`\+1[\s.-]*\(?\d{3}\)?[\s.-]*\d{3}[\s.-]*\d{4}\b`),
		regexp.MustCompile(`\(?\b[2-9]\d{2}\)?[\s.-]\d{3}[\s.-]\d{4}\b`),
	},
	"AU": {
		regexp.MustCompile(`\+61\s*(?:\(0\)\s*)?\d[\s-]*\d{4}[\s-]*\d{4}\b`),
		regexp.MustCompile(`\b0\d[\s-]?\d{4}[\s-]?\d{4}\b`),
	},
}

// internationalOrder is the order prefixed patterns are tried on pages from
// other regions.
var internationalOrder = []string{"NO", "GB", "IE", "US", "AU"}

var (
	genericInternational = regexp.MustCompile(`\+\d{1,3}[\s-]*\d{2,4}[\s-]*\d{2,4}[\s-]*\d{2,4}`)
	digitRun             = regexp.MustCompile(`\+?\d[\d\s\-().]{5,20}\d`)
	// copyright spans such as "2019 - 2024" in footers
	yearRange = regexp.MustCompile(`^(?:19|20)\d{2}\s*-\s*(?:19|20)\d{2}$`)
)

func init() {
	localePatterns["CA"] = localePatterns["US"]
}

func localePhone(p *page) string {
	for _, re := range localePatterns[p.country] {
		if m := re.FindString(p.text); m != "" {
			return FormatPhone(m, p.country)
		}
	}
	return ""
}

func internationalPhone(p *page) string {
	for _, cc := range internationalOrder {
		if m := localePatterns[cc][0].FindString(p.text); m != "" {
			return FormatPhone(m, cc)
		}
	}
	if m := genericInternational.FindString(p.text); m != "" {
		return FormatPhone(m, p.country)
	}
	return ""
}

func structuredPhone(p *page) string {
	if n := len(digitsOnly(p.ld.telephone)); n < minPhoneDigits || n > maxPhoneDigits {
		return ""
	}
	return FormatPhone(p.ld.telephone, p.country)
}

func fallbackPhone(p *page) string {
	for _, m := range digitRun.FindAllString(p.text, -1) {
		if yearRange.MatchString(strings.TrimSpace(m)) {
			continue
		}
		if n := len(digitsOnly(m)); n >= minPhoneDigits && n <= maxPhoneDigits {
			return FormatPhone(m, p.country)
		}
	}
	return ""
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var (
	ieGrouping = regexp.MustCompile(`^(\d{2,3})(\d{3,4})(\d{3,4})$`)
	gbGrouping = regexp.MustCompile(`^(\d{2,4})(\d{3,4})(\d{3,4})$`)
	naGrouping = regexp.MustCompile(`^(\d{3})(\d{3})(\d{4})$`)
	auGrouping = regexp.MustCompile(`^(\d)(\d{4})(\d{4})$`)
	anyGroup   = regexp.MustCompile(`^(\d{1,3})(\d{2,4})(\d{2,4})(\d{2,4})`)
)

// FormatPhone normalises a raw phone match for country. An explicit "+"
// country code in raw takes precedence over the page country. The result only
// depends on the digits, so formatting an already formatted number is stable.
func FormatPhone(raw, country string) string {
	raw = strings.ReplaceAll(raw, "(0)", "")
	digits := digitsOnly(raw)
	if digits == "" {
		return collapse(raw)
	}
	plus := strings.HasPrefix(strings.TrimSpace(raw), "+")

	cc := strings.ToUpper(country)
	if cc == "UK" {
		cc = "GB"
	}
	if plus {
		if region := prefixRegion(digits); region != "" {
			cc = region
		}
	}

	if formatted, ok := formatLocal(digits, cc, plus); ok {
		return formatted
	}
	return formatOther(digits, cc, plus)
}

// prefixRegion resolves the main region for the calling code at the start of
// digits.
func prefixRegion(digits string) string {
	num, err := phonenumbers.Parse("+"+digits, phonenumbers.UNKNOWN_REGION)
	if err != nil {
		return ""
	}
	region := phonenumbers.GetRegionCodeForCountryCode(int(num.GetCountryCode()))
	if region == phonenumbers.UNKNOWN_REGION {
		return ""
	}
	return region
}

func formatLocal(digits, cc string, plus bool) (string, bool) {
	switch cc {
	case "NO":
		national := digits
		if strings.HasPrefix(digits, "47") && len(digits) == 10 {
			national = digits[2:]
		}
		if len(national) != 8 {
			return "", false
		}
		return "+47 " + national[0:2] + " " + national[2:4] + " " + national[4:6] + " " + national[6:8], true
	case "IE":
		return regrouped(trunk(digits, "353", plus), "+353 ", ieGrouping, "$1 $2 $3")
	case "GB":
		return regrouped(trunk(digits, "44", plus), "+44 ", gbGrouping, "$1 $2 $3")
	case "US", "CA":
		national := digits
		if len(digits) == 11 && digits[0] == '1' {
			national = digits[1:]
		}
		return regrouped(national, "+1 ", naGrouping, "$1-$2-$3")
	case "AU":
		return regrouped(trunk(digits, "61", plus), "+61 ", auGrouping, "$1 $2 $3")
	}
	return "", false
}

// trunk strips the calling code or the national trunk zero from digits.
func trunk(digits, code string, plus bool) string {
	switch {
	case strings.HasPrefix(digits, code):
		return digits[len(code):]
	case strings.HasPrefix(digits, "0"):
		return digits[1:]
	case plus:
		return ""
	}
	return digits
}

func regrouped(national, prefix string, re *regexp.Regexp, tmpl string) (string, bool) {
	if national == "" || !re.MatchString(national) {
		return "", false
	}
	return prefix + re.ReplaceAllString(national, tmpl), true
}

func formatOther(digits, cc string, plus bool) string {
	input, region := digits, cc
	if plus {
		input, region = "+"+digits, phonenumbers.UNKNOWN_REGION
	}
	if num, err := phonenumbers.Parse(input, region); err == nil && phonenumbers.IsValidNumber(num) {
		return phonenumbers.Format(num, phonenumbers.INTERNATIONAL)
	}
	if anyGroup.MatchString(digits) {
		return "+" + anyGroup.ReplaceAllString(digits, "$1 $2 $3 $4")
	}
	return "+" + digits
}
