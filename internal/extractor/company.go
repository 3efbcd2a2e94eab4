package extractor

import (
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

const maxBrandLen = 100

var companyNameStrategies = []strategy{
	bounded(titleCompanyName),
	brandElementName,
	bounded(ogTitleCompanyName),
	bounded(hostCompanyName),
}

func metaStrategy(key string) strategy {
	return func(p *page) string {
		return metaContent(p.doc, key)
	}
}

// bounded discards names of maxBrandLen runes or more.
func bounded(s strategy) strategy {
	return func(p *page) string {
		if v := s(p); runeLen(v) < maxBrandLen {
			return v
		}
		return ""
	}
}

// titleSuffix matches a trailing "| ...", "– ...", "— ..." or " - ..." part of a
// title. A bare hyphen inside a word is kept so names like Coca-Cola survive.
var titleSuffix = regexp.MustCompile(`(\s+-|\s*[|–—]).*$`)

func stripTitleSuffix(title string) string {
	return strings.TrimSpace(titleSuffix.ReplaceAllString(title, ""))
}

func titleCompanyName(p *page) string {
	return stripTitleSuffix(firstText(p.doc, "title"))
}

func ogTitleCompanyName(p *page) string {
	return stripTitleSuffix(metaContent(p.doc, "og:title"))
}

// brandSelectors are tried in order; only the first element of each counts.
var brandSelectors = []string{
	".logo",
	".brand",
	".company-name",
	".site-name",
	"h1",
	".logo-text",
	".brand-name",
	`[class*="logo"]`,
	".site-title",
	".brand-logo",
	".company-logo",
}

func brandElementName(p *page) string {
	for _, sel := range brandSelectors {
		if v := firstText(p.doc, sel); v != "" && runeLen(v) < maxBrandLen {
			return v
		}
	}
	return ""
}

// hostCompanyName derives a name from the registrable domain, e.g.
// www.acme.co.uk yields "acme".
func hostCompanyName(p *page) string {
	if p.host == "" || p.host == "localhost" || p.tld == "" {
		return ""
	}
	etld1, err := publicsuffix.EffectiveTLDPlusOne(p.host)
	if err != nil {
		return ""
	}
	suffix, _ := publicsuffix.PublicSuffix(p.host)
	return strings.TrimSuffix(etld1, "."+suffix)
}
