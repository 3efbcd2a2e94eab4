package extractor

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/idna"
)

const maxEmailLen = 100

var emailStrategies = []strategy{
	mailtoEmail,
	textEmail,
	sourceEmail,
}

var (
	emailPattern      = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	emailExact        = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
	genericMailbox    = regexp.MustCompile(`(?i)(noreply|no-reply|donotreply|admin|^info@|^contact@|^support@|^hello@|^post@)`)
	assetLikeSuffixes = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".css", ".js"}
)

func mailtoEmail(p *page) string {
	var found string
	p.doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if len(href) < 7 || !strings.EqualFold(href[:7], "mailto:") {
			return true
		}
		addr := href[7:]
		if i := strings.IndexByte(addr, '?'); i >= 0 {
			addr = addr[:i]
		}
		if unescaped, err := url.PathUnescape(addr); err == nil {
			addr = unescaped
		}
		// mailto:a@x.com,b@x.com lists several recipients
		for _, candidate := range strings.Split(addr, ",") {
			if candidate = strings.TrimSpace(candidate); validEmail(candidate) {
				found = candidate
				return false
			}
		}
		return true
	})
	return found
}

func textEmail(p *page) string {
	return pickEmail(emailPattern.FindAllString(p.text, -1))
}

// sourceEmail scans the raw markup, which catches addresses that only appear
// in attributes or inline scripts.
func sourceEmail(p *page) string {
	return pickEmail(emailPattern.FindAllString(p.raw, -1))
}

// pickEmail returns the first valid non-generic candidate, or the first valid
// one when every candidate is generic.
func pickEmail(candidates []string) string {
	var fallback string
	for _, c := range candidates {
		c = strings.Trim(c, ".")
		if !validEmail(c) {
			continue
		}
		if !genericMailbox.MatchString(c) {
			return c
		}
		if fallback == "" {
			fallback = c
		}
	}
	return fallback
}

func validEmail(s string) bool {
	if s == "" || len(s) > maxEmailLen || !emailExact.MatchString(s) {
		return false
	}
	lower := strings.ToLower(s)
	if strings.Contains(lower, "example") || strings.Contains(lower, "test") {
		return false
	}
	for _, suffix := range assetLikeSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return false
		}
	}
	domain := lower[strings.LastIndexByte(lower, '@')+1:]
	if _, err := idna.Lookup.ToASCII(domain); err != nil {
		return false
	}
	return true
}
