package extractor

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// page is the per-document state shared by all strategies.
type page struct {
	doc     *goquery.Document
	raw     string
	base    *url.URL
	host    string
	tld     string
	country string
	text    string
	ld      structuredData
	variant Variant
}

func newPage(doc *goquery.Document, pageURL string, variant Variant) *page {
	p := &page{doc: doc, variant: variant}
	if u, err := url.Parse(strings.TrimSpace(pageURL)); err == nil && u.Host != "" {
		p.base = u
		p.host = strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
		if i := strings.LastIndexByte(p.host, '.'); i >= 0 {
			p.tld = p.host[i+1:]
		}
	}
	if raw, err := doc.Html(); err == nil {
		p.raw = raw
	}
	p.ld = parseStructuredData(doc)
	p.text = visibleText(doc)
	p.country = detectCountry(doc, p.tld)
	return p
}

var whitespace = regexp.MustCompile(`\s+`)

// collapse trims s and folds every whitespace run into a single space.
func collapse(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if runeLen(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}

// firstText returns the collapsed text of the first element matching selector.
func firstText(doc *goquery.Document, selector string) string {
	return collapse(doc.Find(selector).First().Text())
}

// metaContent returns the content of the first meta tag whose name or property
// equals key.
func metaContent(doc *goquery.Document, key string) string {
	for _, attr := range []string{"name", "property"} {
		sel := doc.Find(`meta[` + attr + `="` + key + `"]`).First()
		if v, ok := sel.Attr("content"); ok {
			if v = collapse(v); v != "" {
				return v
			}
		}
	}
	return ""
}

var skippedTextElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"svg":      true,
	"head":     true,
}

// visibleText flattens the body text with a space between text nodes so words
// in adjacent elements do not run together.
func visibleText(doc *goquery.Document) string {
	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			b.WriteByte(' ')
			return
		case html.ElementNode:
			if skippedTextElements[n.Data] {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range root.Nodes {
		walk(n)
	}
	return collapse(b.String())
}

// hrefs returns the trimmed href attribute of every anchor in or under sel.
func hrefs(sel *goquery.Selection) []string {
	var out []string
	sel.Find("a[href]").AddBackFiltered("a[href]").Each(func(_ int, a *goquery.Selection) {
		if v, ok := a.Attr("href"); ok {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	})
	return out
}
