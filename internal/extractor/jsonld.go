package extractor

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// structuredData is what the strategies use from JSON-LD blocks.
type structuredData struct {
	address   string
	country   string
	telephone string
	sameAs    []string
}

// parseStructuredData walks every ld+json block. Object keys are visited in
// sorted order so the result does not depend on map iteration.
func parseStructuredData(doc *goquery.Document) structuredData {
	var sd structuredData
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var v any
		if err := json.Unmarshal([]byte(strings.TrimSpace(s.Text())), &v); err != nil {
			return
		}
		sd.visit(v)
	})
	return sd
}

func (sd *structuredData) visit(node any) {
	switch n := node.(type) {
	case []any:
		for _, item := range n {
			sd.visit(item)
		}
	case map[string]any:
		if addr, ok := n["address"]; ok {
			sd.addAddress(addr)
		}
		if sd.telephone == "" {
			if tel, ok := n["telephone"].(string); ok {
				sd.telephone = strings.TrimSpace(tel)
			}
		}
		switch same := n["sameAs"].(type) {
		case string:
			sd.sameAs = append(sd.sameAs, same)
		case []any:
			for _, item := range same {
				if s, ok := item.(string); ok {
					sd.sameAs = append(sd.sameAs, s)
				}
			}
		}

		keys := make([]string, 0, len(n))
		for k := range n {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			switch n[k].(type) {
			case map[string]any, []any:
				sd.visit(n[k])
			}
		}
	}
}

func (sd *structuredData) addAddress(v any) {
	var candidate string
	switch a := v.(type) {
	case string:
		candidate = collapse(a)
	case map[string]any:
		country := addressCountry(a["addressCountry"])
		candidate = postalAddress(a, country)
		if sd.country == "" {
			sd.country = country
		}
	case []any:
		for _, item := range a {
			sd.addAddress(item)
		}
		return
	}
	if runeLen(candidate) > runeLen(sd.address) {
		sd.address = candidate
	}
}

var postalAddressParts = []string{"streetAddress", "postalCode", "addressLocality", "addressRegion"}

func addressCountry(v any) string {
	switch c := v.(type) {
	case string:
		return collapse(c)
	case map[string]any:
		if name, ok := c["name"].(string); ok {
			return collapse(name)
		}
	}
	return ""
}

// postalAddress joins the parts of a schema.org PostalAddress.
func postalAddress(a map[string]any, country string) string {
	var parts []string
	for _, key := range postalAddressParts {
		if s, ok := a[key].(string); ok {
			if s = collapse(s); s != "" {
				parts = append(parts, s)
			}
		}
	}
	if name := countryName(country); name != "" {
		parts = append(parts, name)
	}
	return strings.Join(parts, ", ")
}
