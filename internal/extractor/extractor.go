// Package extractor turns a single HTML document into an ExtractedRecord.
//
// Every field is produced by an ordered list of strategies evaluated against
// the parsed page; the first strategy returning a non-empty value wins. The
// extractor performs no network access and is deterministic for a given input.
package extractor

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/octobees/site-scraper/internal/entity"
)

// ErrUnparsable is returned when the input cannot be read as an HTML document.
var ErrUnparsable = errors.New("document could not be parsed")

// Variant selects thresholds that differ between a raw HTML fetch and a
// browser-rendered DOM.
type Variant int

const (
	// VariantHTML is used for documents retrieved with a plain HTTP GET.
	VariantHTML Variant = iota
	// VariantRendered is used for DOM snapshots taken after scripts ran.
	VariantRendered
)

// paragraph length windows for the description fallback.
var paragraphBounds = map[Variant][2]int{
	VariantHTML:     {10, 500},
	VariantRendered: {50, 300},
}

// Extractor applies the field strategies to documents.
type Extractor struct {
	variant Variant
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithVariant overrides the document variant (defaults to VariantHTML).
func WithVariant(v Variant) Option {
	return func(e *Extractor) {
		e.variant = v
	}
}

// New builds an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{variant: VariantHTML}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractString parses html and extracts a record for pageURL.
func (e *Extractor) ExtractString(html, pageURL string) (entity.ExtractedRecord, error) {
	return e.Extract(strings.NewReader(html), pageURL)
}

// Extract parses r and extracts a record for pageURL.
//
// Missing fields are not errors; the only failure is an unreadable document.
func (e *Extractor) Extract(r io.Reader, pageURL string) (entity.ExtractedRecord, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return entity.ExtractedRecord{}, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}
	return e.ExtractDocument(doc, pageURL), nil
}

// ExtractDocument extracts a record from an already parsed document.
func (e *Extractor) ExtractDocument(doc *goquery.Document, pageURL string) entity.ExtractedRecord {
	p := newPage(doc, pageURL, e.variant)

	rec := entity.NewExtractedRecord(pageURL)
	rec.CompanyName = firstOf(p, companyNameStrategies...)
	rec.Description = firstOf(p, descriptionStrategies...)
	rec.Address = firstOf(p, addressStrategies...)
	rec.Email = firstOf(p, emailStrategies...)
	rec.Phone = firstOf(p, phoneStrategies...)
	rec.Instagram = extractSocial(p, instagram)
	rec.Facebook = extractSocial(p, facebook)
	rec.Country = recordCountry(p, rec.Address)
	rec.Address = appendCountry(rec.Address, rec.Country)

	return rec.Normalized()
}

// strategy produces a candidate value for one field, or "" when it has none.
type strategy func(p *page) string

func firstOf(p *page, strategies ...strategy) string {
	for _, s := range strategies {
		if v := strings.TrimSpace(s(p)); v != "" {
			return v
		}
	}
	return ""
}
