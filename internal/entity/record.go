package entity

// ExtractedRecord is the contact information scraped from a single page.
//
// String fields are empty and slices are non-nil when nothing was found, so the
// JSON form never carries null values.
type ExtractedRecord struct {
	URL         string   `json:"url"`
	CompanyName string   `json:"companyName"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	Instagram   []string `json:"instagram"`
	Facebook    []string `json:"facebook"`
	Country     string   `json:"country"`
}

// NewExtractedRecord returns an empty record for url with all slices allocated.
func NewExtractedRecord(url string) ExtractedRecord {
	return ExtractedRecord{
		URL:       url,
		Instagram: []string{},
		Facebook:  []string{},
	}
}

// Normalized returns a copy whose nil slices are replaced by empty ones.
func (r ExtractedRecord) Normalized() ExtractedRecord {
	if r.Instagram == nil {
		r.Instagram = []string{}
	} else {
		r.Instagram = append([]string{}, r.Instagram...)
	}
	if r.Facebook == nil {
		r.Facebook = []string{}
	} else {
		r.Facebook = append([]string{}, r.Facebook...)
	}
	return r
}
