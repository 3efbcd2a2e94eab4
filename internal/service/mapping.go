package service

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/octobees/site-scraper/internal/entity"
)

// LogicalField names a value of the extracted record that can be written to a
// Bitable column.
type LogicalField string

const (
	FieldURL         LogicalField = "url"
	FieldCompanyName LogicalField = "companyName"
	FieldDescription LogicalField = "description"
	FieldCountry     LogicalField = "country"
	FieldAddress     LogicalField = "address"
	FieldEmail       LogicalField = "email"
	FieldPhone       LogicalField = "phone"
	FieldInstagram   LogicalField = "instagram"
	FieldFacebook    LogicalField = "facebook"
	FieldExtractedAt LogicalField = "extractedAt"
	FieldRaw         LogicalField = "raw"
)

// columnCandidates lists, per logical field, the column names accepted in a
// live table schema. The first entry is the default name.
var columnCandidates = []struct {
	field LogicalField
	names []string
}{
	{FieldURL, []string{"网站URL", "官网地址", "网站地址", "链接", "URL", "Website"}},
	{FieldCompanyName, []string{"公司名称", "公司名", "品牌", "名称", "店铺名称", "Company"}},
	{FieldDescription, []string{"描述", "简介", "公司简介", "Description"}},
	{FieldCountry, []string{"Country", "国家", "地区", "国家地区"}},
	{FieldAddress, []string{"地址", "公司地址", "联系地址", "所在地", "Address"}},
	{FieldEmail, []string{"邮箱", "Email", "电子邮箱"}},
	{FieldPhone, []string{"电话", "Phone", "联系电话"}},
	{FieldInstagram, []string{"Instagram", "ins"}},
	{FieldFacebook, []string{"Facebook", "facebook"}},
	{FieldExtractedAt, []string{"提取时间", "时间", "created_at"}},
	{FieldRaw, []string{"来自 gpt 的输出", "原始数据", "raw"}},
}

// FieldMapping maps logical fields to the column they are written to.
type FieldMapping map[LogicalField]string

// MapColumns intersects the candidate names with a live schema. The result
// may be empty.
func MapColumns(schema []string) FieldMapping {
	present := make(map[string]bool, len(schema))
	for _, name := range schema {
		present[strings.TrimSpace(name)] = true
	}

	mapping := FieldMapping{}
	for _, c := range columnCandidates {
		for _, name := range c.names {
			if present[name] {
				mapping[c.field] = name
				break
			}
		}
	}
	return mapping
}

// DefaultMapping is used when the schema is unknown or matched nothing.
func DefaultMapping() FieldMapping {
	mapping := make(FieldMapping, len(columnCandidates))
	for _, c := range columnCandidates {
		mapping[c.field] = c.names[0]
	}
	return mapping
}

// RawColumn returns the catch-all column name for a schema: the first raw
// candidate present, else the default.
func RawColumn(schema []string) string {
	if name, ok := MapColumns(schema)[FieldRaw]; ok {
		return name
	}
	return DefaultMapping()[FieldRaw]
}

// rawOutput is the pretty-printed record stored in the catch-all column.
type rawOutput struct {
	entity.ExtractedRecord
	ExtractedAt string `json:"extractedAt"`
}

// BuildFields builds the create-record payload for rec against schema. The
// second value reports whether the default column set was used.
func BuildFields(rec entity.ExtractedRecord, schema []string, now time.Time) (map[string]any, bool) {
	rec = rec.Normalized()
	stamp := now.UTC().Format(time.RFC3339)

	mapping := MapColumns(schema)
	usedDefaults := len(mapping) == 0
	if usedDefaults {
		mapping = DefaultMapping()
	}

	values := map[LogicalField]string{
		FieldURL:         rec.URL,
		FieldCompanyName: rec.CompanyName,
		FieldDescription: rec.Description,
		FieldCountry:     rec.Country,
		FieldAddress:     rec.Address,
		FieldEmail:       rec.Email,
		FieldPhone:       rec.Phone,
		FieldInstagram:   strings.Join(rec.Instagram, ", "),
		FieldFacebook:    strings.Join(rec.Facebook, ", "),
		FieldExtractedAt: stamp,
	}

	fields := make(map[string]any, len(mapping)+1)
	for field, column := range mapping {
		if field == FieldRaw {
			continue
		}
		fields[column] = values[field]
	}

	raw, err := json.MarshalIndent(rawOutput{ExtractedRecord: rec, ExtractedAt: stamp}, "", "  ")
	if err == nil {
		rawColumn := mapping[FieldRaw]
		if rawColumn == "" {
			rawColumn = DefaultMapping()[FieldRaw]
		}
		fields[rawColumn] = string(raw)
	}
	return fields, usedDefaults
}
