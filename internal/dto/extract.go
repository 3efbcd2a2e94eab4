package dto

import "github.com/octobees/site-scraper/internal/entity"

// FeishuConfigInput is the optional destination config carried by a request.
type FeishuConfigInput struct {
	AppID           string `json:"appId"`
	AppSecret       string `json:"appSecret"`
	TableID         string `json:"tableId"`
	BitableAppToken string `json:"bitableAppToken"`
	BitableURL      string `json:"bitableUrl"`
}

// ExtractRequest is the payload accepted by POST /extract.
type ExtractRequest struct {
	URL          string             `json:"url" query:"url"`
	U            string             `json:"-" query:"u"`
	Render       bool               `json:"render" query:"render"`
	FeishuConfig *FeishuConfigInput `json:"feishuConfig"`
	Config       *FeishuConfigInput `json:"config"`

	// Legacy clients send credentials at the top level.
	AppID           string `json:"appId"`
	AppSecret       string `json:"appSecret"`
	TableID         string `json:"tableId"`
	BitableAppToken string `json:"bitableAppToken"`
}

// TargetURL returns the url from the body or the short query alias.
func (r ExtractRequest) TargetURL() string {
	if r.URL != "" {
		return r.URL
	}
	return r.U
}

// ConfigStatus reports which destination settings were resolved, never their values.
type ConfigStatus struct {
	HasAppID           bool   `json:"hasAppId"`
	HasAppSecret       bool   `json:"hasAppSecret"`
	HasTableID         bool   `json:"hasTableId"`
	HasBitableAppToken bool   `json:"hasBitableAppToken"`
	HasUserConfig      bool   `json:"hasUserConfig"`
	Source             string `json:"source"`
}

// ExtractResponse is returned by /extract when the page was fetched and parsed.
type ExtractResponse struct {
	OK            bool                   `json:"ok"`
	RequestID     string                 `json:"requestId,omitempty"`
	URL           string                 `json:"url"`
	Results       entity.ExtractedRecord `json:"results"`
	FeishuSuccess bool                   `json:"feishuSuccess"`
	FeishuStatus  string                 `json:"feishuStatus"`
	FeishuMessage string                 `json:"feishuMessage"`
	FeishuError   string                 `json:"feishuError,omitempty"`
	RecordID      string                 `json:"recordId,omitempty"`
	ConfigStatus  ConfigStatus           `json:"configStatus"`
}
