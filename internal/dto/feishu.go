package dto

// ValidateFeishuRequest checks a pair of app credentials, and optionally an app token.
type ValidateFeishuRequest struct {
	AppID     string `json:"appId"`
	AppSecret string `json:"appSecret"`
	AppToken  string `json:"appToken"`
}

// PingFeishuRequest writes a single test message to the destination table.
type PingFeishuRequest struct {
	AppID     string `json:"appId"`
	AppSecret string `json:"appSecret"`
	TableID   string `json:"tableId"`
	AppToken  string `json:"appToken"`
	Message   string `json:"message"`
}

// AppCheck reports whether an app token is reachable with the given credentials.
type AppCheck struct {
	OK       bool   `json:"ok"`
	AppToken string `json:"appToken"`
	Name     string `json:"name,omitempty"`
	Code     int    `json:"code,omitempty"`
	Message  string `json:"message,omitempty"`
}

// ValidateFeishuResponse is returned by POST /feishu/validate.
type ValidateFeishuResponse struct {
	OK        bool      `json:"ok"`
	RequestID string    `json:"requestId,omitempty"`
	Step      string    `json:"step"`
	TokenOK   bool      `json:"tokenOk"`
	AppCheck  *AppCheck `json:"appCheck"`
}

// PingFeishuResponse is returned by POST /feishu/ping.
type PingFeishuResponse struct {
	OK        bool   `json:"ok"`
	RequestID string `json:"requestId,omitempty"`
	RecordID  string `json:"recordId"`
	FieldName string `json:"fieldName"`
}
