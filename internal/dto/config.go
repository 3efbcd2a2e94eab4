package dto

// SaveConfigRequest carries a destination config to store for the caller.
// The feishu-prefixed names are accepted for older clients.
type SaveConfigRequest struct {
	AppID           string `json:"appId"`
	AppSecret       string `json:"appSecret"`
	TableID         string `json:"tableId"`
	BitableAppToken string `json:"bitableAppToken"`
	BitableURL      string `json:"bitableUrl"`

	FeishuAppID     string `json:"feishuAppId"`
	FeishuAppSecret string `json:"feishuAppSecret"`
	FeishuTableID   string `json:"feishuTableId"`
}

// ConfigView is the masked representation of a saved config.
type ConfigView struct {
	AppID           string `json:"appId"`
	AppSecret       string `json:"appSecret"`
	TableID         string `json:"tableId"`
	BitableAppToken string `json:"bitableAppToken,omitempty"`
}

// ConfigResponse is returned by GET /config.
type ConfigResponse struct {
	OK        bool       `json:"ok"`
	RequestID string     `json:"requestId,omitempty"`
	Config    ConfigView `json:"config"`
	UpdatedAt string     `json:"updatedAt,omitempty"`
}

// HealthConfig reports which process-wide settings are present.
type HealthConfig struct {
	HasAppID      bool `json:"hasAppId"`
	HasAppSecret  bool `json:"hasAppSecret"`
	HasTableID    bool `json:"hasTableId"`
	HasEncKey     bool `json:"hasEncKey"`
	HasStorage    bool `json:"hasStorage"`
	RenderEnabled bool `json:"renderEnabled"`
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	OK        bool         `json:"ok"`
	Timestamp string       `json:"timestamp"`
	Config    HealthConfig `json:"config"`
	Message   string       `json:"message"`
}
