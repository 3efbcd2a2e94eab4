package entity

import "time"

// FeishuConfig identifies the Bitable table extracted records are written to.
type FeishuConfig struct {
	AppID           string `json:"appId"`
	AppSecret       string `json:"appSecret"`
	TableID         string `json:"tableId"`
	BitableAppToken string `json:"bitableAppToken,omitempty"`
}

// CanWrite reports whether the required credentials are all present.
func (c FeishuConfig) CanWrite() bool {
	return c.AppID != "" && c.AppSecret != "" && c.TableID != ""
}

// AppToken returns the Bitable app token, falling back to the app id for
// configurations saved before the token was a separate setting.
func (c FeishuConfig) AppToken() string {
	if c.BitableAppToken != "" {
		return c.BitableAppToken
	}
	return c.AppID
}

// StoredFeishuConfig is a sealed per-user configuration row.
type StoredFeishuConfig struct {
	Subject   string    `json:"subject"`
	Sealed    string    `json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}
