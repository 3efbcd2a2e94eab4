package service

import (
	"strings"

	"github.com/octobees/site-scraper/internal/bitable"
	"github.com/octobees/site-scraper/internal/dto"
	"github.com/octobees/site-scraper/internal/entity"
)

// Config sources, from highest to lowest precedence.
const (
	SourceRequest = "request"
	SourceUser    = "user"
	SourceDefault = "default"
	SourceNone    = "none"
)

// ConfigLayer is one partial destination config and where it came from.
type ConfigLayer struct {
	Source string
	Config entity.FeishuConfig
}

// ResolvedConfig is the merged destination config.
type ResolvedConfig struct {
	Config entity.FeishuConfig
	// Source names the layer that supplied the table id.
	Source string
}

// ResolveConfig merges layers field by field; for each field the first layer
// with a non-empty value wins.
func ResolveConfig(layers ...ConfigLayer) ResolvedConfig {
	out := ResolvedConfig{Source: SourceNone}
	pick := func(dst *string, v string) bool {
		if *dst == "" && v != "" {
			*dst = v
			return true
		}
		return false
	}
	for _, l := range layers {
		pick(&out.Config.AppID, l.Config.AppID)
		pick(&out.Config.AppSecret, l.Config.AppSecret)
		pick(&out.Config.BitableAppToken, l.Config.BitableAppToken)
		if pick(&out.Config.TableID, l.Config.TableID) {
			out.Source = l.Source
		}
	}
	return out
}

// Status reports presence of each setting without exposing values.
func (r ResolvedConfig) Status(hasUserConfig bool) dto.ConfigStatus {
	return dto.ConfigStatus{
		HasAppID:           r.Config.AppID != "",
		HasAppSecret:       r.Config.AppSecret != "",
		HasTableID:         r.Config.TableID != "",
		HasBitableAppToken: r.Config.BitableAppToken != "",
		HasUserConfig:      hasUserConfig,
		Source:             r.Source,
	}
}

// RequestConfig reads the destination config carried by an extract request.
// The nested feishuConfig object wins over config, which wins over top-level
// fields.
func RequestConfig(req dto.ExtractRequest) entity.FeishuConfig {
	layers := []ConfigLayer{}
	for _, in := range []*dto.FeishuConfigInput{req.FeishuConfig, req.Config} {
		if in != nil {
			layers = append(layers, ConfigLayer{Config: ConfigFromInput(*in)})
		}
	}
	layers = append(layers, ConfigLayer{Config: ConfigFromInput(dto.FeishuConfigInput{
		AppID:           req.AppID,
		AppSecret:       req.AppSecret,
		TableID:         req.TableID,
		BitableAppToken: req.BitableAppToken,
	})})
	return ResolveConfig(layers...).Config
}

// ConfigFromInput trims the input and fills the app token and table id from a
// share link when they are missing.
func ConfigFromInput(in dto.FeishuConfigInput) entity.FeishuConfig {
	cfg := entity.FeishuConfig{
		AppID:           strings.TrimSpace(in.AppID),
		AppSecret:       strings.TrimSpace(in.AppSecret),
		TableID:         strings.TrimSpace(in.TableID),
		BitableAppToken: strings.TrimSpace(in.BitableAppToken),
	}
	if target, ok := bitable.ParseURL(in.BitableURL); ok {
		if cfg.BitableAppToken == "" {
			cfg.BitableAppToken = target.AppToken
		}
		if cfg.TableID == "" {
			cfg.TableID = target.TableID
		}
	}
	return cfg
}
