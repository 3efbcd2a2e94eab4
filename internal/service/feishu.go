package service

import (
	"context"
	"fmt"

	"github.com/octobees/site-scraper/internal/bitable"
	"github.com/octobees/site-scraper/internal/entity"
)

// defaultPingMessage is written when a ping carries no message.
const defaultPingMessage = "成功"

// AppCheck is the outcome of looking up an app token.
type AppCheck struct {
	OK       bool
	AppToken string
	Name     string
	Code     int
	Message  string
}

// ValidateResult describes checked credentials.
type ValidateResult struct {
	TokenOK  bool
	AppCheck *AppCheck
}

// PingResult describes a written test message.
type PingResult struct {
	RecordID  string
	FieldName string
	AppToken  string
}

// Validate exchanges the app credentials and, when appToken is given, checks
// that the app is reachable with them. An unreachable app is reported in the
// result rather than as an error.
func (w *BitableWriter) Validate(ctx context.Context, appID, appSecret, appToken string) (ValidateResult, error) {
	if appID == "" || appSecret == "" {
		return ValidateResult{}, ErrMissingFields
	}

	s, err := w.open(ctx, entity.FeishuConfig{AppID: appID, AppSecret: appSecret, BitableAppToken: appToken})
	if err != nil {
		return ValidateResult{}, err
	}

	result := ValidateResult{TokenOK: true}
	if appToken == "" {
		return result, nil
	}

	check := &AppCheck{AppToken: s.appToken}
	info, err := w.api.GetApp(ctx, s.token, s.appToken)
	if err != nil {
		check.Code = bitable.Code(err)
		check.Message = err.Error()
		w.logger.Info("app token check failed", "app_token", s.appToken, "err", err)
	} else {
		check.OK = true
		check.Name = info.Name
	}
	result.AppCheck = check
	return result, nil
}

// Ping writes message to the catch-all column of the configured table.
func (w *BitableWriter) Ping(ctx context.Context, cfg entity.FeishuConfig, message string) (PingResult, error) {
	if !cfg.CanWrite() {
		return PingResult{}, ErrMissingFields
	}
	if !bitable.ValidTableID(cfg.TableID) {
		return PingResult{}, ErrInvalidTableID
	}
	if message == "" {
		message = defaultPingMessage
	}

	s, err := w.open(ctx, cfg)
	if err != nil {
		return PingResult{}, err
	}

	schema, err := w.api.ListFieldNames(ctx, s.token, s.appToken, cfg.TableID)
	if err != nil {
		w.logger.Warn("schema lookup failed, using default column", "err", err, "table", cfg.TableID)
	}
	column := RawColumn(schema)

	recordID, err := w.api.CreateRecord(ctx, s.token, s.appToken, cfg.TableID, map[string]any{column: message})
	if err != nil {
		return PingResult{}, fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return PingResult{RecordID: recordID, FieldName: column, AppToken: s.appToken}, nil
}
