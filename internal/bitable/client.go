// Package bitable wraps the Feishu open platform SDK for the endpoints used to
// write extracted records into a Bitable table.
package bitable

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkauth "github.com/larksuite/oapi-sdk-go/v3/service/auth/v3"
	larkbitable "github.com/larksuite/oapi-sdk-go/v3/service/bitable/v1"
	larkwiki "github.com/larksuite/oapi-sdk-go/v3/service/wiki/v2"
)

// DefaultBaseURL is the public Feishu open platform host.
const DefaultBaseURL = "https://open.feishu.cn"

// Every call carries an explicit tenant token, so the SDK never uses its own
// credentials. It still refuses to build requests without them.
const (
	sdkAppID     = "site-scraper"
	sdkAppSecret = "explicit-token"
)

// APIError is a failure reported by the remote service through the code
// embedded in the response envelope.
type APIError struct {
	Op         string
	HTTPStatus int
	Code       int
	Msg        string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s: code %d: %s", e.Op, e.Code, e.Msg)
	}
	return fmt.Sprintf("%s: http %d: %s", e.Op, e.HTTPStatus, e.Msg)
}

// Client calls the Feishu open API.
type Client struct {
	sdk *lark.Client
}

// ClientOption configures a Client.
type ClientOption func(*clientOptions)

type clientOptions struct {
	logger *log.Logger
}

// WithLogger routes SDK warnings and errors to logger.
func WithLogger(logger *log.Logger) ClientOption {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// NewClient builds a Client. Empty baseURL uses DefaultBaseURL.
func NewClient(client *http.Client, baseURL string, opts ...ClientOption) *Client {
	o := clientOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	sdk := lark.NewClient(sdkAppID, sdkAppSecret,
		lark.WithOpenBaseUrl(baseURL),
		lark.WithHttpClient(client),
		lark.WithEnableTokenCache(false),
		lark.WithLogLevel(larkcore.LogLevelWarn),
		lark.WithLogger(sdkLogger{o.logger}),
	)
	return &Client{sdk: sdk}
}

// TenantAccessToken exchanges app credentials for a short-lived bearer token.
func (c *Client) TenantAccessToken(ctx context.Context, appID, appSecret string) (string, error) {
	req := larkauth.NewInternalTenantAccessTokenReqBuilder().
		Body(larkauth.NewInternalTenantAccessTokenReqBodyBuilder().
			AppId(appID).
			AppSecret(appSecret).
			Build()).
		Build()

	resp, err := c.sdk.Auth.V3.TenantAccessToken.Internal(ctx, req)
	if err != nil {
		return "", fmt.Errorf("tenant_access_token: %w", err)
	}
	if !resp.Success() {
		return "", envelopeError("tenant_access_token", resp.ApiResp, resp.Code, resp.Msg)
	}

	// the token sits next to code and msg instead of under data
	var body struct {
		TenantAccessToken string `json:"tenant_access_token"`
		Expire            int    `json:"expire"`
	}
	if err := json.Unmarshal(resp.RawBody, &body); err != nil {
		return "", fmt.Errorf("tenant_access_token: decode response: %w", err)
	}
	if body.TenantAccessToken == "" {
		return "", &APIError{Op: "tenant_access_token", HTTPStatus: resp.StatusCode, Msg: "empty token in response"}
	}
	return body.TenantAccessToken, nil
}

// ListFieldNames returns the column names of a table, following pagination.
func (c *Client) ListFieldNames(ctx context.Context, token, appToken, tableID string) ([]string, error) {
	var names []string
	pageToken := ""
	for {
		b := larkbitable.NewListAppTableFieldReqBuilder().
			AppToken(appToken).
			TableId(tableID).
			PageSize(100)
		if pageToken != "" {
			b = b.PageToken(pageToken)
		}

		resp, err := c.sdk.Bitable.V1.AppTableField.List(ctx, b.Build(), larkcore.WithTenantAccessToken(token))
		if err != nil {
			return nil, fmt.Errorf("list_fields: %w", err)
		}
		if !resp.Success() {
			return nil, envelopeError("list_fields", resp.ApiResp, resp.Code, resp.Msg)
		}
		if resp.Data == nil {
			return names, nil
		}
		for _, item := range resp.Data.Items {
			if item == nil {
				continue
			}
			if name := deref(item.FieldName); name != "" {
				names = append(names, name)
			}
		}

		next := deref(resp.Data.PageToken)
		hasMore := resp.Data.HasMore != nil && *resp.Data.HasMore
		if !hasMore || next == "" || next == pageToken {
			return names, nil
		}
		pageToken = next
	}
}

// ResolveWikiNode translates a wiki node token into the Bitable app token it
// wraps. ok is false when the node is not a Bitable.
func (c *Client) ResolveWikiNode(ctx context.Context, token, nodeToken string) (appToken string, ok bool, err error) {
	req := larkwiki.NewGetNodeSpaceReqBuilder().
		Token(nodeToken).
		ObjType("wiki").
		Build()

	resp, err := c.sdk.Wiki.V2.Space.GetNode(ctx, req, larkcore.WithTenantAccessToken(token))
	if err != nil {
		return "", false, fmt.Errorf("get_node: %w", err)
	}
	if !resp.Success() {
		return "", false, envelopeError("get_node", resp.ApiResp, resp.Code, resp.Msg)
	}
	if resp.Data == nil || resp.Data.Node == nil {
		return "", false, nil
	}
	node := resp.Data.Node
	if deref(node.ObjType) != "bitable" || deref(node.ObjToken) == "" {
		return "", false, nil
	}
	return deref(node.ObjToken), true, nil
}

// CreateRecord appends one row and returns its record id.
func (c *Client) CreateRecord(ctx context.Context, token, appToken, tableID string, fields map[string]any) (string, error) {
	req := larkbitable.NewCreateAppTableRecordReqBuilder().
		AppToken(appToken).
		TableId(tableID).
		AppTableRecord(larkbitable.NewAppTableRecordBuilder().
			Fields(fields).
			Build()).
		Build()

	resp, err := c.sdk.Bitable.V1.AppTableRecord.Create(ctx, req, larkcore.WithTenantAccessToken(token))
	if err != nil {
		return "", fmt.Errorf("create_record: %w", err)
	}
	if !resp.Success() {
		return "", envelopeError("create_record", resp.ApiResp, resp.Code, resp.Msg)
	}
	if resp.Data == nil || resp.Data.Record == nil {
		return "", nil
	}
	return deref(resp.Data.Record.RecordId), nil
}

// AppInfo is the metadata of a Bitable app.
type AppInfo struct {
	AppToken string `json:"app_token"`
	Name     string `json:"name"`
	Revision int    `json:"revision"`
}

// GetApp fetches Bitable app metadata, which checks that the token can read it.
func (c *Client) GetApp(ctx context.Context, token, appToken string) (AppInfo, error) {
	req := larkbitable.NewGetAppReqBuilder().
		AppToken(appToken).
		Build()

	resp, err := c.sdk.Bitable.V1.App.Get(ctx, req, larkcore.WithTenantAccessToken(token))
	if err != nil {
		return AppInfo{}, fmt.Errorf("get_app: %w", err)
	}
	if !resp.Success() {
		return AppInfo{}, envelopeError("get_app", resp.ApiResp, resp.Code, resp.Msg)
	}
	if resp.Data == nil || resp.Data.App == nil {
		return AppInfo{AppToken: appToken}, nil
	}

	app := resp.Data.App
	info := AppInfo{AppToken: deref(app.AppToken), Name: deref(app.Name)}
	if app.Revision != nil {
		info.Revision = *app.Revision
	}
	return info, nil
}

// envelopeError reports a non-zero envelope code, which is a failure even on
// HTTP 200.
func envelopeError(op string, raw *larkcore.ApiResp, code int, msg string) error {
	status := 0
	if raw != nil {
		status = raw.StatusCode
	}
	return &APIError{Op: op, HTTPStatus: status, Code: code, Msg: msg}
}

// Code extracts the envelope code from err, or 0.
func Code(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// sdkLogger adapts a charmbracelet logger to the SDK logger interface.
type sdkLogger struct {
	logger *log.Logger
}

func (l sdkLogger) Debug(_ context.Context, args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}

func (l sdkLogger) Info(_ context.Context, args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}

func (l sdkLogger) Warn(_ context.Context, args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}

func (l sdkLogger) Error(_ context.Context, args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}
