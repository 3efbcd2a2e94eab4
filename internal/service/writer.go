package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/octobees/site-scraper/internal/bitable"
	"github.com/octobees/site-scraper/internal/entity"
)

var (
	// ErrInvalidTableID is returned before any remote call when the table id is malformed.
	ErrInvalidTableID = errors.New("table id must start with tbl")
	// ErrCredential wraps a failed app credential exchange.
	ErrCredential = errors.New("could not obtain access token")
	// ErrWriteFailed wraps a rejected record creation.
	ErrWriteFailed = errors.New("bitable write failed")
)

// BitableAPI is the subset of the Feishu client used by writers.
type BitableAPI interface {
	TenantAccessToken(ctx context.Context, appID, appSecret string) (string, error)
	ResolveWikiNode(ctx context.Context, token, nodeToken string) (string, bool, error)
	ListFieldNames(ctx context.Context, token, appToken, tableID string) ([]string, error)
	CreateRecord(ctx context.Context, token, appToken, tableID string, fields map[string]any) (string, error)
	GetApp(ctx context.Context, token, appToken string) (bitable.AppInfo, error)
}

var _ BitableAPI = (*bitable.Client)(nil)

// WriteResult describes a successful write.
type WriteResult struct {
	RecordID     string
	AppToken     string
	UsedDefaults bool
	Columns      int
}

// BitableWriter maps records onto a table schema and appends them.
type BitableWriter struct {
	api    BitableAPI
	logger *log.Logger
	now    func() time.Time
}

// WriterOption customises a BitableWriter.
type WriterOption func(*BitableWriter)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) WriterOption {
	return func(w *BitableWriter) {
		w.now = now
	}
}

// NewBitableWriter constructs a BitableWriter.
func NewBitableWriter(api BitableAPI, logger *log.Logger, opts ...WriterOption) *BitableWriter {
	w := &BitableWriter{api: api, logger: logger, now: time.Now}
	if w.logger == nil {
		w.logger = log.New(io.Discard)
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// session is a token plus resolved app token for one request.
type session struct {
	token    string
	appToken string
}

// open exchanges credentials and resolves a wiki node into its app token. The
// node lookup is best effort.
func (w *BitableWriter) open(ctx context.Context, cfg entity.FeishuConfig) (session, error) {
	token, err := w.api.TenantAccessToken(ctx, cfg.AppID, cfg.AppSecret)
	if err != nil {
		return session{}, fmt.Errorf("%w: %w", ErrCredential, err)
	}

	appToken := cfg.AppToken()
	if resolved, ok, err := w.api.ResolveWikiNode(ctx, token, appToken); err != nil {
		w.logger.Debug("wiki node lookup failed, using token as is", "err", err)
	} else if ok {
		appToken = resolved
	}
	return session{token: token, appToken: appToken}, nil
}

// Write appends rec to the configured table.
func (w *BitableWriter) Write(ctx context.Context, cfg entity.FeishuConfig, rec entity.ExtractedRecord) (WriteResult, error) {
	if !bitable.ValidTableID(cfg.TableID) {
		return WriteResult{}, ErrInvalidTableID
	}

	s, err := w.open(ctx, cfg)
	if err != nil {
		return WriteResult{}, err
	}

	schema, err := w.api.ListFieldNames(ctx, s.token, s.appToken, cfg.TableID)
	if err != nil {
		w.logger.Warn("schema lookup failed, writing default columns", "err", err, "table", cfg.TableID)
		schema = nil
	}

	fields, usedDefaults := BuildFields(rec, schema, w.now())
	recordID, err := w.api.CreateRecord(ctx, s.token, s.appToken, cfg.TableID, fields)
	if err != nil {
		return WriteResult{}, fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	return WriteResult{
		RecordID:     recordID,
		AppToken:     s.appToken,
		UsedDefaults: usedDefaults,
		Columns:      len(fields),
	}, nil
}
