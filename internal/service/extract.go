package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/octobees/site-scraper/internal/entity"
	"github.com/octobees/site-scraper/internal/fetcher"
	"github.com/octobees/site-scraper/internal/metrics"
)

var (
	// ErrFetchFailed is returned when the target page could not be retrieved.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrExtractFailed is returned when the page body could not be parsed.
	ErrExtractFailed = errors.New("extract failed")
)

// Write statuses reported next to every extraction.
const (
	WriteSuccess = "success"
	WriteFailed  = "failed"
	WriteSkipped = "skipped"
)

// Write failure codes.
const (
	CodeMissingConfig = "missing_config"
	CodeWriteFailed   = "write_failed"
)

// Fetch modes.
const (
	ModeHTTP   = "http"
	ModeRender = "render"
)

// PageFetcher retrieves a page body.
type PageFetcher interface {
	Fetch(ctx context.Context, target string) (*fetcher.Page, error)
}

// RecordExtractor turns a page body into a record.
type RecordExtractor interface {
	Extract(r io.Reader, pageURL string) (entity.ExtractedRecord, error)
}

// RecordWriter appends a record to a destination table.
type RecordWriter interface {
	Write(ctx context.Context, cfg entity.FeishuConfig, rec entity.ExtractedRecord) (WriteResult, error)
}

// UserConfigLookup finds the saved config of a caller.
type UserConfigLookup interface {
	Lookup(ctx context.Context, subject string) (entity.FeishuConfig, bool)
}

// ExtractInput is a single extraction request.
type ExtractInput struct {
	URL     string
	Render  bool
	Config  entity.FeishuConfig
	Subject string
}

// WriteOutcome reports what happened to the destination write.
type WriteOutcome struct {
	Status   string
	Code     string
	Message  string
	RecordID string
}

// Success reports whether the record was written.
func (o WriteOutcome) Success() bool {
	return o.Status == WriteSuccess
}

// ExtractOutcome is the result of a successful fetch and extraction.
type ExtractOutcome struct {
	URL           string
	Mode          string
	Record        entity.ExtractedRecord
	Write         WriteOutcome
	Config        ResolvedConfig
	HasUserConfig bool
}

// ExtractService fetches a page, extracts its contact record and writes it to
// the resolved destination.
type ExtractService struct {
	fetcher   PageFetcher
	extractor RecordExtractor

	renderer          PageFetcher
	renderedExtractor RecordExtractor

	writer   RecordWriter
	users    UserConfigLookup
	defaults     entity.FeishuConfig
	allowPrivate bool
	logger       *log.Logger
	metrics      *metrics.Recorder
}

// ExtractOption customises an ExtractService.
type ExtractOption func(*ExtractService)

// WithRenderer enables rendered fetches, paired with the extractor tuned for
// rendered DOMs.
func WithRenderer(r PageFetcher, x RecordExtractor) ExtractOption {
	return func(s *ExtractService) {
		s.renderer = r
		s.renderedExtractor = x
	}
}

// WithUserConfigs enables saved per-user configs.
func WithUserConfigs(users UserConfigLookup) ExtractOption {
	return func(s *ExtractService) {
		s.users = users
	}
}

// WithDefaultConfig sets the process-wide destination.
func WithDefaultConfig(cfg entity.FeishuConfig) ExtractOption {
	return func(s *ExtractService) {
		s.defaults = cfg
	}
}

// WithPrivateTargets permits loopback and private network targets.
func WithPrivateTargets() ExtractOption {
	return func(s *ExtractService) {
		s.allowPrivate = true
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) ExtractOption {
	return func(s *ExtractService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Recorder) ExtractOption {
	return func(s *ExtractService) {
		s.metrics = m
	}
}

// NewExtractService constructs an ExtractService. A nil writer disables writes.
func NewExtractService(f PageFetcher, x RecordExtractor, w RecordWriter, opts ...ExtractOption) *ExtractService {
	s := &ExtractService{
		fetcher:   f,
		extractor: x,
		writer:    w,
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RenderAvailable reports whether rendered fetches are configured.
func (s *ExtractService) RenderAvailable() bool {
	return s.renderer != nil && s.renderedExtractor != nil
}

// Defaults returns the process-wide destination.
func (s *ExtractService) Defaults() entity.FeishuConfig {
	return s.defaults
}

// Extract runs one extraction. Errors are returned only for fetch and parse
// failures; write problems are reported in the outcome.
func (s *ExtractService) Extract(ctx context.Context, in ExtractInput) (*ExtractOutcome, error) {
	target, err := NormalizeTargetURL(in.URL)
	if err != nil {
		return nil, err
	}
	if !s.allowPrivate && IsPrivateTarget(target) {
		return nil, ErrPrivateTarget
	}

	mode, f, x := ModeHTTP, s.fetcher, s.extractor
	if in.Render {
		if s.RenderAvailable() {
			mode, f, x = ModeRender, s.renderer, s.renderedExtractor
		} else {
			s.logger.Debug("render requested but disabled, using plain fetch", "url", target)
		}
	}

	started := time.Now()
	page, err := f.Fetch(ctx, target)
	s.metrics.Fetch(mode, time.Since(started))
	if err != nil {
		if errors.Is(err, fetcher.ErrUnsupportedContent) {
			s.metrics.Extraction("extract_failed")
			return nil, fmt.Errorf("%w: %w", ErrExtractFailed, err)
		}
		s.metrics.Extraction("fetch_failed")
		s.logger.Warn("fetch failed", "url", target, "mode", mode, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	// host and TLD signals come from where redirects ended
	docURL := page.DocumentURL()
	rec, err := x.Extract(bytes.NewReader(page.HTML), docURL)
	if err != nil {
		s.metrics.Extraction("extract_failed")
		return nil, fmt.Errorf("%w: %w", ErrExtractFailed, err)
	}
	rec.URL = target
	if docURL != target {
		s.logger.Debug("page redirected", "url", target, "final_url", docURL)
	}

	out := &ExtractOutcome{URL: target, Mode: mode, Record: rec}
	out.Config, out.HasUserConfig = s.resolve(ctx, in)
	out.Write = s.write(ctx, out.Config, rec)

	s.metrics.Write(out.Write.Status)
	s.metrics.Extraction(extractionOutcome(out.Write))
	s.logger.Info("extraction complete",
		"url", target,
		"mode", mode,
		"company", rec.CompanyName,
		"country", rec.Country,
		"write_status", out.Write.Status,
		"config_source", out.Config.Source,
	)
	return out, nil
}

func (s *ExtractService) resolve(ctx context.Context, in ExtractInput) (ResolvedConfig, bool) {
	layers := []ConfigLayer{{Source: SourceRequest, Config: in.Config}}

	hasUser := false
	if s.users != nil && in.Subject != "" {
		if cfg, ok := s.users.Lookup(ctx, in.Subject); ok {
			hasUser = true
			layers = append(layers, ConfigLayer{Source: SourceUser, Config: cfg})
		}
	}
	layers = append(layers, ConfigLayer{Source: SourceDefault, Config: s.defaults})
	return ResolveConfig(layers...), hasUser
}

func (s *ExtractService) write(ctx context.Context, resolved ResolvedConfig, rec entity.ExtractedRecord) WriteOutcome {
	if s.writer == nil || !resolved.Config.CanWrite() {
		return WriteOutcome{
			Status:  WriteSkipped,
			Code:    CodeMissingConfig,
			Message: "feishu is not configured, write skipped",
		}
	}

	result, err := s.writer.Write(ctx, resolved.Config, rec)
	if err != nil {
		s.logger.Error("bitable write failed", "table", resolved.Config.TableID, "source", resolved.Source, "err", err)
		return WriteOutcome{
			Status:  WriteFailed,
			Code:    CodeWriteFailed,
			Message: err.Error(),
		}
	}
	return WriteOutcome{
		Status:   WriteSuccess,
		Message:  "write succeeded",
		RecordID: result.RecordID,
	}
}

func extractionOutcome(w WriteOutcome) string {
	switch w.Status {
	case WriteSuccess:
		return "written"
	case WriteFailed:
		return "write_failed"
	default:
		return "skipped"
	}
}
