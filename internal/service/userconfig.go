package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/octobees/site-scraper/internal/bitable"
	"github.com/octobees/site-scraper/internal/entity"
	"github.com/octobees/site-scraper/internal/repository"
	"github.com/octobees/site-scraper/internal/secret"
)

var (
	// ErrAuthRequired is returned when a per-user operation has no caller identity.
	ErrAuthRequired = errors.New("authentication required")
	// ErrStorageUnavailable is returned when no config store is configured or
	// its table has not been created.
	ErrStorageUnavailable = errors.New("config storage unavailable")
	// ErrUserConfigMissing is returned when the caller has nothing saved.
	ErrUserConfigMissing = errors.New("no saved config")
	// ErrEncKeyMismatch is returned when a saved config cannot be opened with the current key.
	ErrEncKeyMismatch = errors.New("saved config cannot be decrypted with the current key")
	// ErrMissingFields is returned when appId, appSecret or tableId is absent.
	ErrMissingFields = errors.New("appId, appSecret and tableId are required")
)

// Sealer encrypts configs at rest.
type Sealer interface {
	Seal(v any) (string, error)
	Open(sealed string, v any) error
}

var _ Sealer = (*secret.Sealer)(nil)

// SavedConfig is a decrypted per-user config.
type SavedConfig struct {
	Config    entity.FeishuConfig
	UpdatedAt time.Time
}

// UserConfigService stores destination configs per caller.
type UserConfigService struct {
	repo   repository.FeishuConfigRepository
	sealer Sealer
	logger *log.Logger
}

// NewUserConfigService constructs a UserConfigService. A nil repo disables
// storage and every call reports ErrStorageUnavailable.
func NewUserConfigService(repo repository.FeishuConfigRepository, sealer Sealer, logger *log.Logger) *UserConfigService {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &UserConfigService{repo: repo, sealer: sealer, logger: logger}
}

// Available reports whether configs can be stored.
func (s *UserConfigService) Available() bool {
	return s != nil && s.repo != nil && s.sealer != nil
}

func (s *UserConfigService) check(subject string) error {
	if strings.TrimSpace(subject) == "" {
		return ErrAuthRequired
	}
	if !s.Available() {
		return ErrStorageUnavailable
	}
	return nil
}

// Save seals cfg and stores it for subject.
func (s *UserConfigService) Save(ctx context.Context, subject string, cfg entity.FeishuConfig) (SavedConfig, error) {
	if err := s.check(subject); err != nil {
		return SavedConfig{}, err
	}
	if !cfg.CanWrite() {
		return SavedConfig{}, ErrMissingFields
	}
	if !bitable.ValidTableID(cfg.TableID) {
		return SavedConfig{}, ErrInvalidTableID
	}

	sealed, err := s.sealer.Seal(cfg)
	if err != nil {
		return SavedConfig{}, fmt.Errorf("seal config: %w", err)
	}
	stored, err := s.repo.Upsert(ctx, subject, sealed)
	if err != nil {
		return SavedConfig{}, s.storageError(err)
	}
	s.logger.Info("saved feishu config", "subject", subject, "app_id", cfg.AppID, "app_secret", MaskSecret(cfg.AppSecret))
	return SavedConfig{Config: cfg, UpdatedAt: stored.UpdatedAt}, nil
}

// Get returns the decrypted config of subject.
func (s *UserConfigService) Get(ctx context.Context, subject string) (SavedConfig, error) {
	if err := s.check(subject); err != nil {
		return SavedConfig{}, err
	}

	stored, err := s.repo.Get(ctx, subject)
	if err != nil {
		if errors.Is(err, repository.ErrConfigNotFound) {
			return SavedConfig{}, ErrUserConfigMissing
		}
		return SavedConfig{}, s.storageError(err)
	}

	var cfg entity.FeishuConfig
	if err := s.sealer.Open(stored.Sealed, &cfg); err != nil {
		if errors.Is(err, secret.ErrKeyMismatch) {
			return SavedConfig{}, ErrEncKeyMismatch
		}
		return SavedConfig{}, fmt.Errorf("open config: %w", err)
	}
	return SavedConfig{Config: cfg, UpdatedAt: stored.UpdatedAt}, nil
}

// Clear removes the config of subject.
func (s *UserConfigService) Clear(ctx context.Context, subject string) error {
	if err := s.check(subject); err != nil {
		return err
	}
	return s.storageError(s.repo.Delete(ctx, subject))
}

// storageError reports a missing feishu_configs table as unavailable storage.
func (s *UserConfigService) storageError(err error) error {
	if repository.IsUndefinedTable(err) {
		s.logger.Error("feishu_configs table is missing, run migrations", "err", err)
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return err
}

// Lookup returns the saved config of subject for an extraction. Failures are
// logged and reported as absent so the next config layer applies.
func (s *UserConfigService) Lookup(ctx context.Context, subject string) (entity.FeishuConfig, bool) {
	if subject == "" || !s.Available() {
		return entity.FeishuConfig{}, false
	}
	saved, err := s.Get(ctx, subject)
	switch {
	case err == nil:
		return saved.Config, true
	case errors.Is(err, ErrUserConfigMissing):
	default:
		s.logger.Warn("saved config lookup failed, falling back", "subject", subject, "err", err)
	}
	return entity.FeishuConfig{}, false
}

// MaskSecret keeps the first three and last two characters of s.
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	r := []rune(s)
	if len(r) <= 5 {
		return "***"
	}
	return string(r[:3]) + "***" + string(r[len(r)-2:])
}
