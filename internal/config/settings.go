// Package config loads application settings from viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/ledger"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// Viper keys.
const (
	KeyDatabasePath = "database.path"
	KeyPageSize     = "ledger.page_size"
	KeyDebounce     = "ledger.debounce"
	KeyLocale       = "ledger.locale"
	KeyCacheTTL     = "ledger.cache_ttl"
	KeyFallback     = "ledger.fallback"
	KeyLogLevel     = "logging.level"
	KeyLogFormat    = "logging.format"
)

// Settings is the resolved application configuration.
type Settings struct {
	Locale       language.Tag
	DatabasePath string
	LogLevel     string
	LogFormat    string
	PageSize     int
	Debounce     time.Duration
	CacheTTL     time.Duration
	Fallback     bool
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, "~/.local/share/spice/ledger.db")
	v.SetDefault(KeyPageSize, ledger.DefaultPageSize)
	v.SetDefault(KeyDebounce, ledger.DefaultDebounce)
	v.SetDefault(KeyLocale, "en")
	v.SetDefault(KeyCacheTTL, 5*time.Minute)
	v.SetDefault(KeyFallback, true)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
}

// Load reads settings from v and validates them.
func Load(v *viper.Viper) (*Settings, error) {
	s := &Settings{
		DatabasePath: ExpandPath(v.GetString(KeyDatabasePath)),
		PageSize:     v.GetInt(KeyPageSize),
		Debounce:     v.GetDuration(KeyDebounce),
		CacheTTL:     v.GetDuration(KeyCacheTTL),
		Fallback:     v.GetBool(KeyFallback),
		LogLevel:     v.GetString(KeyLogLevel),
		LogFormat:    v.GetString(KeyLogFormat),
	}

	tag, err := language.Parse(v.GetString(KeyLocale))
	if err != nil {
		return nil, fmt.Errorf("%w: locale %q: %w", common.ErrInvalidConfig, v.GetString(KeyLocale), err)
	}
	s.Locale = tag

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate reports every invalid field at once.
func (s *Settings) Validate() error {
	var errs []error
	if s.DatabasePath == "" {
		errs = append(errs, fmt.Errorf("%w: %s is required", common.ErrMissingConfig, KeyDatabasePath))
	}
	if s.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: %s must be positive, got %d", common.ErrInvalidConfig, KeyPageSize, s.PageSize))
	}
	if s.Debounce < 0 {
		errs = append(errs, fmt.Errorf("%w: %s must not be negative", common.ErrInvalidConfig, KeyDebounce))
	}
	if s.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("%w: %s must not be negative", common.ErrInvalidConfig, KeyCacheTTL))
	}
	return errors.Join(errs...)
}

// PipelineOptions returns the ledger options these settings imply.
func (s *Settings) PipelineOptions() []ledger.Option {
	return []ledger.Option{
		ledger.WithPageSize(s.PageSize),
		ledger.WithDebounce(s.Debounce),
		ledger.WithLocale(s.Locale),
	}
}

// ExpandPath expands a leading ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}
