package runtimeconfig

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-markspace/pkg/interfaces"
)

var ErrSpaceDirRequired = errors.New("markspace config: space directory is required")
var ErrSpaceKeyInvalid = errors.New("markspace config: space key can only be letters and numbers")
var ErrRawHTMLModeInvalid = errors.New("markspace config: raw html mode is invalid")
var ErrSyncConcurrencyInvalid = errors.New("markspace config: sync concurrency must be zero or positive")
var ErrSyncTimeoutInvalid = errors.New("markspace config: sync timeout must be zero or positive")
var ErrStorageDriverUnknown = errors.New("markspace config: storage driver is invalid")
var ErrStorageDSNRequired = errors.New("markspace config: storage dsn is required for sql drivers")
var ErrLoggingProviderRequired = errors.New("markspace config: logging provider is required")
var ErrLoggingProviderUnknown = errors.New("markspace config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("markspace config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("markspace config: logging format is invalid")
var ErrConfigFileInvalid = errors.New("markspace config: config file is invalid")

// Config aggregates everything the markspace CLI needs to preview, plan and
// sync a space.
type Config struct {
	Space   SpaceConfig   `yaml:"space"`
	Render  RenderConfig  `yaml:"render"`
	Sync    SyncConfig    `yaml:"sync"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
}

// SpaceConfig locates the space directory.
type SpaceConfig struct {
	Dir string `yaml:"dir"`
	// Key overrides the key derived from the directory name.
	Key        string `yaml:"key"`
	Pattern    string `yaml:"pattern"`
	Recursive  bool   `yaml:"recursive"`
	HomepageID string `yaml:"homepage_id"`
}

// RenderConfig mirrors interfaces.RenderOptions.
type RenderConfig struct {
	RawHTML            string   `yaml:"raw_html"`
	TagFilter          bool     `yaml:"tag_filter"`
	HardBreaks         bool     `yaml:"hard_breaks"`
	CanonicalLanguages bool     `yaml:"canonical_languages"`
	Emoji              bool     `yaml:"emoji"`
	Extensions         []string `yaml:"extensions"`
}

// SyncConfig controls the sync phases.
type SyncConfig struct {
	DryRun      bool          `yaml:"dry_run"`
	Archive     bool          `yaml:"archive"`
	Concurrency int           `yaml:"concurrency"`
	Timeout     time.Duration `yaml:"timeout"`
}

// StorageConfig selects the mirror the space is published to.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	Debug  bool   `yaml:"debug"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// RenderOptions converts the render section for the parser and renderer.
func (c RenderConfig) RenderOptions() interfaces.RenderOptions {
	return interfaces.RenderOptions{
		RawHTML:            c.RawHTML,
		TagFilter:          c.TagFilter,
		HardBreaks:         c.HardBreaks,
		CanonicalLanguages: c.CanonicalLanguages,
		Emoji:              c.Emoji,
		Extensions:         append([]string(nil), c.Extensions...),
	}
}

// DefaultConfig returns the defaults used when no config file is given.
func DefaultConfig() Config {
	return Config{
		Space: SpaceConfig{
			Dir:       ".",
			Pattern:   "*.md",
			Recursive: true,
		},
		Render: RenderConfig{
			RawHTML:            "omit",
			TagFilter:          true,
			CanonicalLanguages: true,
		},
		Sync: SyncConfig{
			Concurrency: 4,
		},
		Storage: StorageConfig{
			Driver: "memory",
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
			Format:   "",
		},
	}
}

// Load reads a YAML config file over the defaults. An empty path returns the
// defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("%w: %s: %v", ErrConfigFileInvalid, path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s: %v", ErrConfigFileInvalid, path, err)
	}
	return cfg, cfg.Validate()
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Space.Dir) == "" {
		return ErrSpaceDirRequired
	}
	if key := strings.TrimSpace(cfg.Space.Key); key != "" && !isAlphanumeric(key) {
		return fmt.Errorf("%w: %s", ErrSpaceKeyInvalid, key)
	}
	if mode := strings.ToLower(strings.TrimSpace(cfg.Render.RawHTML)); mode != "" {
		if err := validation.Validate(mode, validation.In("escape", "omit", "unsafe")); err != nil {
			return fmt.Errorf("%w: %s", ErrRawHTMLModeInvalid, mode)
		}
	}
	if err := validation.Validate(cfg.Sync.Concurrency, validation.Min(0)); err != nil {
		return ErrSyncConcurrencyInvalid
	}
	if cfg.Sync.Timeout < 0 {
		return ErrSyncTimeoutInvalid
	}

	driver := normalize(cfg.Storage.Driver)
	if err := validation.Validate(driver, validation.In("", "memory", "sqlite3", "postgres")); err != nil {
		return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, driver)
	}
	if (driver == "sqlite3" || driver == "postgres") && strings.TrimSpace(cfg.Storage.DSN) == "" {
		return ErrStorageDSNRequired
	}

	provider := normalize(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isAlphanumeric(value string) bool {
	for _, r := range value {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
