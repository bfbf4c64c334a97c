package runtimeconfig_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-markspace/internal/runtimeconfig"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := runtimeconfig.DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*runtimeconfig.Config)
		want   error
	}{
		{"space dir", func(c *runtimeconfig.Config) { c.Space.Dir = " " }, runtimeconfig.ErrSpaceDirRequired},
		{"space key", func(c *runtimeconfig.Config) { c.Space.Key = "my-space" }, runtimeconfig.ErrSpaceKeyInvalid},
		{"raw html", func(c *runtimeconfig.Config) { c.Render.RawHTML = "strip" }, runtimeconfig.ErrRawHTMLModeInvalid},
		{"concurrency", func(c *runtimeconfig.Config) { c.Sync.Concurrency = -1 }, runtimeconfig.ErrSyncConcurrencyInvalid},
		{"timeout", func(c *runtimeconfig.Config) { c.Sync.Timeout = -time.Second }, runtimeconfig.ErrSyncTimeoutInvalid},
		{"driver", func(c *runtimeconfig.Config) { c.Storage.Driver = "oracle" }, runtimeconfig.ErrStorageDriverUnknown},
		{"dsn", func(c *runtimeconfig.Config) { c.Storage.Driver = "sqlite3" }, runtimeconfig.ErrStorageDSNRequired},
		{"provider required", func(c *runtimeconfig.Config) { c.Logging.Provider = "" }, runtimeconfig.ErrLoggingProviderRequired},
		{"provider unknown", func(c *runtimeconfig.Config) { c.Logging.Provider = "syslog" }, runtimeconfig.ErrLoggingProviderUnknown},
		{"level", func(c *runtimeconfig.Config) { c.Logging.Level = "loud" }, runtimeconfig.ErrLoggingLevelInvalid},
		{"format", func(c *runtimeconfig.Config) {
			c.Logging.Provider = "gologger"
			c.Logging.Format = "xml"
		}, runtimeconfig.ErrLoggingFormatInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := runtimeconfig.DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestConfigValidateAcceptsSQLDrivers(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Driver = "Postgres"
	cfg.Storage.DSN = "postgres://localhost/markspace"
	cfg.Render.RawHTML = "UNSAFE"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "markspace.yaml")
	raw := []byte(`space:
  dir: docs
  key: DOCS
render:
  emoji: true
  extensions: [table, footnote]
sync:
  archive: true
  timeout: 30s
storage:
  driver: sqlite3
  dsn: file:markspace.db
logging:
  level: debug
`)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := runtimeconfig.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Space.Dir != "docs" || cfg.Space.Key != "DOCS" || !cfg.Space.Recursive {
		t.Fatalf("unexpected space section %+v", cfg.Space)
	}
	if !cfg.Sync.Archive || cfg.Sync.Timeout != 30*time.Second || cfg.Sync.Concurrency != 4 {
		t.Fatalf("unexpected sync section %+v", cfg.Sync)
	}
	if cfg.Logging.Provider != "console" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging section %+v", cfg.Logging)
	}
	opts := cfg.Render.RenderOptions()
	if !opts.Emoji || opts.RawHTML != "omit" {
		t.Fatalf("unexpected render options %+v", opts)
	}
	if diff := cmp.Diff([]string{"table", "footnote"}, opts.Extensions); diff != "" {
		t.Fatalf("extensions mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(broken, []byte("space: [unterminated"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := runtimeconfig.Load(broken); !errors.Is(err, runtimeconfig.ErrConfigFileInvalid) {
		t.Fatalf("expected ErrConfigFileInvalid, got %v", err)
	}
	if _, err := runtimeconfig.Load(filepath.Join(dir, "missing.yaml")); !errors.Is(err, runtimeconfig.ErrConfigFileInvalid) {
		t.Fatalf("expected ErrConfigFileInvalid for missing file, got %v", err)
	}

	cfg, err := runtimeconfig.Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if diff := cmp.Diff(runtimeconfig.DefaultConfig(), cfg); diff != "" {
		t.Fatalf("expected defaults (-want +got):\n%s", diff)
	}
}
