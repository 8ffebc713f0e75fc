package testsupport

import (
	"path/filepath"
	"testing"

	"daapshare/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.LibraryDB = filepath.Join(base, "data", "library.db")
	cfgVal.Paths.MediaDir = filepath.Join(base, "media")
	cfgVal.Server.Bind = "127.0.0.1:0"
	cfgVal.Server.ShareName = "Test Music"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithShareName overrides the advertised share name.
func WithShareName(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Server.ShareName = name
	}
}

// WithSessionSeed overrides the first session id.
func WithSessionSeed(seed uint32) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Server.SessionSeed = seed
	}
}

// WithRowLimit overrides the catalog row limit.
func WithRowLimit(limit int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Catalog.RowLimit = limit
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
