package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"cnpjscan/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Flushes never pause and logging is limited to errors.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.ReceitaWS.Token = "test"
	cfgVal.Workflow.FlushDelaySeconds = 0
	cfgVal.Logging.Level = "error"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithReceitaWS points the lookup client at baseURL.
func WithReceitaWS(baseURL, token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.ReceitaWS.BaseURL = baseURL
		b.cfg.ReceitaWS.Token = token
	}
}

// WithSQLiteWarehouse uses the SQLite database at dsn as the work source,
// queried with ClientsQuery.
func WithSQLiteWarehouse(dsn string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Database.Driver = "sqlite"
		b.cfg.Database.DSN = dsn
		b.cfg.Database.Query = ClientsQuery
	}
}

// WithFlushEvery overrides the checkpoint cadence.
func WithFlushEvery(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workflow.FlushEvery = n
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}

// WriteConfigFile encodes cfg as TOML next to its directories and returns the
// file path, for tests that go through config.Load.
func WriteConfigFile(t testing.TB, cfg *config.Config) string {
	t.Helper()

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	path := filepath.Join(BaseDir(cfg), "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
