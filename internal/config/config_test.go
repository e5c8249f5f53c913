package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"cnpjscan/internal/config"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{"AUTH_RECEITAWS", "USERNAME_ORACLE", "PASSWORD_ORACLE", "HOST_ORACLE", "PORT_ORACLE", "SERVICE_NAME_ORACLE"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Chdir(t.TempDir())
	return home
}

func TestLoadDefaultConfigUsesEnvFallbacks(t *testing.T) {
	home := isolateEnv(t)
	t.Setenv("AUTH_RECEITAWS", "Bearer secret")
	t.Setenv("HOST_ORACLE", "db.internal")
	t.Setenv("PORT_ORACLE", "1600")
	t.Setenv("SERVICE_NAME_ORACLE", "ORCL")
	t.Setenv("USERNAME_ORACLE", "reader")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(home, ".config", "cnpjscan", "config.toml"); resolved != want {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, want)
	}
	if cfg.ReceitaWS.Token != "Bearer secret" {
		t.Fatalf("expected token from env, got %q", cfg.ReceitaWS.Token)
	}
	if cfg.Database.Host != "db.internal" || cfg.Database.Port != 1600 || cfg.Database.ServiceName != "ORCL" {
		t.Fatalf("unexpected database settings: %+v", cfg.Database)
	}
	if err := cfg.ValidateLookup(); err != nil {
		t.Fatalf("ValidateLookup: %v", err)
	}
	if err := cfg.ValidateDatabase(); err != nil {
		t.Fatalf("ValidateDatabase: %v", err)
	}
	if cfg.Workflow.FlushEvery != 10 {
		t.Fatalf("unexpected flush cadence: %d", cfg.Workflow.FlushEvery)
	}
	if got := cfg.FlushDelay().Seconds(); got != 3 {
		t.Fatalf("unexpected flush delay: %v", got)
	}
	if len(cfg.Classifier.ReferenceCodes) != 9 {
		t.Fatalf("expected nine default reference codes, got %v", cfg.Classifier.ReferenceCodes)
	}
	if !strings.Contains(cfg.Database.Query, "TIPOFJ = 'J'") {
		t.Fatalf("expected default query, got %q", cfg.Database.Query)
	}
	if !filepath.IsAbs(cfg.Paths.WorkDir) {
		t.Fatalf("expected absolute work dir, got %q", cfg.Paths.WorkDir)
	}
}

func TestLoadDefaultPortWithoutEnv(t *testing.T) {
	isolateEnv(t)

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Database.Port != 1521 {
		t.Fatalf("expected default oracle port, got %d", cfg.Database.Port)
	}
	if err := cfg.ValidateLookup(); err == nil {
		t.Fatal("expected missing token to fail lookup validation")
	}
	if err := cfg.ValidateDatabase(); err == nil {
		t.Fatal("expected missing connection details to fail database validation")
	}
}

func TestLoadReadsDotEnvWithoutOverriding(t *testing.T) {
	isolateEnv(t)
	if err := os.WriteFile(".env", []byte("AUTH_RECEITAWS=from-dotenv\nHOST_ORACLE=dotenv-host\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("HOST_ORACLE", "shell-host")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ReceitaWS.Token != "from-dotenv" {
		t.Fatalf("expected token from .env, got %q", cfg.ReceitaWS.Token)
	}
	if cfg.Database.Host != "shell-host" {
		t.Fatalf("expected shell value to win over .env, got %q", cfg.Database.Host)
	}
}

func TestLoadCustomPath(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	configPath := filepath.Join(dir, "cnpjscan.toml")

	type payload struct {
		Paths struct {
			WorkDir string `toml:"work_dir"`
		} `toml:"paths"`
		ReceitaWS struct {
			Token   string `toml:"token"`
			BaseURL string `toml:"base_url"`
			Days    int    `toml:"days"`
		} `toml:"receitaws"`
		Database struct {
			Driver string `toml:"driver"`
			DSN    string `toml:"dsn"`
		} `toml:"database"`
		Classifier struct {
			ReferenceCodes []string `toml:"reference_codes"`
		} `toml:"classifier"`
		Workflow struct {
			FlushEvery int `toml:"flush_every"`
		} `toml:"workflow"`
	}
	custom := payload{}
	custom.Paths.WorkDir = filepath.Join(dir, "out")
	custom.ReceitaWS.Token = "abc123"
	custom.ReceitaWS.BaseURL = "https://example.com/v1/"
	custom.ReceitaWS.Days = 1
	custom.Database.Driver = "SQLite"
	custom.Database.DSN = filepath.Join(dir, "clients.db")
	custom.Classifier.ReferenceCodes = []string{" 4742300 ", "4742300", ""}
	custom.Workflow.FlushEvery = 25

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom path to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.ReceitaWS.BaseURL != "https://example.com/v1" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.ReceitaWS.BaseURL)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("expected lowercased driver, got %q", cfg.Database.Driver)
	}
	if got := cfg.Classifier.ReferenceCodes; len(got) != 1 || got[0] != "4742300" {
		t.Fatalf("expected reference codes de-duplicated, got %v", got)
	}
	if cfg.Workflow.FlushEvery != 25 {
		t.Fatalf("unexpected flush cadence: %d", cfg.Workflow.FlushEvery)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	if info, err := os.Stat(cfg.Paths.WorkDir); err != nil || !info.IsDir() {
		t.Fatalf("expected work dir to exist: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"flush cadence", func(c *config.Config) { c.Workflow.FlushEvery = 0 }, "workflow.flush_every"},
		{"days", func(c *config.Config) { c.ReceitaWS.Days = 0 }, "receitaws.days"},
		{"driver", func(c *config.Config) { c.Database.Driver = "postgres" }, "database.driver"},
		{"codes", func(c *config.Config) { c.Classifier.ReferenceCodes = nil }, "classifier.reference_codes"},
		{"prefix", func(c *config.Config) { c.Artifact.Prefix = "out/CNPJ_" }, "artifact.prefix"},
		{"layout", func(c *config.Config) { c.Artifact.DateLayout = "2006/01/02" }, "artifact.date_layout"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Database.Port = 1521
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.Artifact.Prefix != "CNPJ_consulta_incremental_" {
		t.Fatalf("unexpected artifact prefix: %q", cfg.Artifact.Prefix)
	}
	if cfg.Database.Port != 1521 {
		t.Fatalf("expected port fallback, got %d", cfg.Database.Port)
	}
}
