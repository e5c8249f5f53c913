package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkDir string `toml:"work_dir"`
	LogDir  string `toml:"log_dir"`
}

// Artifact describes how the daily checkpoint spreadsheet is named.
type Artifact struct {
	Prefix     string `toml:"prefix"`
	DateLayout string `toml:"date_layout"`
}

// ReceitaWS contains configuration for the CNPJ lookup API.
type ReceitaWS struct {
	BaseURL        string `toml:"base_url"`
	Token          string `toml:"token"`
	Days           int    `toml:"days"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Database contains connection settings for the client warehouse.
type Database struct {
	Driver         string `toml:"driver"`
	DSN            string `toml:"dsn"`
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	ServiceName    string `toml:"service_name"`
	Username       string `toml:"username"`
	Password       string `toml:"password"`
	Query          string `toml:"query"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Classifier holds the reference CNAE codes the company operates under.
type Classifier struct {
	ReferenceCodes []string `toml:"reference_codes"`
}

// Workflow contains checkpoint cadence and rate limiting.
type Workflow struct {
	FlushEvery        int `toml:"flush_every"`
	FlushDelaySeconds int `toml:"flush_delay_seconds"`
}

// Output controls derived artifact columns.
type Output struct {
	InsertTable string `toml:"insert_table"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for cnpjscan.
//
// Configuration sections by subsystem:
//   - Paths: artifact and log directories
//   - Artifact: daily spreadsheet naming
//   - ReceitaWS: lookup API endpoint, credentials, and staleness window
//   - Database: warehouse connection and work-set query
//   - Classifier: reference activity codes
//   - Workflow: flush cadence and post-flush pause
//   - Output: generated INSERT statement target
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Artifact   Artifact   `toml:"artifact"`
	ReceitaWS  ReceitaWS  `toml:"receitaws"`
	Database   Database   `toml:"database"`
	Classifier Classifier `toml:"classifier"`
	Workflow   Workflow   `toml:"workflow"`
	Output     Output     `toml:"output"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/cnpjscan/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and environment fallbacks applied.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	loadDotEnv(".env")

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// loadDotEnv reads KEY=VALUE pairs from path without overriding variables
// that are already set. A missing file is not an error.
func loadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("cnpjscan.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the artifact and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockPath returns the lock file guarding the artifact directory against
// concurrent runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.WorkDir, ".cnpjscan.lock")
}

// LogPath returns the log file path, or "" when file logging is disabled.
func (c *Config) LogPath() string {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return ""
	}
	return filepath.Join(c.Paths.LogDir, "cnpjscan.log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
