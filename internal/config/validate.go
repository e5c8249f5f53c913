package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateArtifact(); err != nil {
		return err
	}
	if err := c.validateReceitaWS(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateClassifier(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

// ValidateLookup ensures the lookup API credentials are present. Commands
// that never call the API skip this check.
func (c *Config) ValidateLookup() error {
	if c.ReceitaWS.Token == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/cnpjscan/config.toml"
		}
		return fmt.Errorf("receitaws.token is required. Set AUTH_RECEITAWS env var or edit %s (create with 'cnpjscan config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateArtifact() error {
	if strings.ContainsAny(c.Artifact.Prefix, `/\*?[`) {
		return fmt.Errorf("artifact.prefix %q must not contain path separators or glob characters", c.Artifact.Prefix)
	}
	sample := time.Date(2006, time.January, 2, 0, 0, 0, 0, time.UTC).Format(c.Artifact.DateLayout)
	if strings.ContainsAny(sample, `/\`) {
		return fmt.Errorf("artifact.date_layout %q produces path separators", c.Artifact.DateLayout)
	}
	return nil
}

func (c *Config) validateReceitaWS() error {
	if c.ReceitaWS.Days < 1 {
		return errors.New("receitaws.days must be at least 1")
	}
	if c.ReceitaWS.TimeoutSeconds <= 0 {
		return errors.New("receitaws.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case "oracle", "sqlite":
	default:
		return fmt.Errorf("database.driver: unsupported value %q (expected oracle or sqlite)", c.Database.Driver)
	}
	if c.Database.TimeoutSeconds <= 0 {
		return errors.New("database.timeout_seconds must be positive")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("database.port %d out of range", c.Database.Port)
	}
	return nil
}

// ValidateDatabase ensures enough connection details exist to reach the
// warehouse. It runs only when the work set must come from the database.
func (c *Config) ValidateDatabase() error {
	if c.Database.DSN != "" {
		return nil
	}
	if c.Database.Driver == "sqlite" {
		return errors.New("database.dsn must be set for the sqlite driver")
	}
	var missing []string
	if c.Database.Host == "" {
		missing = append(missing, "host (HOST_ORACLE)")
	}
	if c.Database.ServiceName == "" {
		missing = append(missing, "service_name (SERVICE_NAME_ORACLE)")
	}
	if c.Database.Username == "" {
		missing = append(missing, "username (USERNAME_ORACLE)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("database connection incomplete, missing %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) validateClassifier() error {
	if len(c.Classifier.ReferenceCodes) == 0 {
		return errors.New("classifier.reference_codes must list at least one code")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.FlushEvery < 1 {
		return errors.New("workflow.flush_every must be at least 1")
	}
	if c.Workflow.FlushDelaySeconds < 0 {
		return errors.New("workflow.flush_delay_seconds must be zero or positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
