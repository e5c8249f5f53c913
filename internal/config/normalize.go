package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeArtifact()
	c.normalizeReceitaWS()
	if err := c.normalizeDatabase(); err != nil {
		return err
	}
	c.normalizeClassifier()
	c.normalizeOutput()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeArtifact() {
	c.Artifact.Prefix = strings.TrimSpace(c.Artifact.Prefix)
	if c.Artifact.Prefix == "" {
		c.Artifact.Prefix = defaultArtifactPrefix
	}
	c.Artifact.DateLayout = strings.TrimSpace(c.Artifact.DateLayout)
	if c.Artifact.DateLayout == "" {
		c.Artifact.DateLayout = defaultArtifactDateLayout
	}
}

func (c *Config) normalizeReceitaWS() {
	if strings.TrimSpace(c.ReceitaWS.Token) == "" {
		if value, ok := os.LookupEnv("AUTH_RECEITAWS"); ok {
			c.ReceitaWS.Token = value
		}
	}
	c.ReceitaWS.Token = strings.TrimSpace(c.ReceitaWS.Token)
	c.ReceitaWS.BaseURL = strings.TrimRight(strings.TrimSpace(c.ReceitaWS.BaseURL), "/")
	if c.ReceitaWS.BaseURL == "" {
		c.ReceitaWS.BaseURL = defaultReceitaWSBaseURL
	}
}

func (c *Config) normalizeDatabase() error {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if c.Database.Driver == "" {
		c.Database.Driver = defaultDatabaseDriver
	}
	envString(&c.Database.Username, "USERNAME_ORACLE")
	envString(&c.Database.Password, "PASSWORD_ORACLE")
	envString(&c.Database.Host, "HOST_ORACLE")
	envString(&c.Database.ServiceName, "SERVICE_NAME_ORACLE")
	if c.Database.Port == 0 {
		if value, ok := os.LookupEnv("PORT_ORACLE"); ok && strings.TrimSpace(value) != "" {
			port, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return fmt.Errorf("PORT_ORACLE: %w", err)
			}
			c.Database.Port = port
		} else {
			c.Database.Port = defaultDatabasePort
		}
	}
	c.Database.DSN = strings.TrimSpace(c.Database.DSN)
	if strings.TrimSpace(c.Database.Query) == "" {
		c.Database.Query = DefaultActiveClientsQuery
	}
	return nil
}

func (c *Config) normalizeClassifier() {
	codes := make([]string, 0, len(c.Classifier.ReferenceCodes))
	seen := make(map[string]struct{}, len(c.Classifier.ReferenceCodes))
	for _, code := range c.Classifier.ReferenceCodes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	c.Classifier.ReferenceCodes = codes
}

func (c *Config) normalizeOutput() {
	c.Output.InsertTable = strings.TrimSpace(c.Output.InsertTable)
	if c.Output.InsertTable == "" {
		c.Output.InsertTable = defaultInsertTable
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func envString(target *string, key string) {
	if strings.TrimSpace(*target) != "" {
		return
	}
	if value, ok := os.LookupEnv(key); ok {
		*target = strings.TrimSpace(value)
	}
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
