package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"cnpjscan/internal/config"
	"cnpjscan/internal/planner"
	"cnpjscan/internal/warehouse"
)

const dateFlagLayout = "2006-01-02"

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// warehouseOpener defers the database connection until the planner actually
// needs it, so resumed runs work without database credentials.
func warehouseOpener(cfg *config.Config) planner.SourceOpener {
	return func(ctx context.Context) (planner.WorkSource, error) {
		if err := cfg.ValidateDatabase(); err != nil {
			return nil, err
		}
		return warehouse.Open(ctx, cfg.Database)
	}
}

// parseDate reads the --date flag; empty means today in local time.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Now(), nil
	}
	date, err := time.ParseInLocation(dateFlagLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", value)
	}
	return date, nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
