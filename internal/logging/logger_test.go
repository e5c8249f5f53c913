package logging_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cnpjscan/internal/config"
	"cnpjscan/internal/logging"
	"cnpjscan/internal/services"
)

func newFileLogger(t *testing.T, format, level string) (*slog.Logger, func() string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "test.log")
	logger, err := logging.New(logging.Options{
		Format:           format,
		Level:            level,
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return logger, func() string {
		content, err := os.ReadFile(logPath)
		if err != nil {
			t.Fatalf("read log file: %v", err)
		}
		return string(content)
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from config")

	content, err := os.ReadFile(cfg.LogPath())
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello from config") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerPromotesComponent(t *testing.T) {
	logger, read := newFileLogger(t, "console", "info")
	logger = logging.NewComponentLogger(logger, "enrich")

	logger.Info("lookup", logging.Int("progress", 12), logging.String("tax_id", "04134893000158"), logging.String("note", "two words"))

	line := read()
	if !strings.Contains(line, " INFO enrich: lookup ") {
		t.Fatalf("expected component before message, got %q", line)
	}
	if !strings.Contains(line, "progress=12") || !strings.Contains(line, "tax_id=04134893000158") {
		t.Fatalf("expected attributes, got %q", line)
	}
	if !strings.Contains(line, `note="two words"`) {
		t.Fatalf("expected quoted value, got %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should not repeat as attribute, got %q", line)
	}
	if strings.Contains(line, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", line)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logger, read := newFileLogger(t, "console", "debug")
	logger.Debug("message with caller")

	if !strings.Contains(read(), "logger_test.go:") {
		t.Fatal("expected caller information in debug logs")
	}
}

func TestConsoleLoggerFlattensGroups(t *testing.T) {
	logger, read := newFileLogger(t, "console", "info")
	logger.WithGroup("flush").Info("saved", logging.Int("rows", 4))

	if !strings.Contains(read(), "flush.rows=4") {
		t.Fatal("expected grouped key to be dotted")
	}
}

func TestJSONLoggerUsesShortKeys(t *testing.T) {
	logger, read := newFileLogger(t, "json", "info")
	logger.Warn("flush failed", logging.Error(errors.New("disk full")))

	var payload map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(read())), &payload); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if payload["level"] != "warn" {
		t.Fatalf("expected lowercase level, got %v", payload["level"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", payload)
	}
	if payload["error"] != "disk full" {
		t.Fatalf("expected error message, got %v", payload["error"])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestWithContextAddsRunAndTaxID(t *testing.T) {
	logger, read := newFileLogger(t, "console", "info")
	ctx := services.WithRunID(context.Background(), "run-1")
	ctx = services.WithTaxID(ctx, "11222333000181")

	logging.WithContext(ctx, logger).Info("resolved")

	line := read()
	if !strings.Contains(line, "run_id=run-1") || !strings.Contains(line, "tax_id=11222333000181") {
		t.Fatalf("expected context fields, got %q", line)
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logger, read := newFileLogger(t, "console", "info")
	logging.WarnWithContext(logger, "checkpoint unreadable", "checkpoint_read_failed")

	line := read()
	if !strings.Contains(line, "event_type=checkpoint_read_failed") {
		t.Fatalf("expected event type, got %q", line)
	}
	if !strings.Contains(line, "error_hint=") {
		t.Fatalf("expected default hint, got %q", line)
	}
}
