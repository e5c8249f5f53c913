// Package logging assembles structured slog loggers and formatting helpers used
// across cnpjscan.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so the processing loop can tag
// log lines with the run correlation id and the CNPJ being looked up. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
package logging
