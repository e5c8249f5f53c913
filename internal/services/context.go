package services

import "context"

type contextKey string

const (
	runIDKey contextKey = "run_id"
	taxIDKey contextKey = "tax_id"
)

// WithRunID annotates context with the run correlation identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run correlation identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithTaxID annotates context with the CNPJ currently being processed.
func WithTaxID(ctx context.Context, taxID string) context.Context {
	if taxID == "" {
		return ctx
	}
	return context.WithValue(ctx, taxIDKey, taxID)
}

// TaxIDFromContext returns the CNPJ if present.
func TaxIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(taxIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
