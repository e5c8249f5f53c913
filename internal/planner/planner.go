package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"cnpjscan/internal/checkpoint"
	"cnpjscan/internal/company"
	"cnpjscan/internal/logging"
	"cnpjscan/internal/services"
)

// Source tells where a plan's work set came from.
type Source string

const (
	SourceCheckpoint Source = "checkpoint"
	SourceDatabase   Source = "database"
)

// WorkSource provides the canonical work set.
type WorkSource interface {
	ActiveClients(ctx context.Context) ([]company.WorkItem, error)
	Close() error
}

// SourceOpener connects to the work source. It is only called when no
// checkpoint can be resumed.
type SourceOpener func(ctx context.Context) (WorkSource, error)

// Plan is the resume decision for one run.
type Plan struct {
	// Target is the artifact every flush of this run writes to.
	Target string
	// ResumedFrom is the artifact whose remaining sheet seeded the work set.
	ResumedFrom string
	Source      Source
	Items       []company.WorkItem
	// ProcessedSoFar counts distinct tax ids already resolved before the run.
	ProcessedSoFar int
	// Duplicates counts work items dropped because their tax id repeated.
	Duplicates int
	// Skipped counts database items left out because the target artifact
	// already resolved them.
	Skipped int
}

// Empty reports whether there is nothing left to do.
func (p Plan) Empty() bool {
	return len(p.Items) == 0
}

// Planner decides the work set of a run from the artifacts on disk and,
// failing that, the database.
type Planner struct {
	artifacts  checkpoint.Artifacts
	openSource SourceOpener
	logger     *slog.Logger
}

// New creates a planner.
func New(artifacts checkpoint.Artifacts, openSource SourceOpener, logger *slog.Logger) *Planner {
	return &Planner{
		artifacts:  artifacts,
		openSource: openSource,
		logger:     logging.NewComponentLogger(logger, "planner"),
	}
}

// Plan locates a checkpoint for date and resumes its remaining work. Any
// problem reading the checkpoint falls back to the database. Plan never
// writes to disk.
func (p *Planner) Plan(ctx context.Context, date time.Time) (Plan, error) {
	plan := Plan{Target: p.artifacts.PathFor(date)}
	logger := logging.WithContext(ctx, p.logger)

	candidate, err := p.artifacts.Locate(date)
	if err != nil {
		logging.WarnWithContext(logger, "checkpoint lookup failed", "checkpoint_locate",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.work_dir permissions"),
		)
	}
	if candidate != "" {
		logger.Info("checkpoint found", logging.String("artifact", candidate))
		if resumed, ok := p.resume(logger, candidate, plan); ok {
			return resumed, nil
		}
	}

	return p.fromDatabase(ctx, logger, plan)
}

func (p *Planner) resume(logger *slog.Logger, path string, plan Plan) (Plan, bool) {
	reader, err := checkpoint.Open(path)
	if err != nil {
		logging.WarnWithContext(logger, "checkpoint unreadable, using database", "checkpoint_read",
			logging.String("artifact", path),
			logging.Error(err),
		)
		return plan, false
	}
	defer reader.Close()

	remaining, err := reader.Remaining()
	if err != nil {
		logging.WarnWithContext(logger, "remaining sheet unusable, using database", "checkpoint_read",
			logging.String("artifact", path),
			logging.Error(err),
		)
		return plan, false
	}
	if len(remaining) == 0 {
		logger.Info("checkpoint has no remaining work", logging.String("artifact", path))
		return plan, false
	}

	resolved, err := reader.ResolvedTaxIDs()
	if err != nil {
		logging.WarnWithContext(logger, "resolved ledgers unreadable, progress count starts at zero", "checkpoint_read",
			logging.String("artifact", path),
			logging.Error(err),
		)
		resolved = nil
	}

	items, dropped := company.DedupeWorkItems(remaining)
	items, skipped := withoutResolved(items, resolved)

	plan.ResumedFrom = path
	plan.Source = SourceCheckpoint
	plan.Items = items
	plan.ProcessedSoFar = len(resolved)
	plan.Duplicates = len(dropped)
	plan.Skipped = skipped

	logger.Info("resuming from checkpoint",
		logging.String("artifact", path),
		logging.Int("processed_so_far", plan.ProcessedSoFar),
		logging.Int("remaining", len(plan.Items)),
	)
	return plan, true
}

func (p *Planner) fromDatabase(ctx context.Context, logger *slog.Logger, plan Plan) (Plan, error) {
	if p.openSource == nil {
		return plan, services.Wrap(services.ErrConfiguration, "planner", "work source", "no database configured", nil)
	}
	logger.Info("querying work set from database")
	source, err := p.openSource(ctx)
	if err != nil {
		return plan, err
	}
	defer source.Close()

	fetched, err := source.ActiveClients(ctx)
	if err != nil {
		return plan, err
	}
	items, dropped := company.DedupeWorkItems(fetched)
	if len(dropped) > 0 {
		logger.Info("duplicate tax ids dropped", logging.Int("count", len(dropped)))
	}

	resolved, err := p.resolvedInTarget(plan.Target)
	if err != nil {
		return plan, err
	}
	items, skipped := withoutResolved(items, resolved)

	plan.Source = SourceDatabase
	plan.Items = items
	plan.ProcessedSoFar = len(resolved)
	plan.Duplicates = len(dropped)
	plan.Skipped = skipped

	logger.Info("work set loaded",
		logging.Int("items", len(items)),
		logging.Int("already_resolved", skipped),
	)
	return plan, nil
}

// resolvedInTarget returns the tax ids already resolved in today's artifact.
// Appending those again would duplicate ledger rows, so an unreadable target
// is an error rather than an empty set.
func (p *Planner) resolvedInTarget(target string) (map[string]struct{}, error) {
	if _, err := os.Stat(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat %s: %w", target, err)
	}
	reader, err := checkpoint.Open(target)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "planner", "read target", target, err)
	}
	defer reader.Close()
	resolved, err := reader.ResolvedTaxIDs()
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "planner", "read target", target, err)
	}
	return resolved, nil
}

func withoutResolved(items []company.WorkItem, resolved map[string]struct{}) ([]company.WorkItem, int) {
	if len(resolved) == 0 {
		return items, 0
	}
	kept := make([]company.WorkItem, 0, len(items))
	for _, item := range items {
		if _, ok := resolved[item.TaxID]; ok {
			continue
		}
		kept = append(kept, item)
	}
	return kept, len(items) - len(kept)
}
