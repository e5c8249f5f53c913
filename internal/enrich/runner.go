package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cnpjscan/internal/checkpoint"
	"cnpjscan/internal/classify"
	"cnpjscan/internal/company"
	"cnpjscan/internal/logging"
	"cnpjscan/internal/planner"
	"cnpjscan/internal/services"
	"cnpjscan/internal/services/receitaws"
)

const defaultFlushEvery = 10

// Lookuper fetches the registration of one tax id.
type Lookuper interface {
	Lookup(ctx context.Context, taxID string) (receitaws.Result, error)
}

// Flusher durably merges a batch into the checkpoint artifact.
type Flusher interface {
	Flush(batch checkpoint.Batch) error
}

// Options tunes the processing loop.
type Options struct {
	FlushEvery  int
	FlushDelay  time.Duration
	InsertTable string
}

// Summary reports what one run resolved.
type Summary struct {
	Target         string
	ProcessedSoFar int
	Attempted      int
	Processed      int
	ProcessedRows  int
	Errors         int
	Remaining      int
	Flushes        int
	Canceled       bool
}

// Runner resolves a work set sequentially, checkpointing every FlushEvery
// items. There is never more than one lookup in flight.
type Runner struct {
	lookup     Lookuper
	classifier *classify.Classifier
	store      Flusher
	opts       Options
	logger     *slog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// New creates a runner.
func New(lookup Lookuper, classifier *classify.Classifier, store Flusher, opts Options, logger *slog.Logger) *Runner {
	if opts.FlushEvery <= 0 {
		opts.FlushEvery = defaultFlushEvery
	}
	return &Runner{
		lookup:     lookup,
		classifier: classifier,
		store:      store,
		opts:       opts,
		logger:     logging.NewComponentLogger(logger, "enrich"),
		sleep:      sleepContext,
	}
}

// session holds results resolved since the last flush.
type session struct {
	activities []company.ClassifiedActivity
	errors     []company.ErrorRecord
	taxIDs     map[string]struct{}
}

func newSession() *session {
	return &session{taxIDs: make(map[string]struct{})}
}

func (s *session) empty() bool {
	return len(s.activities) == 0 && len(s.errors) == 0
}

// Run resolves every item of plan exactly once. Each item is removed from the
// remaining snapshot as soon as it is resolved, whatever the outcome. When ctx
// is canceled the in-flight item stays unresolved, buffered results are
// flushed, and ctx.Err() is returned.
func (r *Runner) Run(ctx context.Context, plan planner.Plan) (Summary, error) {
	summary := Summary{Target: plan.Target, ProcessedSoFar: plan.ProcessedSoFar, Remaining: len(plan.Items)}
	logger := logging.WithContext(ctx, r.logger)
	items := plan.Items
	if len(items) == 0 {
		logger.Info("nothing to process", logging.String("artifact", plan.Target))
		return summary, nil
	}

	logger.Info("processing started",
		logging.String("artifact", plan.Target),
		logging.String("source", string(plan.Source)),
		logging.Int("items", len(items)),
		logging.Int("processed_so_far", plan.ProcessedSoFar),
	)

	buf := newSession()
	for i, item := range items {
		if ctx.Err() != nil {
			return r.stop(ctx, logger, buf, items[i:], &summary)
		}

		itemCtx := services.WithTaxID(ctx, item.TaxID)
		started := time.Now()
		result, err := r.lookup.Lookup(itemCtx, item.TaxID)
		if err != nil && ctx.Err() != nil {
			return r.stop(ctx, logger, buf, items[i:], &summary)
		}

		summary.Attempted++
		itemLogger := logger.With(logging.String(logging.FieldTaxID, item.TaxID))
		itemLogger.Info("lookup",
			logging.Int("progress", plan.ProcessedSoFar+i+1),
			logging.String(logging.FieldClientID, item.ClientID),
		)
		itemLogger.Debug("lookup finished", logging.Duration("elapsed", time.Since(started)))

		r.resolve(itemLogger, buf, item, result, err)

		next := i + 1
		if next%r.opts.FlushEvery != 0 && next != len(items) {
			continue
		}
		if err := r.flush(logger, buf, items[next:], &summary); err != nil {
			return summary, err
		}
		buf = newSession()
		if next == len(items) {
			break
		}
		if err := r.sleep(ctx, r.opts.FlushDelay); err != nil {
			summary.Canceled = true
			logger.Info("processing interrupted", logging.Int("remaining", summary.Remaining))
			return summary, err
		}
	}

	logger.Info("processing finished",
		logging.Int("attempted", summary.Attempted),
		logging.Int("processed", summary.Processed),
		logging.Int("errors", summary.Errors),
		logging.Int("flushes", summary.Flushes),
	)
	return summary, nil
}

func (r *Runner) resolve(logger *slog.Logger, buf *session, item company.WorkItem, result receitaws.Result, lookupErr error) {
	if lookupErr != nil {
		record := r.classifier.FromError(item, lookupErr)
		buf.errors = append(buf.errors, record)
		logging.WarnWithContext(logger, "lookup failed", services.Kind(lookupErr),
			logging.Error(lookupErr),
			logging.String(logging.FieldErrorHint, "recorded in the error sheet; clear the row to retry"),
		)
		return
	}

	outcome := r.classifier.Classify(item, result)
	if outcome.Failed() {
		buf.errors = append(buf.errors, *outcome.Error)
		eventType := "api_error"
		if _, ok := result.(receitaws.APIError); !ok {
			eventType = "malformed_response"
		}
		logging.WarnWithContext(logger, "lookup rejected", eventType,
			logging.String("message", outcome.Error.Message),
			logging.String(logging.FieldErrorHint, "recorded in the error sheet"),
		)
		return
	}
	buf.activities = append(buf.activities, outcome.Activities...)
	buf.taxIDs[item.TaxID] = struct{}{}
}

func (r *Runner) flush(logger *slog.Logger, buf *session, remaining []company.WorkItem, summary *Summary) error {
	rows := BuildProcessedRows(buf.activities, r.opts.InsertTable)
	batch := checkpoint.Batch{
		Processed: rows,
		Errors:    buf.errors,
		Remaining: remaining,
	}
	if err := r.store.Flush(batch); err != nil {
		logging.ErrorWithContext(logger, "checkpoint flush failed", "checkpoint_write",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "artifact left as of the previous flush; rerun to resume"),
		)
		return fmt.Errorf("flush checkpoint: %w", err)
	}

	summary.Flushes++
	summary.Processed += len(buf.taxIDs)
	summary.ProcessedRows += len(rows)
	summary.Errors += len(buf.errors)
	summary.Remaining = len(remaining)

	logger.Info("checkpoint saved",
		logging.String("artifact", summary.Target),
		logging.Int("batch_processed", len(buf.taxIDs)),
		logging.Int("batch_errors", len(buf.errors)),
		logging.Int("remaining", len(remaining)),
	)
	return nil
}

// stop flushes what was resolved before cancellation. remaining starts with
// the item that was in flight.
func (r *Runner) stop(ctx context.Context, logger *slog.Logger, buf *session, remaining []company.WorkItem, summary *Summary) (Summary, error) {
	summary.Canceled = true
	if !buf.empty() {
		if err := r.flush(logger, buf, remaining, summary); err != nil {
			return *summary, err
		}
	}
	logger.Info("processing interrupted", logging.Int("remaining", len(remaining)))
	return *summary, ctx.Err()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
