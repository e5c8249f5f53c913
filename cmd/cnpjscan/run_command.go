package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"cnpjscan/internal/checkpoint"
	"cnpjscan/internal/classify"
	"cnpjscan/internal/config"
	"cnpjscan/internal/enrich"
	"cnpjscan/internal/logging"
	"cnpjscan/internal/planner"
	"cnpjscan/internal/services"
	"cnpjscan/internal/services/receitaws"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Look up pending CNPJs and checkpoint progress to the daily spreadsheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.ValidateLookup(); err != nil {
				return err
			}
			date, err := parseDate(dateFlag)
			if err != nil {
				return err
			}
			return runEnrichment(cmd.Context(), cmd.OutOrStdout(), cfg, date)
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Artifact date (YYYY-MM-DD, default today)")
	return cmd
}

func runEnrichment(cmdCtx context.Context, out io.Writer, cfg *config.Config, date time.Time) error {
	if cmdCtx == nil {
		cmdCtx = context.Background()
	}
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another cnpjscan run is already active in %s (lock %s)", cfg.Paths.WorkDir, cfg.LockPath())
	}
	defer func() { _ = lock.Unlock() }()

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	runID := uuid.NewString()
	runCtx := services.WithRunID(signalCtx, runID)
	logging.WithContext(runCtx, logger).Info("cnpjscan run started",
		logging.String("work_dir", cfg.Paths.WorkDir),
		logging.Int("reference_codes", len(cfg.Classifier.ReferenceCodes)),
	)

	client, err := receitaws.NewFromConfig(cfg)
	if err != nil {
		return err
	}

	plans := planner.New(checkpoint.ArtifactsFromConfig(cfg), warehouseOpener(cfg), logger)
	plan, err := plans.Plan(runCtx, date)
	if err != nil {
		return fmt.Errorf("plan work set: %w", err)
	}

	runner := enrich.New(
		client,
		classify.New(cfg.Classifier.ReferenceCodes),
		checkpoint.NewStore(plan.Target),
		enrich.Options{
			FlushEvery:  cfg.Workflow.FlushEvery,
			FlushDelay:  cfg.FlushDelay(),
			InsertTable: cfg.Output.InsertTable,
		},
		logger,
	)
	summary, runErr := runner.Run(runCtx, plan)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	fmt.Fprintln(out, renderRunSummary(runID, plan, summary))
	return runErr
}

func renderRunSummary(runID string, plan planner.Plan, summary enrich.Summary) string {
	resumed := plan.ResumedFrom
	if resumed == "" {
		resumed = "-"
	}
	rows := [][]string{
		{"Run", runID},
		{"Artifact", summary.Target},
		{"Work source", string(plan.Source)},
		{"Resumed from", resumed},
		{"Processed before run", strconv.Itoa(summary.ProcessedSoFar)},
		{"Looked up", strconv.Itoa(summary.Attempted)},
		{"Processed", strconv.Itoa(summary.Processed)},
		{"Activity rows", strconv.Itoa(summary.ProcessedRows)},
		{"Errors", strconv.Itoa(summary.Errors)},
		{"Remaining", strconv.Itoa(summary.Remaining)},
		{"Interrupted", yesNo(summary.Canceled)},
	}
	return renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
}
