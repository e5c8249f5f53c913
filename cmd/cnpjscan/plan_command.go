package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"cnpjscan/internal/checkpoint"
	"cnpjscan/internal/logging"
	"cnpjscan/internal/planner"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var dateFlag string
	var limit int

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show which work set the next run would process, without calling the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			date, err := parseDate(dateFlag)
			if err != nil {
				return err
			}

			plans := planner.New(checkpoint.ArtifactsFromConfig(cfg), warehouseOpener(cfg), logging.NewNop())
			plan, err := plans.Plan(cmd.Context(), date)
			if err != nil {
				return fmt.Errorf("plan work set: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderPlan(plan))
			if plan.Empty() {
				fmt.Fprintln(out, "Nothing left to process.")
				return nil
			}
			fmt.Fprintln(out, renderPlanItems(plan, limit))
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Artifact date (YYYY-MM-DD, default today)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of pending items to list (0 lists all)")
	return cmd
}

func renderPlan(plan planner.Plan) string {
	resumed := plan.ResumedFrom
	if resumed == "" {
		resumed = "-"
	}
	rows := [][]string{
		{"Artifact", plan.Target},
		{"Work source", string(plan.Source)},
		{"Resumed from", resumed},
		{"Processed so far", strconv.Itoa(plan.ProcessedSoFar)},
		{"Pending", strconv.Itoa(len(plan.Items))},
		{"Duplicates dropped", strconv.Itoa(plan.Duplicates)},
		{"Already resolved", strconv.Itoa(plan.Skipped)},
	}
	return renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
}

func renderPlanItems(plan planner.Plan, limit int) string {
	items := plan.Items
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	rows := make([][]string, 0, len(items)+1)
	for i, item := range items {
		rows = append(rows, []string{
			strconv.Itoa(plan.ProcessedSoFar + i + 1),
			item.ClientID,
			item.TaxID,
		})
	}
	if hidden := len(plan.Items) - len(items); hidden > 0 {
		rows = append(rows, []string{"", "", fmt.Sprintf("... %d more", hidden)})
	}
	return renderTable([]string{"#", "CODCLI", "CNPJ"}, rows, []columnAlignment{alignRight, alignLeft, alignLeft})
}
