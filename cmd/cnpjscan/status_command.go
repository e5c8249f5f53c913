package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cnpjscan/internal/checkpoint"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var fileFlag string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Summarize a checkpoint spreadsheet (latest by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			out := cmd.OutOrStdout()
			path := strings.TrimSpace(fileFlag)
			if path == "" {
				path, err = checkpoint.ArtifactsFromConfig(cfg).Latest()
				if err != nil {
					return fmt.Errorf("find artifact: %w", err)
				}
				if path == "" {
					fmt.Fprintf(out, "No checkpoint artifact found in %s\n", cfg.Paths.WorkDir)
					return nil
				}
			}

			reader, err := checkpoint.Open(path)
			if err != nil {
				return err
			}
			defer reader.Close()
			summary, err := reader.Summary()
			if err != nil {
				return fmt.Errorf("summarize %s: %w", path, err)
			}

			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Checkpoint", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusSummary(summary))
			for _, line := range statusLines(summary, colorize) {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Artifact to summarize")
	return cmd
}

func renderStatusSummary(summary checkpoint.Summary) string {
	rows := [][]string{
		{"Artifact", summary.Path},
		{"Processed CNPJs", strconv.Itoa(summary.ProcessedTaxIDs)},
		{"Activity rows", strconv.Itoa(summary.ProcessedRows)},
		{"Matching activities", strconv.Itoa(summary.MatchRows)},
		{"Other activities", strconv.Itoa(summary.MismatchRows)},
		{"Errors", strconv.Itoa(summary.ErrorRows)},
		{"Resolved CNPJs", strconv.Itoa(summary.Resolved)},
		{"Remaining", strconv.Itoa(summary.Remaining)},
	}
	return renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
}

func statusLines(summary checkpoint.Summary, colorize bool) []string {
	var lines []string
	if summary.Remaining == 0 {
		lines = append(lines, renderStatusLine("Progress", statusOK, "no remaining work", colorize))
	} else {
		lines = append(lines, renderStatusLine("Progress", statusWarn, fmt.Sprintf("%d CNPJs remaining; run again to resume", summary.Remaining), colorize))
	}
	if summary.ErrorRows > 0 {
		lines = append(lines, renderStatusLine("Lookup errors", statusWarn, fmt.Sprintf("%d recorded in %s", summary.ErrorRows, checkpoint.SheetErrors), colorize))
	} else {
		lines = append(lines, renderStatusLine("Lookup errors", statusOK, "", colorize))
	}
	return lines
}
