package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"keibacli/internal/operations"
	"keibacli/internal/validation"
	"keibacli/pkg/contracts/domain"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var pipelineSteps = []string{
	operations.StepIDLoad,
	operations.StepIDClean,
	operations.StepIDQuality,
	operations.StepIDValidate,
	operations.StepIDDerive,
}

func printSteps(cmd *cobra.Command, res *operations.BatchResult) {
	var rows [][]string
	for _, id := range pipelineSteps {
		step, ok := res.Steps[id]
		if !ok {
			continue
		}
		rows = append(rows, []string{
			step.Name,
			string(step.GetStatus()),
			formatDuration(step.Duration()),
			step.Message,
		})
	}
	printTable(cmd, []string{"Step", "Status", "Duration", "Message"}, rows, 2)
}

func printViolations(cmd *cobra.Command, result domain.ValidationResult) {
	if result.Valid {
		fmt.Fprintln(cmd.OutOrStdout(), "Race data valid")
		return
	}
	rows := make([][]string, 0, len(result.Violations))
	for _, v := range result.Violations {
		rows = append(rows, []string{string(v.Kind), v.RaceID, v.Column, v.Message})
	}
	printTable(cmd, []string{"Kind", "Race", "Column", "Message"}, rows)
}

func printCleanStats(cmd *cobra.Command, stats validation.CleanStats) {
	reasons := make([]string, 0, len(stats.Dropped))
	for reason := range stats.Dropped {
		reasons = append(reasons, string(reason))
	}
	sort.Strings(reasons)

	rows := [][]string{
		{"rows in", strconv.Itoa(stats.RowsIn)},
		{"rows out", strconv.Itoa(stats.RowsOut)},
	}
	for _, reason := range reasons {
		rows = append(rows, []string{"dropped: " + reason, strconv.Itoa(stats.Dropped[validation.DropReason(reason)])})
	}
	printTable(cmd, []string{"Metric", "Rows"}, rows, 1)
}

func printQuality(cmd *cobra.Command, report domain.QualityReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Rows: %d  Columns: %d  Duplicate rows: %d\n",
		report.TotalRows, report.TotalColumns, report.DuplicateRows)

	rows := make([][]string, 0, len(report.Columns))
	for _, col := range report.Columns {
		missing := report.Missing[col]
		rows = append(rows, []string{
			col,
			report.DataTypes[col],
			strconv.Itoa(missing.Count),
			strconv.FormatFloat(missing.RatePercent, 'f', 2, 64) + "%",
		})
	}
	printTable(cmd, []string{"Column", "Type", "Missing", "Rate"}, rows, 2, 3)
}
