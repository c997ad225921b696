package main

import (
	"fmt"
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// printTable writes rows under headers as a rounded box on stdout. The
// zero-based columns in numeric hold counts or durations and are right
// aligned. Short rows are padded with empty cells.
func printTable(cmd *cobra.Command, headers []string, rows [][]string, numeric ...int) {
	if len(headers) == 0 {
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, numeric))
}

func renderTable(headers []string, rows [][]string, numeric []int) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(toRow(headers, len(headers)))
	for _, row := range rows {
		tw.AppendRow(toRow(row, len(headers)))
	}

	configs := make([]table.ColumnConfig, len(headers))
	for i := range headers {
		configs[i] = table.ColumnConfig{Number: i + 1, AlignHeader: text.AlignLeft}
		if slices.Contains(numeric, i) {
			configs[i].Align = text.AlignRight
		}
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func toRow(cells []string, width int) table.Row {
	row := make(table.Row, width)
	for i := range row {
		row[i] = ""
		if i < len(cells) {
			row[i] = cells[i]
		}
	}
	return row
}
