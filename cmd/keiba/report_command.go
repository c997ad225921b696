package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"keibacli/internal/config"
	"keibacli/internal/exporter"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "report <file>",
		Short: "Describe a record file: missing values, column types and duplicates",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().BoolVar(&save, "save", false, "Also write the report to the output directory")

	cmd.RunE = ctx.withSession(func(cmd *cobra.Command, args []string, s *session) error {
		table, err := s.loadInput(args[0])
		if err != nil {
			return err
		}
		report := s.newValidator().QualityReport(table)

		var path string
		if save {
			path = s.paths.OutputFile(config.QualityReportName)
			if err := exporter.WriteReportJSON(path, report); err != nil {
				return err
			}
		}

		if s.json {
			return writeJSON(cmd, report)
		}
		printQuality(cmd, report)
		if path != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		}
		return nil
	})
	return cmd
}
