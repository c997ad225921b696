package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"keibacli/internal/exporter"
)

const defaultCleanedName = "cleaned.csv"

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var outName string

	cmd := &cobra.Command{
		Use:   "clean <file>",
		Short: "Normalize positions, coerce types, fill gaps and drop outliers",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVar(&outName, "out", defaultCleanedName, "Cleaned CSV file, relative to the output directory")

	cmd.RunE = ctx.withSession(func(cmd *cobra.Command, args []string, s *session) error {
		raw, err := s.loadInput(args[0])
		if err != nil {
			return err
		}

		cleaned, stats, err := s.newValidator().CleanWithStats(raw)
		if err != nil {
			return err
		}
		writer := exporter.NewCSVWriter(s.paths, s.logger)
		if err := writer.WriteTable(outName, cleaned); err != nil {
			return err
		}

		if s.json {
			return writeJSON(cmd, stats)
		}
		printCleanStats(cmd, stats)
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", s.outputPath(outName))
		return nil
	})
	return cmd
}
