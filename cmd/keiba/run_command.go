package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"keibacli/internal/dataprocessing"
	"keibacli/internal/files"
	"keibacli/internal/operations"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var workbook bool

	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Clean, validate and derive features from a record file",
		Long: `Clean, validate and derive features from a record file.

Without a file argument the latest record file in the data directory is
used: the newest date in its name, or the last modified file when no name
carries a date.`,
		Args: cobra.MaximumNArgs(1),
	}
	cmd.Flags().BoolVar(&workbook, "xlsx", false, "Also write the features as an Excel workbook")

	cmd.RunE = ctx.withSession(func(cmd *cobra.Command, args []string, s *session) error {
		input, err := s.runInput(args)
		if err != nil {
			return err
		}
		if err := s.checkInput(input); err != nil {
			return err
		}

		manager, err := s.newManager()
		if err != nil {
			return err
		}
		res, runErr := manager.Execute(cmd.Context(), operations.BatchRequest{
			Label:  filepath.Base(input),
			Source: dataprocessing.NewFileSource(input, s.logger),
		})
		s.recordRuns(cmd.Context(), cmd.Name(), []string{input}, []*operations.BatchResult{res})

		written, err := s.writeOutputs(res, "", workbook)
		if err != nil {
			return err
		}

		if s.json {
			if err := writeJSON(cmd, res); err != nil {
				return err
			}
			return runErr
		}

		printSteps(cmd, res)
		if !res.Validation.Valid {
			printViolations(cmd, res.Validation)
		}
		out := cmd.OutOrStdout()
		if res.Features != nil {
			fmt.Fprintf(out, "Features: %d rows, %d columns (%d derived, %d scored)\n",
				res.Features.Len(), res.Features.NumColumns(),
				len(res.DeriveStats.Added), len(res.DeriveStats.Scored))
		}
		for _, path := range written {
			fmt.Fprintf(out, "Wrote %s\n", path)
		}
		return runErr
	})
	return cmd
}

// runInput returns the file argument, or the latest record file in the data
// directory when none was given
func (s *session) runInput(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	latest, err := files.NewDiscovery(s.paths.DataDir).FindLatest("")
	if err != nil {
		return "", err
	}
	s.logger.Info("Using latest record file", slog.String("path", latest.Path))
	return latest.Path, nil
}
