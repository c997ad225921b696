package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"keibacli/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recent pipeline runs, or show one run",
		Args:  cobra.MaximumNArgs(1),
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultListLimit, "Number of runs to show")

	cmd.RunE = ctx.withSession(func(cmd *cobra.Command, args []string, s *session) error {
		store, err := s.openHistory()
		if err != nil {
			return err
		}
		if store == nil {
			return fmt.Errorf("run history is disabled (paths.history_db is empty)")
		}
		defer store.Close()

		if len(args) == 1 {
			run, err := store.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if s.json {
				return writeJSON(cmd, run)
			}
			printRun(cmd, run)
			return nil
		}

		runs, err := store.ListRuns(cmd.Context(), limit)
		if err != nil {
			return err
		}

		if s.json {
			if runs == nil {
				runs = []history.Run{}
			}
			return writeJSON(cmd, runs)
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
			return nil
		}

		rows := make([][]string, 0, len(runs))
		for _, run := range runs {
			rows = append(rows, []string{
				shortID(run.RunID),
				run.Command,
				run.Source,
				run.Status,
				strconv.Itoa(run.RowsIn),
				strconv.Itoa(run.RowsOut),
				strconv.Itoa(run.Violations),
				run.StartedAt.Local().Format("2006-01-02 15:04:05"),
				formatDuration(run.Duration),
			})
		}
		printTable(cmd,
			[]string{"Run", "Command", "Source", "Status", "In", "Out", "Violations", "Started", "Duration"},
			rows, 4, 5, 6, 8)
		return nil
	})
	return cmd
}

func printRun(cmd *cobra.Command, run *history.Run) {
	rows := [][]string{
		{"Run", run.RunID},
		{"Command", run.Command},
		{"Source", run.Source},
		{"Status", run.Status},
		{"Rows in", strconv.Itoa(run.RowsIn)},
		{"Rows out", strconv.Itoa(run.RowsOut)},
		{"Dropped", strconv.Itoa(run.RowsDropped)},
		{"Violations", strconv.Itoa(run.Violations)},
		{"Started", run.StartedAt.Local().Format("2006-01-02 15:04:05")},
		{"Duration", formatDuration(run.Duration)},
	}
	if run.Error != "" {
		rows = append(rows, []string{"Error", run.Error})
	}
	printTable(cmd, []string{"Field", "Value"}, rows)
	if run.Quality != nil {
		printQuality(cmd, *run.Quality)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
