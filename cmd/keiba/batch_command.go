package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"keibacli/internal/dataprocessing"
	"keibacli/internal/files"
	"keibacli/internal/operations"
)

const unkeyedLabel = "unkeyed"

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var splitBy string
	var workbook bool
	var failFast bool
	var archive bool
	var fromFlag, toFlag string

	cmd := &cobra.Command{
		Use:   "batch [dir|file]",
		Short: "Run the pipeline over independent batches concurrently",
		Long: "Run the pipeline over independent batches concurrently.\n" +
			"A directory yields one batch per record file. A file with --split-by\n" +
			"yields one batch per distinct value of that column; rows without a\n" +
			"value form a final \"unkeyed\" batch. Without an argument the data\n" +
			"directory is used.",
		Args: cobra.MaximumNArgs(1),
	}
	cmd.Flags().StringVar(&splitBy, "split-by", "", "Split a single file into batches by this column")
	cmd.Flags().BoolVar(&workbook, "xlsx", false, "Also write each batch as an Excel workbook")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "Cancel remaining batches after the first failure")
	cmd.Flags().BoolVar(&archive, "archive", false, "Move completed input files to the processed directory")
	cmd.Flags().StringVar(&fromFlag, "from", "", "Only files dated on or after this day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toFlag, "to", "", "Only files dated on or before this day (YYYY-MM-DD)")

	cmd.RunE = ctx.withSession(func(cmd *cobra.Command, args []string, s *session) error {
		target := s.paths.DataDir
		if len(args) == 1 {
			target = args[0]
		}
		from, to, err := parseDateRange(fromFlag, toFlag)
		if err != nil {
			return err
		}

		reqs, sources, err := s.batchRequests(target, splitBy, from, to)
		if err != nil {
			return err
		}
		if len(reqs) == 0 {
			return fmt.Errorf("no batches found in %s", target)
		}

		manager, err := s.newManager(func(cfg *operations.Config) {
			cfg.ContinueOnError = !failFast
		})
		if err != nil {
			return err
		}

		results, runErr := manager.RunBatches(cmd.Context(), reqs)
		s.recordRuns(cmd.Context(), cmd.Name(), sources, results)

		labels := make([]string, len(reqs))
		for i, req := range reqs {
			labels[i] = req.Label
		}
		prefixes := batchPrefixes(labels)
		for i, res := range results {
			if res == nil {
				continue
			}
			if _, err := s.writeOutputs(res, prefixes[i], workbook); err != nil {
				return err
			}
		}
		if archive {
			if err := s.archiveInputs(reqs, results); err != nil {
				return err
			}
		}

		if s.json {
			if err := writeJSON(cmd, results); err != nil {
				return err
			}
			return runErr
		}
		printBatchSummary(cmd, results)
		return runErr
	})
	return cmd
}

// batchRequests builds one request per file in a directory, or one per
// group of a single file when splitBy is set
func (s *session) batchRequests(path, splitBy string, from, to time.Time) ([]operations.BatchRequest, []string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, err
	}

	if info.IsDir() {
		if splitBy != "" {
			return nil, nil, fmt.Errorf("--split-by needs a file, %s is a directory", path)
		}
		found, err := files.NewDiscovery("").FindByDateRange(path, from, to)
		if err != nil {
			return nil, nil, err
		}
		s.logger.Info("Record files discovered",
			slog.String("directory", path),
			slog.Int("files_found", len(found)))

		reqs := make([]operations.BatchRequest, len(found))
		sources := make([]string, len(found))
		for i, f := range found {
			reqs[i] = operations.BatchRequest{
				Label:  f.Name,
				Source: dataprocessing.NewFileSource(f.Path, s.logger),
			}
			sources[i] = f.Path
		}
		return reqs, sources, nil
	}

	if splitBy == "" {
		if err := s.checkInput(path); err != nil {
			return nil, nil, err
		}
		req := operations.BatchRequest{Label: filepath.Base(path), Source: dataprocessing.NewFileSource(path, s.logger)}
		return []operations.BatchRequest{req}, []string{path}, nil
	}

	table, err := s.loadInput(path)
	if err != nil {
		return nil, nil, err
	}
	if !table.Has(splitBy) {
		return nil, nil, fmt.Errorf("%s has no column %q to split by", path, splitBy)
	}

	keys, _ := table.GroupBy(splitBy)
	parts := table.SplitBy(splitBy)
	reqs := make([]operations.BatchRequest, len(parts))
	sources := make([]string, len(parts))
	for i, part := range parts {
		label := unkeyedLabel
		if i < len(keys) {
			label = keys[i]
		}
		reqs[i] = operations.BatchRequest{
			Label:  label,
			Source: dataprocessing.TableSource{Table: part},
		}
		sources[i] = path + "#" + label
	}
	return reqs, sources, nil
}

// archiveInputs moves the input file of every completed file batch into the
// processed directory
func (s *session) archiveInputs(reqs []operations.BatchRequest, results []*operations.BatchResult) error {
	manager := files.NewManager(s.paths, s.logger)
	for i, res := range results {
		if !res.Succeeded() {
			continue
		}
		src, ok := reqs[i].Source.(*dataprocessing.FileSource)
		if !ok {
			continue
		}
		if _, err := manager.Archive(src.Path); err != nil {
			return fmt.Errorf("archive %s: %w", src.Path, err)
		}
	}
	return nil
}

// parseDateRange reads the --from and --to flags; empty flags give zero times
func parseDateRange(from, to string) (time.Time, time.Time, error) {
	var bounds [2]time.Time
	for i, v := range []string{from, to} {
		if v == "" {
			continue
		}
		t, err := time.Parse(time.DateOnly, v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", v)
		}
		bounds[i] = t
	}
	if !bounds[0].IsZero() && !bounds[1].IsZero() && bounds[1].Before(bounds[0]) {
		return time.Time{}, time.Time{}, fmt.Errorf("--to %s is before --from %s", to, from)
	}
	return bounds[0], bounds[1], nil
}

func printBatchSummary(cmd *cobra.Command, results []*operations.BatchResult) {
	rows := make([][]string, 0, len(results))
	completed := 0
	for _, res := range results {
		if res == nil {
			continue
		}
		if res.Succeeded() {
			completed++
		}
		outRows := "-"
		if res.Features != nil {
			outRows = strconv.Itoa(res.Features.Len())
		}
		rows = append(rows, []string{
			res.Label,
			string(res.Status),
			strconv.Itoa(res.CleanStats.RowsIn),
			outRows,
			strconv.Itoa(len(res.Validation.Violations)),
			formatDuration(res.Duration),
			res.Error,
		})
	}
	printTable(cmd,
		[]string{"Batch", "Status", "In", "Out", "Violations", "Duration", "Error"},
		rows, 2, 3, 4, 5)
	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d batches completed\n", completed, len(results))
}
