package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"keibacli/internal/config"
	"keibacli/internal/dataprocessing"
	"keibacli/internal/exporter"
	"keibacli/internal/features"
	"keibacli/internal/history"
	"keibacli/internal/operations"
	"keibacli/internal/validation"
	"keibacli/pkg/contracts/domain"
)

func (s *session) newValidator() *validation.Validator {
	return validation.NewValidator(s.cfg.Rules(), s.logger)
}

func (s *session) newManager(tune ...func(*operations.Config)) (*operations.Manager, error) {
	engineer := features.NewEngineer(s.cfg.Features(), s.logger)
	registry, err := operations.NewPipelineRegistry(s.newValidator(), engineer, s.logger)
	if err != nil {
		return nil, err
	}
	cfg := operations.ConfigFrom(s.cfg.Pipeline)
	for _, fn := range tune {
		fn(cfg)
	}
	manager := operations.NewManager(registry, cfg, s.logger)
	manager.SetTracer(s.tracer)
	return manager, nil
}

// checkInput verifies that path is a readable record file
func (s *session) checkInput(path string) error {
	return validation.NewFileValidator(s.logger).ValidateInputFile(path)
}

// loadInput checks and parses one record file
func (s *session) loadInput(path string) (*domain.Table, error) {
	if err := s.checkInput(path); err != nil {
		return nil, err
	}
	return dataprocessing.Load(path, s.logger)
}

// outputPath places relative names in the output directory
func (s *session) outputPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return s.paths.OutputFile(name)
}

// writeOutputs exports the feature table as CSV, optionally as a workbook,
// and the quality report as JSON. prefix distinguishes batches that share
// an output directory.
func (s *session) writeOutputs(res *operations.BatchResult, prefix string, workbook bool) ([]string, error) {
	var written []string
	if res.Features == nil && res.Quality == nil {
		return written, nil
	}
	if err := validation.NewFileValidator(s.logger).ValidateOutputDirectory(s.paths.OutputDir); err != nil {
		return written, err
	}
	if res.Features != nil {
		name := prefix + config.FeaturesCSVName
		if err := exporter.NewCSVWriter(s.paths, s.logger).WriteTable(name, res.Features); err != nil {
			return written, err
		}
		written = append(written, s.outputPath(name))

		if workbook {
			path := s.paths.OutputFile(prefix + config.FeaturesWorkbookName)
			if err := exporter.NewWorkbookWriter(s.logger).Write(path, res.Features, res.Quality); err != nil {
				return written, err
			}
			written = append(written, path)
		}
	}
	if res.Quality != nil {
		path := s.paths.OutputFile(prefix + config.QualityReportName)
		if err := exporter.WriteReportJSON(path, res.Quality); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// recordRuns appends results to the run history. History is best effort: a
// failure is logged and never fails the command.
func (s *session) recordRuns(ctx context.Context, command string, sources []string, results []*operations.BatchResult) {
	store, err := s.openHistory()
	if err != nil {
		s.logger.Warn("run history unavailable", slog.String("error", err.Error()))
		return
	}
	if store == nil {
		return
	}
	defer store.Close()

	for i, res := range results {
		if res == nil {
			continue
		}
		source := res.Label
		if i < len(sources) {
			source = sources[i]
		}
		if _, err := store.RecordRun(ctx, runFromResult(command, source, res)); err != nil {
			s.logger.Warn("failed to record run",
				slog.String("run_id", res.ID),
				slog.String("error", err.Error()))
		}
	}
}

func runFromResult(command, source string, res *operations.BatchResult) history.Run {
	run := history.Run{
		RunID:       res.ID,
		Command:     command,
		Source:      source,
		Status:      string(res.Status),
		RowsIn:      res.CleanStats.RowsIn,
		RowsOut:     res.CleanStats.RowsOut,
		RowsDropped: res.CleanStats.TotalDropped(),
		Violations:  len(res.Validation.Violations),
		Quality:     res.Quality,
		Error:       res.Error,
		StartedAt:   time.Now().Add(-res.Duration),
		Duration:    res.Duration,
	}
	if run.RowsIn == 0 && res.Raw != nil {
		run.RowsIn = res.Raw.Len()
	}
	if res.Quality != nil {
		run.DuplicateRows = res.Quality.DuplicateRows
	}
	return run
}

var unsafeLabel = regexp.MustCompile(`[^\p{L}\p{N}._-]+`)

// batchPrefix turns a batch label into a file name prefix
func batchPrefix(label string) string {
	return sanitizeLabel(strings.TrimSuffix(label, filepath.Ext(label)))
}

// batchPrefixes gives every label a distinct prefix. Labels whose prefixes
// collide keep their extension, and any prefix still shared gets the batch
// number appended.
func batchPrefixes(labels []string) []string {
	prefixes := make([]string, len(labels))
	for i, l := range labels {
		prefixes[i] = batchPrefix(l)
	}
	for i, n := range countPrefixes(prefixes) {
		if n > 1 {
			prefixes[i] = sanitizeLabel(labels[i])
		}
	}
	for i, n := range countPrefixes(prefixes) {
		if n > 1 {
			prefixes[i] = fmt.Sprintf("%s%d_", prefixes[i], i+1)
		}
	}
	return prefixes
}

func countPrefixes(prefixes []string) []int {
	seen := make(map[string]int, len(prefixes))
	for _, p := range prefixes {
		seen[p]++
	}
	counts := make([]int, len(prefixes))
	for i, p := range prefixes {
		counts[i] = seen[p]
	}
	return counts
}

func sanitizeLabel(label string) string {
	label = strings.ReplaceAll(label, ".", "_")
	label = strings.Trim(unsafeLabel.ReplaceAllString(label, "_"), "_")
	if label == "" {
		return ""
	}
	return label + "_"
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return d.Round(10 * time.Millisecond).String()
	}
}
