package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"keibacli/internal/config"
	apperrors "keibacli/internal/errors"
	"keibacli/pkg/contracts/domain"
)

// utf8BOM helps Excel recognize UTF-8 output
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewCSVWriter creates a CSV writer. Relative paths resolve against the
// output directory of paths; a nil paths leaves them relative to the
// working directory.
func NewCSVWriter(paths *config.Paths, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{paths: paths, logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	Append    bool
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	fullPath := w.resolvePath(filePath)

	w.logger.Debug("Writing CSV file",
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return apperrors.NewExportError("failed to create directory", err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if options.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(fullPath, flags, 0644)
	if err != nil {
		return apperrors.NewExportError("failed to open file", err).WithContext("path", fullPath)
	}
	defer file.Close()

	if options.BOMPrefix && !options.Append {
		if _, err := file.Write(utf8BOM); err != nil {
			return apperrors.NewExportError("failed to write BOM", err)
		}
	}

	writer := csv.NewWriter(file)
	if !options.Append && len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return apperrors.NewExportError("failed to write headers", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return apperrors.NewExportError(fmt.Sprintf("failed to write record %d", i), err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.NewExportError("failed to flush CSV", err)
	}
	return nil
}

// WriteTable writes a record table with a BOM, its header row and one line
// per row. Missing cells are written as empty fields.
func (w *CSVWriter) WriteTable(filePath string, table *domain.Table) error {
	if err := table.Validate(); err != nil {
		return apperrors.NewShapeError("cannot export table", err)
	}

	columns := table.Columns()
	records := make([][]string, table.Len())
	for i := range records {
		record := make([]string, len(columns))
		for j, col := range columns {
			record[j] = formatValue(table.Get(i, col))
		}
		records[i] = record
	}

	if err := w.WriteCSV(filePath, WriteOptions{
		Headers:   columns,
		Records:   records,
		BOMPrefix: true,
	}); err != nil {
		return err
	}

	w.logger.Info("Table exported",
		slog.String("path", w.resolvePath(filePath)),
		slog.Int("rows", table.Len()),
		slog.Int("columns", len(columns)))
	return nil
}

// resolvePath places relative paths in the output directory
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.paths == nil {
		return filePath
	}
	return w.paths.OutputFile(filePath)
}
