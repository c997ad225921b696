package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	apperrors "keibacli/internal/errors"
	"keibacli/pkg/contracts/domain"
)

// Sheet names of the exported workbook
const (
	FeaturesSheet = "features"
	QualitySheet  = "quality"
)

// qualityHeader is the column layout of the quality sheet
var qualityHeader = []interface{}{"column", "data_type", "missing_count", "missing_rate_percent"}

// WorkbookWriter writes a feature table and its quality report to .xlsx
type WorkbookWriter struct {
	logger *slog.Logger
}

// NewWorkbookWriter creates a workbook writer
func NewWorkbookWriter(logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{logger: logger}
}

// Write saves table on the features sheet and, when report is not nil, the
// per-column quality summary on the quality sheet
func (w *WorkbookWriter) Write(path string, table *domain.Table, report *domain.QualityReport) error {
	if err := table.Validate(); err != nil {
		return apperrors.NewShapeError("cannot export table", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", FeaturesSheet); err != nil {
		return apperrors.NewExportError("failed to name features sheet", err)
	}
	if err := writeFeatures(f, table); err != nil {
		return err
	}
	if report != nil {
		if _, err := f.NewSheet(QualitySheet); err != nil {
			return apperrors.NewExportError("failed to create quality sheet", err)
		}
		if err := writeQuality(f, report); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewExportError("failed to create directory", err)
	}
	if err := f.SaveAs(path); err != nil {
		return apperrors.NewExportError("failed to save workbook", err).WithContext("path", path)
	}

	w.logger.Info("Workbook exported",
		slog.String("path", path),
		slog.Int("rows", table.Len()),
		slog.Bool("quality_sheet", report != nil))
	return nil
}

func writeFeatures(f *excelize.File, table *domain.Table) error {
	columns := table.Columns()
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := setRow(f, FeaturesSheet, 1, header); err != nil {
		return err
	}

	for i := 0; i < table.Len(); i++ {
		row := make([]interface{}, len(columns))
		for j, c := range columns {
			row[j] = cellValue(table.Get(i, c))
		}
		if err := setRow(f, FeaturesSheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeQuality(f *excelize.File, report *domain.QualityReport) error {
	summary := [][]interface{}{
		{"total_rows", report.TotalRows},
		{"total_columns", report.TotalColumns},
		{"duplicate_rows", report.DuplicateRows},
	}
	for i, row := range summary {
		if err := setRow(f, QualitySheet, i+1, row); err != nil {
			return err
		}
	}

	start := len(summary) + 2
	if err := setRow(f, QualitySheet, start, qualityHeader); err != nil {
		return err
	}
	for i, col := range report.Columns {
		missing := report.Missing[col]
		row := []interface{}{col, report.DataTypes[col], missing.Count, missing.RatePercent}
		if err := setRow(f, QualitySheet, start+1+i, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return apperrors.NewExportError("invalid cell coordinates", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return apperrors.NewExportError(fmt.Sprintf("failed to write %s row %d", sheet, row), err)
	}
	return nil
}
