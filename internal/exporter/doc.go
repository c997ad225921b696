// Package exporter writes pipeline output: record tables as CSV, reports as
// JSON and a feature workbook with a quality sheet.
//
// CSVWriter: UTF-8 BOM for Excel compatibility, header row, Missing cells as
// empty fields. Relative paths land in the configured output directory.
//
// WorkbookWriter: an .xlsx with a "features" sheet holding the table, numbers
// kept numeric, and a "quality" sheet summarising the quality report.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(paths, logger)
//	if err := w.WriteTable(config.FeaturesCSVName, res.Features); err != nil {
//	    return err
//	}
//	err = exporter.WriteReportJSON(paths.OutputFile(config.QualityReportName), res.Quality)
package exporter
