package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "keibacli/internal/errors"
	"keibacli/pkg/contracts/domain"
)

// headerMarkers identify the sheet holding race records in a workbook
var headerMarkers = []string{"horse_name", "race_id"}

const utf8BOM = "\ufeff"

// Load reads a record table from an .xlsx or .csv file, choosing the parser by extension.
func Load(filePath string, logger *slog.Logger) (*domain.Table, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".xlsx", ".xlsm":
		return ParseFile(filePath, logger)
	case ".csv":
		f, err := os.Open(filePath)
		if err != nil {
			return nil, apperrors.NewParsingError("failed to open file", err).WithContext("path", filePath)
		}
		defer f.Close()
		table, err := ParseCSV(f)
		if err != nil {
			return nil, err
		}
		logger.Debug("reading race records",
			slog.String("path", filePath),
			slog.Int("rows", table.Len()))
		return table, nil
	default:
		return nil, apperrors.NewParsingError(fmt.Sprintf("unsupported input format %q", filepath.Ext(filePath)), nil).
			WithContext("path", filePath)
	}
}

// ParseFile reads a race record workbook. The first sheet whose header row
// names horse_name or race_id is used, falling back to the first sheet.
func ParseFile(filePath string, logger *slog.Logger) (*domain.Table, error) {
	if logger == nil {
		logger = slog.Default()
	}
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err).WithContext("path", filePath)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewParsingError("workbook has no sheets", nil).WithContext("path", filePath)
	}

	var rows [][]string
	sheetName := ""
	for _, name := range sheets {
		candidate, err := f.GetRows(name)
		if err != nil || len(candidate) == 0 {
			continue
		}
		if hasMarker(candidate[0]) {
			rows, sheetName = candidate, name
			break
		}
	}
	if sheetName == "" {
		sheetName = sheets[0]
		rows, err = f.GetRows(sheetName)
		if err != nil {
			return nil, apperrors.NewParsingError("failed to read sheet", err).WithContext("sheet", sheetName)
		}
	}

	logger.Debug("reading race records",
		slog.String("path", filePath),
		slog.String("sheet", sheetName),
		slog.Int("rows", len(rows)))
	return buildTable(rows)
}

// ParseCSV reads a comma separated record table with a header row. A UTF-8
// byte order mark is stripped.
func ParseCSV(r io.Reader) (*domain.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read csv", err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], utf8BOM)
	}
	return buildTable(records)
}

// buildTable turns a header row plus data rows into a table of text cells.
// Blank cells load as missing; fully blank rows are skipped.
func buildTable(rows [][]string) (*domain.Table, error) {
	if len(rows) == 0 {
		return domain.NewTable(), nil
	}

	header := make([]string, len(rows[0]))
	seen := make(map[string]bool, len(rows[0]))
	for i, h := range rows[0] {
		name := strings.TrimSpace(h)
		if name == "" {
			return nil, apperrors.NewShapeError(fmt.Sprintf("empty column name at position %d", i+1), nil)
		}
		if seen[name] {
			return nil, apperrors.NewShapeError(fmt.Sprintf("duplicate column %q", name), nil)
		}
		seen[name] = true
		header[i] = name
	}

	table := domain.NewTable(header...)
	for _, raw := range rows[1:] {
		row := make(domain.Row, len(header))
		for i, cell := range raw {
			if i >= len(header) {
				break
			}
			if strings.TrimSpace(cell) == "" {
				continue
			}
			row[header[i]] = domain.Text(cell)
		}
		if len(row) == 0 {
			continue
		}
		table.AppendRow(row)
	}
	return table, nil
}

func hasMarker(header []string) bool {
	for _, h := range header {
		name := strings.TrimSpace(h)
		for _, m := range headerMarkers {
			if name == m {
				return true
			}
		}
	}
	return false
}
