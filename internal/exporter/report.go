package exporter

import (
	"encoding/json"
	"os"
	"path/filepath"

	apperrors "keibacli/internal/errors"
)

// WriteReportJSON writes v as indented JSON, creating parent directories
func WriteReportJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return apperrors.NewExportError("failed to encode report", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewExportError("failed to create directory", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return apperrors.NewExportError("failed to write report", err).WithContext("path", path)
	}
	return nil
}
