package dataprocessing

import (
	"context"
	"log/slog"

	"keibacli/pkg/contracts/domain"
)

// Source produces a raw record table for one batch. Acquisition itself
// (scraping, downloads) lives outside this module.
type Source interface {
	Load(ctx context.Context) (*domain.Table, error)
}

// FileSource loads a record table from an .xlsx or .csv file
type FileSource struct {
	Path   string
	logger *slog.Logger
}

// NewFileSource returns a Source reading path
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	return &FileSource{Path: path, logger: logger}
}

// Load implements Source
func (s *FileSource) Load(ctx context.Context) (*domain.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Load(s.Path, s.logger)
}

// TableSource serves an in-memory table, typically in tests and batch splits
type TableSource struct {
	Table *domain.Table
}

// Load implements Source and returns a copy of the table
func (s TableSource) Load(ctx context.Context) (*domain.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Table == nil {
		return nil, nil
	}
	return s.Table.Clone(), nil
}
