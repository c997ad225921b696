package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved application paths
type Paths struct {
	DataDir   string
	OutputDir string
	LogsDir   string
	HistoryDB string
}

// ResolvePaths returns the configured paths made absolute against base.
// An empty base means the current working directory.
func (c *Config) ResolvePaths(base string) (*Paths, error) {
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}

	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}

	return &Paths{
		DataDir:   abs(c.Paths.DataDir),
		OutputDir: abs(c.Paths.OutputDir),
		LogsDir:   abs(c.Paths.LogsDir),
		HistoryDB: abs(c.Paths.HistoryDB),
	}, nil
}

// EnsureDirectories creates the output, logs and history directories
func (p *Paths) EnsureDirectories() error {
	dirs := []string{p.OutputDir, p.LogsDir}
	if p.HistoryDB != "" {
		dirs = append(dirs, filepath.Dir(p.HistoryDB))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// OutputFile returns the path of a named file in the output directory
func (p *Paths) OutputFile(name string) string {
	return filepath.Join(p.OutputDir, name)
}

// LogPathResolution logs the resolved paths at debug level
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Resolved paths",
		slog.String("data_dir", p.DataDir),
		slog.String("output_dir", p.OutputDir),
		slog.String("logs_dir", p.LogsDir),
		slog.String("history_db", p.HistoryDB))
}
