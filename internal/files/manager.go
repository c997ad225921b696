package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"keibacli/internal/config"
)

// ArchiveDirName is the data subdirectory receiving processed inputs
const ArchiveDirName = "processed"

// Manager moves record files around the data directory
type Manager struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewManager creates a new file manager instance
func NewManager(paths *config.Paths, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{paths: paths, logger: logger}
}

// ArchiveDir returns the directory processed inputs are moved to
func (m *Manager) ArchiveDir() string {
	return filepath.Join(m.paths.DataDir, ArchiveDirName)
}

// Archive moves a processed record file into the archive directory and
// returns its new path. An existing archived file of the same name is
// replaced.
func (m *Manager) Archive(path string) (string, error) {
	dst := filepath.Join(m.ArchiveDir(), filepath.Base(path))
	if err := m.MoveFile(path, dst); err != nil {
		return "", err
	}
	m.logger.Info("Input archived",
		slog.String("src", path),
		slog.String("dst", dst))
	return dst, nil
}

// CopyFile copies a file from source to destination
func (m *Manager) CopyFile(src, dst string) error {
	srcPath := m.resolvePath(src)
	dstPath := m.resolvePath(dst)

	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	srcFile, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy file content: %w", err)
	}
	return dstFile.Sync()
}

// MoveFile moves a file from source to destination
func (m *Manager) MoveFile(src, dst string) error {
	srcPath := m.resolvePath(src)
	dstPath := m.resolvePath(dst)

	m.logger.Debug("Moving file",
		slog.String("src_path", srcPath),
		slog.String("dst_path", dstPath))

	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	// Rename is atomic on the same filesystem
	if err := os.Rename(srcPath, dstPath); err == nil {
		return nil
	}

	if err := m.CopyFile(srcPath, dstPath); err != nil {
		return err
	}
	return os.Remove(srcPath)
}

// resolvePath places relative paths in the data directory
func (m *Manager) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.paths.DataDir, path)
}
