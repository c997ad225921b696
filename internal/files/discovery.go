package files

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// recordExtensions are the record file formats the loaders understand
var recordExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".csv":  true,
}

// nameDate matches a race date embedded in a file name:
// 2024-05-26, 2024_05_26 or 20240526
var nameDate = regexp.MustCompile(`(\d{4})[-_]?(\d{2})[-_]?(\d{2})`)

// FileInfo represents information about a discovered record file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
	// Date is the race date taken from the file name, zero when there is none
	Date time.Time
}

// HasDate reports whether the file name carried a race date
func (f FileInfo) HasDate() bool {
	return !f.Date.IsZero()
}

// Discovery finds race record files under a base path
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// IsRecordFile reports whether name is a record file: a supported extension
// and not an Excel lock file
func IsRecordFile(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, "~$") || strings.HasPrefix(base, ".") {
		return false
	}
	return recordExtensions[strings.ToLower(filepath.Ext(base))]
}

// FindRecordFiles finds the record files in dir, sorted by name
func (d *Discovery) FindRecordFiles(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !IsRecordFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Date:    ParseNameDate(entry.Name()),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// FindByDateRange returns the record files in dir whose name date lies in
// [from, to]. A zero bound is open. When either bound is set, files without
// a name date are left out.
func (d *Discovery) FindByDateRange(dir string, from, to time.Time) ([]FileInfo, error) {
	files, err := d.FindRecordFiles(dir)
	if err != nil {
		return nil, err
	}
	if from.IsZero() && to.IsZero() {
		return files, nil
	}

	var out []FileInfo
	for _, f := range files {
		if !f.HasDate() {
			continue
		}
		if !from.IsZero() && f.Date.Before(from) {
			continue
		}
		if !to.IsZero() && f.Date.After(to) {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

// FindLatest returns the record file with the latest name date, falling
// back to the most recently modified file when no name carries a date
func (d *Discovery) FindLatest(dir string) (*FileInfo, error) {
	files, err := d.FindRecordFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no record files found in %s", d.resolve(dir))
	}

	latest := files[0]
	for _, f := range files[1:] {
		switch {
		case f.HasDate() && !latest.HasDate():
			latest = f
		case f.HasDate() && latest.HasDate() && !f.Date.Before(latest.Date):
			latest = f
		case !f.HasDate() && !latest.HasDate() && f.ModTime.After(latest.ModTime):
			latest = f
		}
	}
	return &latest, nil
}

// ParseNameDate extracts the race date from a file name, or returns the
// zero time
func ParseNameDate(name string) time.Time {
	m := nameDate.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return time.Time{}
	}
	t, err := time.Parse("20060102", m[1]+m[2]+m[3])
	if err != nil {
		return time.Time{}
	}
	return t
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}
