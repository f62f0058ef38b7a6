package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrNoReports is returned when no stored report matches a query.
var ErrNoReports = errors.New("report: no matching reports found")

// Store persists and retrieves run reports. Migrators save through it and
// rollback/association repair load prior mappings through it, so tests can
// substitute an in-memory implementation.
type Store interface {
	Save(r *Report) (string, error)
	Latest(kind Kind) (*Report, error)
	LatestN(kind Kind, n int) ([]*Report, error)
	List(since time.Time) ([]*Report, error)
}

// FileStore keeps one JSON file per run under a reports directory, named
// {kind}_{YYYYMMDD_HHMMSS}.json.
type FileStore struct {
	dir string
	now func() time.Time
}

// NewFileStore returns a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create reports directory: %w", err)
	}
	return &FileStore{dir: dir, now: time.Now}, nil
}

// Save writes the report and returns the file path.
func (s *FileStore) Save(r *Report) (string, error) {
	name := fmt.Sprintf("%s_%s.json", r.Kind, s.now().Format("20060102_150405"))
	path := filepath.Join(s.dir, name)

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report %s: %w", path, err)
	}
	return path, nil
}

// Latest returns the most recent report of the given kind.
func (s *FileStore) Latest(kind Kind) (*Report, error) {
	reports, err := s.LatestN(kind, 1)
	if err != nil {
		return nil, err
	}
	return reports[0], nil
}

// LatestN returns up to n most recent reports of the given kind, newest
// first.
func (s *FileStore) LatestN(kind Kind, n int) ([]*Report, error) {
	paths, err := s.sortedPaths(string(kind) + "_")
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: kind %q in %s", ErrNoReports, kind, s.dir)
	}
	if n > 0 && len(paths) > n {
		paths = paths[:n]
	}
	return s.load(paths)
}

// List returns every stored report generated at or after since, newest
// first.
func (s *FileStore) List(since time.Time) ([]*Report, error) {
	paths, err := s.sortedPaths("")
	if err != nil {
		return nil, err
	}
	reports, err := s.load(paths)
	if err != nil {
		return nil, err
	}
	kept := reports[:0]
	for _, r := range reports {
		if !r.GeneratedAt.Before(since) {
			kept = append(kept, r)
		}
	}
	return kept, nil
}

// sortedPaths lists report files with the given filename prefix, newest
// first. Timestamped names sort lexically, so a reverse sort is enough.
func (s *FileStore) sortedPaths(prefix string) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read reports directory: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		if prefix != "" && !strings.HasPrefix(name, prefix) {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, name))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(paths)))
	return paths, nil
}

func (s *FileStore) load(paths []string) ([]*Report, error) {
	reports := make([]*Report, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read report %s: %w", path, err)
		}
		var r Report
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("parse report %s: %w", path, err)
		}
		reports = append(reports, &r)
	}
	return reports, nil
}
