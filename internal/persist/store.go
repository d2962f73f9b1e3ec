package persist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"go-jd-crawler/internal/models"
)

// ErrUnknownSource is returned for a source the store has no data for.
var ErrUnknownSource = errors.New("unknown source")

// CSVStore serves the files written by CSVSink, one per source.
type CSVStore struct {
	files map[string]string
}

// NewCSVStore maps each source to its file under dir.
func NewCSVStore(dir string, files map[string]string) *CSVStore {
	abs := make(map[string]string, len(files))
	for source, name := range files {
		abs[source] = filepath.Join(dir, name)
	}
	return &CSVStore{files: abs}
}

// Sources lists the sources whose file exists, sorted.
func (s *CSVStore) Sources(_ context.Context) ([]string, error) {
	var out []string
	for source, path := range s.files {
		if _, err := os.Stat(path); err == nil {
			out = append(out, source)
		}
	}
	slices.Sort(out)
	return out, nil
}

// Jobs reads the file of source. UpdatedAt is the file's modification time.
func (s *CSVStore) Jobs(_ context.Context, source string) ([]models.StoredJob, error) {
	path, ok := s.files[source]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, source)
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s has not been crawled", ErrUnknownSource, source)
		}
		return nil, err
	}
	jobs, err := ReadCSV(path)
	if err != nil {
		return nil, err
	}
	out := make([]models.StoredJob, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, models.StoredJob{Job: j, Source: source, UpdatedAt: info.ModTime()})
	}
	return out, nil
}
