package persist

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"go-jd-crawler/internal/models"
)

// Header is the fixed column order of every CSV file.
var Header = []string{"title", "company", "experience_years", "location", "deadline", "url", "rating", "review_count"}

// CSVSink rewrites one file in full on every Write. The file is replaced atomically so a
// reader never sees a partial checkpoint.
type CSVSink struct {
	path string
}

var _ Sink = (*CSVSink)(nil)

func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path}
}

func (s *CSVSink) Name() string { return "csv:" + s.path }

func (s *CSVSink) Path() string { return s.path }

func (s *CSVSink) Write(ctx context.Context, _, _ string, jobs []models.Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteCSV(tmp, jobs); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

// WriteCSV writes the header and one row per job. Absent optional fields are empty cells.
func WriteCSV(w io.Writer, jobs []models.Job) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, j := range jobs {
		count := ""
		if j.ReviewCount != nil {
			count = strconv.Itoa(*j.ReviewCount)
		}
		row := []string{j.Title, j.Company, j.ExperienceYears, j.Location, j.Deadline, j.URL, j.Rating, count}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", j.URL, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV loads a file written by CSVSink.
func ReadCSV(path string) ([]models.Job, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(Header)
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: empty file", path)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if !slices.Equal(header, Header) {
		return nil, fmt.Errorf("%s: unexpected header %v", path, header)
	}

	var jobs []models.Job
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		job := models.Job{
			Title:           row[0],
			Company:         row[1],
			ExperienceYears: row[2],
			Location:        row[3],
			Deadline:        row[4],
			URL:             row[5],
			Rating:          row[6],
		}
		if row[7] != "" {
			n, err := strconv.Atoi(row[7])
			if err != nil {
				return nil, fmt.Errorf("%s: review_count %q: %w", path, row[7], err)
			}
			job.ReviewCount = &n
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
