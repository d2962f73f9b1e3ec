// Package dedup remembers which postings were already reported in earlier runs.
package dedup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go-jd-crawler/internal/logger"
	"go-jd-crawler/internal/models"
)

// Expiry is how long a url stays seen.
const Expiry = 30 * 24 * time.Hour

type seenEntry struct {
	URL       string `json:"url"`
	Timestamp int64  `json:"timestamp"`
}

// JobCache is a file-backed set of urls with per-entry expiry.
type JobCache struct {
	mu       sync.Mutex
	filePath string
	seen     map[string]int64
	now      func() time.Time
	log      *logger.Logger
}

// NewJobCache creates or loads the cache stored in cacheDir.
func NewJobCache(cacheDir string, log *logger.Logger) (*JobCache, error) {
	return newJobCache(cacheDir, log, time.Now)
}

func newJobCache(cacheDir string, log *logger.Logger, now func() time.Time) (*JobCache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	jc := &JobCache{
		filePath: filepath.Join(cacheDir, "seen_jobs.json"),
		seen:     make(map[string]int64),
		now:      now,
		log:      log,
	}
	if err := jc.load(); err != nil {
		return nil, err
	}
	return jc, nil
}

// IsSeen checks if a URL has already been reported and has not expired.
func (jc *JobCache) IsSeen(url string) bool {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	return jc.isSeenLocked(url)
}

func (jc *JobCache) isSeenLocked(url string) bool {
	ts, ok := jc.seen[url]
	return ok && jc.now().Sub(time.UnixMilli(ts)) < Expiry
}

// Filter returns the jobs not seen before, in order.
func (jc *JobCache) Filter(jobs []models.Job) []models.Job {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	var fresh []models.Job
	for _, j := range jobs {
		if !jc.isSeenLocked(j.URL) {
			fresh = append(fresh, j)
		}
	}
	return fresh
}

// Mark records urls as seen now and saves the cache when anything changed.
func (jc *JobCache) Mark(urls []string) error {
	jc.mu.Lock()
	defer jc.mu.Unlock()

	now := jc.now().UnixMilli()
	changed := false
	for _, url := range urls {
		if !jc.isSeenLocked(url) {
			jc.seen[url] = now
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return jc.save()
}

// Len is the number of unexpired entries.
func (jc *JobCache) Len() int {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	n := 0
	for url := range jc.seen {
		if jc.isSeenLocked(url) {
			n++
		}
	}
	return n
}

// load reads the cache from disk, dropping expired entries.
// A corrupt file is logged and treated as empty.
func (jc *JobCache) load() error {
	data, err := os.ReadFile(jc.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", jc.filePath, err)
	}

	var entries []seenEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		jc.log.Warn().Err(err).Str("path", jc.filePath).Msg("⚠️ Failed to parse seen jobs, starting empty")
		return nil
	}

	loaded := 0
	for _, e := range entries {
		if jc.now().Sub(time.UnixMilli(e.Timestamp)) < Expiry {
			jc.seen[e.URL] = e.Timestamp
			loaded++
		}
	}
	jc.log.Info().Msgf("📋 Loaded %d previously seen jobs (%d expired and removed)", loaded, len(entries)-loaded)
	return nil
}

// save writes the unexpired entries to disk.
func (jc *JobCache) save() error {
	entries := make([]seenEntry, 0, len(jc.seen))
	for url, ts := range jc.seen {
		if jc.isSeenLocked(url) {
			entries = append(entries, seenEntry{URL: url, Timestamp: ts})
		}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal seen jobs: %w", err)
	}
	if err := os.WriteFile(jc.filePath, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", jc.filePath, err)
	}
	jc.log.Debug().Msgf("💾 Saved %d seen jobs to cache", len(entries))
	return nil
}
