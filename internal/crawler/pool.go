package crawler

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"

	"go-jd-crawler/internal/browser"
	"go-jd-crawler/internal/logger"
	"go-jd-crawler/internal/models"
)

// FetchFunc is one independent per-record operation run on a pooled tab. It must not
// modify job; it returns a new record with the gathered fields merged in.
type FetchFunc func(ctx context.Context, tab browser.Tab, job models.Job) (models.Job, error)

// DelayRange is a randomized pause drawn uniformly from [Min, Max].
type DelayRange struct {
	Min time.Duration
	Max time.Duration
}

func (d DelayRange) pick() time.Duration {
	if d.Max <= d.Min {
		return d.Min
	}
	return d.Min + rand.N(d.Max-d.Min+1)
}

// Batch is the result of one pool run. Jobs is 1:1 with the input, in input order.
type Batch struct {
	Jobs     []models.Job
	Failures []Failure
}

// TabPool is a fixed set of long-lived tabs. Worker i owns tabs[i] for the pool's lifetime,
// so no tab is ever driven by two goroutines at once.
type TabPool struct {
	tabs  []browser.Tab
	delay DelayRange
	log   *logger.Logger
}

// NewTabPool opens exactly size tabs on session. Tabs are created one after another;
// if any creation fails the ones already opened are closed.
func NewTabPool(ctx context.Context, session browser.Session, size int, delay DelayRange, log *logger.Logger) (*TabPool, error) {
	if size < 1 {
		return nil, fmt.Errorf("tab pool size must be positive, got %d", size)
	}
	tabs := make([]browser.Tab, 0, size)
	for i := 0; i < size; i++ {
		tab, err := session.NewTab(ctx)
		if err != nil {
			for _, t := range tabs {
				_ = t.Close()
			}
			return nil, fmt.Errorf("open tab %d/%d: %w", i+1, size, err)
		}
		tabs = append(tabs, tab)
	}
	log.Debug().Int("tabs", size).Msg("🗂️ Tab pool ready")
	return &TabPool{tabs: tabs, delay: delay, log: log}, nil
}

func (p *TabPool) Size() int { return len(p.tabs) }

func (p *TabPool) Close() error {
	var errs []error
	for _, t := range p.tabs {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type outcome struct {
	index  int
	worker int
	job    models.Job
	err    error
}

// Run applies fetch to every job across the pool's tabs. A failed record is returned
// unchanged and reported in Failures; no failure aborts the batch. Records left
// unprocessed because ctx ended are also returned unchanged.
func (p *TabPool) Run(ctx context.Context, jobs []models.Job, fetch FetchFunc) Batch {
	out := make([]models.Job, len(jobs))
	copy(out, jobs)
	if len(jobs) == 0 {
		return Batch{Jobs: out}
	}

	queue := make(chan int)
	results := make(chan outcome, len(p.tabs))

	go func() {
		defer close(queue)
		for i := range jobs {
			select {
			case queue <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	var g errgroup.Group
	for w, tab := range p.tabs {
		g.Go(func() error {
			p.work(ctx, w, tab, jobs, queue, results, fetch)
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(results)
	}()

	var failures []Failure
	done := 0
	for r := range results {
		done++
		if r.err != nil {
			failures = append(failures, Failure{URL: jobs[r.index].URL, Worker: r.worker, Err: r.err})
			continue
		}
		out[r.index] = r.job
	}
	p.log.Info().Int("processed", done).Int("total", len(jobs)).Int("failed", len(failures)).Msg("📦 Batch finished")
	return Batch{Jobs: out, Failures: failures}
}

func (p *TabPool) work(ctx context.Context, worker int, tab browser.Tab, jobs []models.Job, queue <-chan int, results chan<- outcome, fetch FetchFunc) {
	for i := range queue {
		job := jobs[i]
		updated, err := fetchOne(ctx, tab, job, fetch)
		if err != nil {
			p.log.Warn().Int("worker", worker).Str("url", job.URL).Err(err).Msg("⚠️ Record failed, keeping original")
			results <- outcome{index: i, worker: worker, job: job, err: err}
		} else {
			p.log.Debug().Int("worker", worker).Str("url", job.URL).Msg("✅ Record done")
			results <- outcome{index: i, worker: worker, job: updated}
		}

		// pause between releasing the tab and taking the next record
		_ = browser.Pause(ctx, p.delay.pick())
	}
}

func fetchOne(ctx context.Context, tab browser.Tab, job models.Job, fetch FetchFunc) (updated models.Job, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	updated, err = fetch(ctx, tab, job)
	if err != nil {
		return job, err
	}
	if updated.URL != job.URL {
		return job, fmt.Errorf("fetch changed record url %q to %q", job.URL, updated.URL)
	}
	return updated, nil
}

// DetailFetcher is implemented by sources whose detail pages carry extra fields.
type DetailFetcher interface {
	FetchDetail(ctx context.Context, tab browser.Tab, job models.Job) (models.Job, error)
}
