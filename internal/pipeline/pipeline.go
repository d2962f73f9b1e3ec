// Package pipeline sequences crawl, detail fetch, enrichment and persistence over one
// evolving record set.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"go-jd-crawler/internal/browser"
	"go-jd-crawler/internal/crawler"
	"go-jd-crawler/internal/enricher"
	"go-jd-crawler/internal/logger"
	"go-jd-crawler/internal/models"
	"go-jd-crawler/internal/persist"
	"go-jd-crawler/internal/scraper"
)

// State is the record set passed from stage to stage. Stages return a new State and never
// modify the one they were given.
type State struct {
	Source string
	RunID  string
	Jobs   []models.Job
	// Degraded lists what went wrong in stages that completed partially or were skipped.
	Degraded []string
}

func (s State) withJobs(jobs []models.Job) State {
	out := s
	out.Jobs = jobs
	out.Degraded = append([]string(nil), s.Degraded...)
	return out
}

func (s State) degrade(note string) State {
	out := s
	out.Degraded = append(append([]string(nil), s.Degraded...), note)
	return out
}

// Status summarizes how the run went so far.
func (s State) Status() models.RunStatus {
	if len(s.Degraded) > 0 {
		return models.RunDegraded
	}
	return models.RunCompleted
}

// Pipeline runs the stages for one source. Stages are called one after another; only the
// per-record work inside a stage runs in parallel.
type Pipeline struct {
	session browser.Session
	delay   crawler.DelayRange
	log     *logger.Logger
	runID   string
	started time.Time
}

// New creates a pipeline with a fresh run id. delay is the pause taken between records
// on a detail-fetch tab.
func New(session browser.Session, delay crawler.DelayRange, log *logger.Logger) *Pipeline {
	return &Pipeline{session: session, delay: delay, log: log, runID: uuid.NewString(), started: time.Now()}
}

func (p *Pipeline) RunID() string { return p.runID }

// Run returns the run row describing st.
func (p *Pipeline) Run(st State) models.Run {
	return models.Run{ID: p.runID, Source: st.Source, Status: st.Status(), JobCount: len(st.Jobs), StartedAt: p.started}
}

// Crawl collects the listing of src. It fails only when no tab can be opened or the first
// listing page cannot be loaded; a later page failure keeps what was collected.
func (p *Pipeline) Crawl(ctx context.Context, src scraper.Scraper) (State, error) {
	st := State{Source: src.Name(), RunID: p.runID}
	p.log.Info().Str("source", st.Source).Str("run_id", p.runID).Msg("🕷️ Crawl started")

	tab, err := p.session.NewTab(ctx)
	if err != nil {
		return st, fmt.Errorf("crawl %s: open tab: %w", st.Source, err)
	}
	defer tab.Close()

	jobs, err := crawler.Collect(ctx, tab, src.Collector(), src.Extract, src.Budget(), p.log)
	if err != nil {
		var adv *crawler.AdvanceError
		if !errors.As(err, &adv) {
			return st, fmt.Errorf("crawl %s: %w", st.Source, err)
		}
		p.log.Warn().Err(err).Int("total", len(jobs)).Msg("⚠️ Crawl stopped early, keeping collected records")
		st = st.degrade(fmt.Sprintf("crawl stopped at page %d: %v", adv.Page, adv.Err))
	}

	p.log.Info().Int("total", len(jobs)).Msgf("✅ Collected %d %s postings", len(jobs), st.Source)
	return st.withJobs(jobs), nil
}

// FetchDetails fills in detail-page fields on workers tabs. Any failure leaves the
// affected records, or the whole state, unchanged.
func (p *Pipeline) FetchDetails(ctx context.Context, st State, fetcher crawler.DetailFetcher, workers int) State {
	if len(st.Jobs) == 0 {
		return st
	}
	p.log.Info().Int("total", len(st.Jobs)).Int("workers", workers).Msg("🔎 Fetching details")

	pool, err := crawler.NewTabPool(ctx, p.session, workers, p.delay, p.log)
	if err != nil {
		p.log.Warn().Err(err).Msg("⚠️ Detail stage skipped")
		return st.degrade(fmt.Sprintf("details skipped: %v", err))
	}
	defer pool.Close()

	batch := pool.Run(ctx, st.Jobs, fetcher.FetchDetail)
	return p.apply(st, "details", batch)
}

// EnrichOptions configure one enrichment pass.
type EnrichOptions struct {
	Workers int
	Delay   crawler.DelayRange
	// Cache may be nil.
	Cache enricher.Cache
}

// Enrich attaches ratings with e. It follows the same fail-soft contract as FetchDetails.
func (p *Pipeline) Enrich(ctx context.Context, st State, e enricher.Enricher, opts EnrichOptions) State {
	if len(st.Jobs) == 0 {
		return st
	}
	p.log.Info().Str("enricher", e.Name()).Int("total", len(st.Jobs)).Int("workers", opts.Workers).Msg("⭐ Enrichment started")

	pool, err := crawler.NewTabPool(ctx, p.session, opts.Workers, opts.Delay, p.log)
	if err != nil {
		p.log.Warn().Err(err).Msg("⚠️ Enrichment skipped")
		return st.degrade(fmt.Sprintf("%s enrichment skipped: %v", e.Name(), err))
	}
	defer pool.Close()

	batch := enricher.Run(ctx, pool, e, opts.Cache, st.Jobs, p.log)
	return p.apply(st, e.Name(), batch)
}

func (p *Pipeline) apply(st State, stage string, batch crawler.Batch) State {
	if len(batch.Jobs) != len(st.Jobs) {
		// the pool guarantees 1:1 output; anything else means the stage result is unusable
		p.log.Error().Int("in", len(st.Jobs)).Int("out", len(batch.Jobs)).Msgf("❌ %s stage returned a different record count", stage)
		return st.degrade(fmt.Sprintf("%s discarded: record count changed", stage))
	}
	next := st.withJobs(batch.Jobs)
	if n := len(batch.Failures); n > 0 {
		next = next.degrade(fmt.Sprintf("%s: %d of %d records failed", stage, n, len(st.Jobs)))
	}
	p.log.Info().Int("total", len(batch.Jobs)).Int("failed", len(batch.Failures)).Msgf("✅ %s stage finished", stage)
	return next
}

// Persist writes st to every sink. A failing sink does not stop the others and never
// halts the pipeline; the joined error is returned for the caller to report.
func (p *Pipeline) Persist(ctx context.Context, st State, sinks ...persist.Sink) error {
	var errs []error
	for _, sink := range sinks {
		if err := sink.Write(ctx, st.Source, p.runID, st.Jobs); err != nil {
			p.log.Error().Err(err).Str("sink", sink.Name()).Msg("❌ Persist failed")
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
			continue
		}
		p.log.Info().Str("sink", sink.Name()).Int("total", len(st.Jobs)).Msg("💾 Saved")
	}
	return errors.Join(errs...)
}
