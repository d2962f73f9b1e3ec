package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"go-jd-crawler/internal/browser"
	"go-jd-crawler/internal/config"
	"go-jd-crawler/internal/crawler"
	"go-jd-crawler/internal/dedup"
	"go-jd-crawler/internal/enricher"
	"go-jd-crawler/internal/logger"
	"go-jd-crawler/internal/models"
	"go-jd-crawler/internal/persist"
	"go-jd-crawler/internal/pipeline"
	"go-jd-crawler/internal/reporter"
	"go-jd-crawler/internal/scraper"
	"go-jd-crawler/internal/scraper/saramin"
	"go-jd-crawler/internal/scraper/wanted"
)

// source is one configured listing site.
type source struct {
	scraper scraper.Scraper
	cfg     config.SourceConfig
	// details is nil when the listing already carries every field.
	details crawler.DetailFetcher
}

// deps are the shared collaborators of every pipeline run.
type deps struct {
	cfg      *config.Config
	session  browser.Session
	cache    enricher.Cache
	db       *persist.PostgresSink
	reporter *reporter.TelegramReporter
	seen     *dedup.JobCache
	log      *logger.Logger
}

func run(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.New("Crawler")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if noEnrich {
		cfg.Enrich.Enabled = false
	}
	log.Info().Str("config", configPath).Msg("🔧 Config loaded")

	sources, err := selectSources(cfg, sourceArgs)
	if err != nil {
		return err
	}

	d := &deps{cfg: cfg, log: log}
	closeDeps, err := d.open(ctx)
	defer closeDeps()
	if err != nil {
		return err
	}

	session, err := browser.NewPlaywright(browser.LaunchOptions{
		Headless:          cfg.Browser.Headless,
		UserAgent:         cfg.Browser.UserAgent,
		HideAutomation:    true,
		NavigationTimeout: cfg.Browser.NavigationTimeout,
		CookiesPath:       cfg.Browser.CookiesPath,
		ScreenshotDir:     cfg.Browser.ScreenshotDir,
	})
	if err != nil {
		return fmt.Errorf("failed to init playwright: %w", err)
	}
	defer session.Close()
	d.session = session
	log.Info().Msg("✅ Browser initialized successfully!")

	var failed []error
	for _, src := range sources {
		if err := d.runSource(ctx, src); err != nil {
			log.Error().Err(err).Str("source", src.scraper.Name()).Msg("❌ Pipeline failed")
			d.notifyError(err)
			failed = append(failed, err)
		}
	}
	return errors.Join(failed...)
}

func selectSources(cfg *config.Config, names []string) ([]source, error) {
	w := wanted.NewWantedScraper(cfg.Wanted, cfg.Browser.WaitTimeout)
	all := []source{
		{scraper: w, cfg: cfg.Wanted.SourceConfig, details: w},
		{scraper: saramin.NewSaraminScraper(cfg.Saramin, cfg.Browser.WaitTimeout), cfg: cfg.Saramin.SourceConfig},
	}

	var out []source
	for _, s := range all {
		if (len(names) == 0 && s.cfg.Enabled) || slices.Contains(names, s.scraper.Name()) {
			out = append(out, s)
		}
	}
	for _, n := range names {
		if !slices.ContainsFunc(all, func(s source) bool { return s.scraper.Name() == n }) {
			return nil, fmt.Errorf("unknown source %q", n)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("no source enabled")
	}
	return out, nil
}

// open connects the optional integrations. The returned func closes whatever was opened,
// even when err is non-nil.
func (d *deps) open(ctx context.Context) (func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	cfg := d.cfg

	switch cfg.Enrich.Cache {
	case "redis":
		rc, err := enricher.NewRedisCache(ctx, cfg.RedisAddr, "jd-crawler:rating:", cfg.Enrich.CacheTTL)
		if err != nil {
			return closeAll, err
		}
		closers = append(closers, func() { _ = rc.Close() })
		d.cache = rc
	default:
		d.cache = enricher.NewMemoryCache(cfg.Enrich.CacheTTL)
	}

	if cfg.DatabaseURL != "" {
		db, err := persist.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return closeAll, err
		}
		closers = append(closers, db.Close)
		if err := db.EnsureSchema(ctx); err != nil {
			return closeAll, err
		}
		d.db = db
		d.log.Info().Msg("🗄️ Database sink enabled")
	}

	if cfg.TelegramEnabled() {
		r, err := reporter.NewTelegramReporter(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			return closeAll, err
		}
		d.reporter = r
		seen, err := dedup.NewJobCache(cfg.CachePath, d.log.Component("Dedup"))
		if err != nil {
			return closeAll, err
		}
		d.seen = seen
		d.log.Info().Msg("🤖 Telegram Bot initialized.")
	}
	return closeAll, nil
}

func (d *deps) runSource(ctx context.Context, src source) error {
	name := src.scraper.Name()
	log := d.log.Component(name)
	p := pipeline.New(d.session, delayRange(d.cfg.Pool.Delay), log)

	csv := persist.NewCSVSink(filepath.Join(d.cfg.OutputDir, src.cfg.Output))
	sinks := []persist.Sink{csv}
	if d.db != nil {
		sinks = append(sinks, d.db)
	}
	d.recordRun(ctx, p.Run(pipeline.State{Source: name}), models.RunStarted)

	st, err := p.Crawl(ctx, src.scraper)
	if err != nil {
		d.recordRun(ctx, p.Run(st), models.RunFailed)
		return err
	}
	d.checkpoint(ctx, p, st, csv)

	if src.details != nil {
		st = p.FetchDetails(ctx, st, src.details, src.cfg.DetailWorkers)
		d.checkpoint(ctx, p, st, csv)
	}

	if d.cfg.Enrich.Enabled {
		blind := &enricher.Blind{WaitTimeout: d.cfg.Browser.WaitTimeout, Settle: d.cfg.Enrich.Settle}
		st = p.Enrich(ctx, st, blind, pipeline.EnrichOptions{
			Workers: d.cfg.Enrich.Workers,
			Delay:   delayRange(d.cfg.Enrich.Delay),
			Cache:   d.cache,
		})
	}
	d.checkpoint(ctx, p, st, sinks...)
	d.recordRun(ctx, p.Run(st), "")

	d.notify(st)
	return nil
}

// checkpoint persists st; failures are logged by the pipeline and never stop the run.
func (d *deps) checkpoint(ctx context.Context, p *pipeline.Pipeline, st pipeline.State, sinks ...persist.Sink) {
	_ = p.Persist(ctx, st, sinks...)
}

// recordRun writes the run row when the database sink is enabled. A non-empty status
// overrides the one derived from the state.
func (d *deps) recordRun(ctx context.Context, run models.Run, status models.RunStatus) {
	if d.db == nil {
		return
	}
	if status != "" {
		run.Status = status
	}
	if err := d.db.RecordRun(ctx, run); err != nil {
		d.log.Warn().Err(err).Str("run_id", run.ID).Msg("⚠️ Failed to record run")
	}
}

// notify sends the postings not reported in earlier runs, then a run summary.
func (d *deps) notify(st pipeline.State) {
	if d.reporter == nil {
		return
	}
	fresh := d.seen.Filter(st.Jobs)
	d.log.Info().Int("total", len(st.Jobs)).Int("new", len(fresh)).Msg("🔍 Deduplication")

	var sent []string
	for _, job := range fresh {
		if err := d.reporter.SendJob(st.Source, job); err != nil {
			d.log.Warn().Err(err).Str("url", job.URL).Msg("⚠️ Failed to send job to Telegram")
			continue
		}
		sent = append(sent, job.URL)
		//1 second delay to avoid 429
		time.Sleep(time.Second)
	}
	if err := d.seen.Mark(sent); err != nil {
		d.log.Warn().Err(err).Msg("⚠️ Failed to save seen jobs")
	}

	rated := 0
	for _, j := range st.Jobs {
		if j.Rating != "" {
			rated++
		}
	}
	summary := reporter.Summary{Source: st.Source, RunID: st.RunID, Total: len(st.Jobs), New: len(sent), Rated: rated, Degraded: st.Degraded}
	if err := d.reporter.SendSummary(summary); err != nil {
		d.log.Warn().Err(err).Msg("⚠️ Failed to send summary")
	}
}

func (d *deps) notifyError(err error) {
	if d.reporter == nil {
		return
	}
	if sendErr := d.reporter.SendError(err); sendErr != nil {
		d.log.Warn().Err(sendErr).Msg("⚠️ Failed to send error to Telegram")
	}
}

func delayRange(r config.DelayRange) crawler.DelayRange {
	return crawler.DelayRange{Min: r.Min, Max: r.Max}
}
