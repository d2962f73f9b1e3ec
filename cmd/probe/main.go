// Command probe loads the first listing page of one source in a real browser and prints
// the extracted records as JSON. It is used to check selectors after a site redesign.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go-jd-crawler/internal/browser"
	"go-jd-crawler/internal/config"
	"go-jd-crawler/internal/crawler"
	"go-jd-crawler/internal/logger"
	"go-jd-crawler/internal/scraper"
	"go-jd-crawler/internal/scraper/saramin"
	"go-jd-crawler/internal/scraper/wanted"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the YAML config file")
	sourceName := flag.String("source", "wanted", "Source to probe (wanted, saramin)")
	headful := flag.Bool("headful", false, "Show the browser window")
	flag.Parse()

	log := logger.New("Probe")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to load config")
	}

	var src scraper.Scraper
	switch *sourceName {
	case "wanted":
		src = wanted.NewWantedScraper(cfg.Wanted, cfg.Browser.WaitTimeout)
	case "saramin":
		src = saramin.NewSaraminScraper(cfg.Saramin, cfg.Browser.WaitTimeout)
	default:
		log.Fatal().Str("source", *sourceName).Msg("❌ Unknown source")
	}

	session, err := browser.NewPlaywright(browser.LaunchOptions{
		Headless:          !*headful,
		UserAgent:         cfg.Browser.UserAgent,
		HideAutomation:    true,
		NavigationTimeout: cfg.Browser.NavigationTimeout,
		CookiesPath:       cfg.Browser.CookiesPath,
		ScreenshotDir:     cfg.Browser.ScreenshotDir,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to create Playwright")
	}
	defer session.Close()
	log.Info().Msg("✅ Playwright started")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	tab, err := session.NewTab(ctx)
	if err != nil {
		log.Error().Err(err).Msg("❌ Failed to create page")
		return
	}
	defer tab.Close()

	jobs, err := crawler.Collect(ctx, tab, src.Collector(), src.Extract, 1, log)
	if err != nil {
		log.Error().Err(err).Msg("❌ Probe failed")
		return
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jobs); err != nil {
		log.Error().Err(err).Msg("❌ Failed to encode result")
		return
	}
	fmt.Fprintf(os.Stderr, "✅ %d records extracted from %s\n", len(jobs), src.Name())
}
