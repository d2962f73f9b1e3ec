// Package scraper defines what a listing source provides to the crawl engine.
package scraper

import (
	"go-jd-crawler/internal/crawler"
	"go-jd-crawler/internal/models"
)

// Scraper defines the interface that all listing sources must implement.
type Scraper interface {
	// Name is the source name (wanted, saramin, ...)
	Name() string

	// Collector returns how the source's result list is traversed.
	Collector() crawler.PageCollector

	// Extract parses one rendered snapshot into candidate records.
	Extract(markup string) ([]models.Job, error)

	// Budget is the page/scroll budget, 0 for unbounded.
	Budget() int
}

// Separators used by sites that pack several fields into one text node.
const Separators = "∙·•/|"
