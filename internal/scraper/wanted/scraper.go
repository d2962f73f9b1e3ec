package wanted

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"go-jd-crawler/internal/browser"
	"go-jd-crawler/internal/config"
	"go-jd-crawler/internal/crawler"
	"go-jd-crawler/internal/filter"
	"go-jd-crawler/internal/models"
	"go-jd-crawler/internal/scraper"
)

const (
	baseURL      = "https://www.wanted.co.kr"
	cardSelector = `div[class*="JobCard_JobCard__body__"]`
	dueSelector  = `article[class*="JobDueTime"] span`
)

var categoryCodes = map[string]int{
	"development": 518,
}

var subcategoryCodes = map[string]int{
	"frontend": 669,
	"backend":  872,
	"web":      873,
	"android":  677,
	"ios":      678,
}

type WantedScraper struct {
	cfg         config.WantedConfig
	waitTimeout time.Duration
	keep        crawler.KeepFunc
}

var (
	_ scraper.Scraper       = (*WantedScraper)(nil)
	_ crawler.DetailFetcher = (*WantedScraper)(nil)
)

func NewWantedScraper(cfg config.WantedConfig, waitTimeout time.Duration) *WantedScraper {
	return &WantedScraper{
		cfg:         cfg,
		waitTimeout: waitTimeout,
		// years are filtered by the listing url itself
		keep: filter.Keep(filter.Rules{ExcludeKeywords: cfg.ExcludeKeywords}),
	}
}

func (s *WantedScraper) Name() string {
	return "wanted"
}

func (s *WantedScraper) Budget() int {
	return s.cfg.Pages
}

// ListURL is the recommended-order listing for the configured category and years.
func (s *WantedScraper) ListURL() string {
	return fmt.Sprintf("%s/wdlist/%d/%d?country=kr&job_sort=job.recommend_order&years=%d&years=%d&locations=all",
		baseURL, categoryCodes[s.cfg.Category], subcategoryCodes[s.cfg.Subcategory], s.cfg.MinYears, s.cfg.MaxYears)
}

func (s *WantedScraper) Collector() crawler.PageCollector {
	return &crawler.InfiniteScrollCollector{
		URL:          s.ListURL(),
		WaitSelector: cardSelector,
		WaitTimeout:  s.waitTimeout,
		Settle:       s.cfg.Settle,
	}
}

func (s *WantedScraper) Extract(markup string) ([]models.Job, error) {
	return crawler.ExtractCards(markup, cardFields{}, s.keep)
}

// FetchDetail reads the application deadline from the posting page.
func (s *WantedScraper) FetchDetail(ctx context.Context, tab browser.Tab, job models.Job) (models.Job, error) {
	if err := tab.Navigate(ctx, job.URL); err != nil {
		return job, err
	}
	if err := tab.WaitFor(ctx, "body", s.waitTimeout); err != nil {
		return job, err
	}
	markup, err := tab.Content(ctx)
	if err != nil {
		return job, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return job, fmt.Errorf("parse detail page: %w", err)
	}
	return job.WithDetail(models.Detail{Deadline: crawler.Text(doc.Find(dueSelector))}), nil
}

// cardFields reads a JobCard body: spans hold title, company and "location ∙ experience".
type cardFields struct{}

func (cardFields) CardSelector() string { return cardSelector }

func (cardFields) Title(card *goquery.Selection) string {
	return crawler.Text(card.Find("span").Eq(0))
}

func (cardFields) Company(card *goquery.Selection) string {
	return crawler.Text(card.Find("span").Eq(1))
}

func (cardFields) ExperienceYears(card *goquery.Selection) string {
	_, exp := splitLocationExperience(crawler.Text(card.Find("span").Eq(2)))
	return exp
}

func (cardFields) Location(card *goquery.Selection) string {
	loc, _ := splitLocationExperience(crawler.Text(card.Find("span").Eq(2)))
	return loc
}

func (cardFields) Deadline(*goquery.Selection) string { return "" }

// URL comes from the anchor wrapping the card body.
func (cardFields) URL(card *goquery.Selection) string {
	parent := card.Parent()
	if goquery.NodeName(parent) != "a" {
		return ""
	}
	return crawler.Absolute(baseURL, crawler.Attr(parent, "href"))
}

// splitLocationExperience splits "서울 강남구 ∙ 경력 3-5년". Without a separator the
// whole text is used for both fields.
func splitLocationExperience(text string) (location, experience string) {
	i := strings.IndexAny(text, scraper.Separators)
	if i < 0 {
		return text, text
	}
	location = strings.TrimSpace(text[:i])
	_, size := utf8.DecodeRuneInString(text[i:])
	rest := text[i+size:]
	if j := strings.IndexAny(rest, scraper.Separators); j >= 0 {
		rest = rest[:j]
	}
	return location, strings.TrimSpace(rest)
}

