package saramin

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"go-jd-crawler/internal/config"
	"go-jd-crawler/internal/crawler"
	"go-jd-crawler/internal/filter"
	"go-jd-crawler/internal/models"
	"go-jd-crawler/internal/scraper"
)

const (
	baseURL      = "https://www.saramin.co.kr"
	listSelector = "#recruit_info_list"
	cardSelector = "div.item_recruit"
)

var searchWords = map[string]string{
	"frontend": "프론트엔드",
	"backend":  "백엔드",
}

type SaraminScraper struct {
	cfg         config.SaraminConfig
	waitTimeout time.Duration
	keep        crawler.KeepFunc
}

var _ scraper.Scraper = (*SaraminScraper)(nil)

func NewSaraminScraper(cfg config.SaraminConfig, waitTimeout time.Duration) *SaraminScraper {
	return &SaraminScraper{
		cfg:         cfg,
		waitTimeout: waitTimeout,
		keep: filter.Keep(filter.Rules{
			ExcludeKeywords: cfg.ExcludeKeywords,
			MinYears:        cfg.MinYears,
			MaxYears:        cfg.MaxYears,
		}),
	}
}

func (s *SaraminScraper) Name() string {
	return "saramin"
}

func (s *SaraminScraper) Budget() int {
	return s.cfg.Pages
}

func (s *SaraminScraper) PageURL(page int) string {
	return fmt.Sprintf("%s/zf_user/search/recruit?searchword=%s&recruitPage=%d",
		baseURL, url.QueryEscape(searchWords[s.cfg.Category]), page)
}

// Collector waits on the list container rather than a card so a page past the last
// result renders empty instead of timing out.
func (s *SaraminScraper) Collector() crawler.PageCollector {
	return &crawler.PaginatedCollector{
		PageURL:      s.PageURL,
		WaitSelector: listSelector,
		WaitTimeout:  s.waitTimeout,
		Settle:       s.cfg.Settle,
	}
}

func (s *SaraminScraper) Extract(markup string) ([]models.Job, error) {
	return crawler.ExtractCards(markup, cardFields{}, s.keep)
}

type cardFields struct{}

func (cardFields) CardSelector() string { return cardSelector }

func (cardFields) Title(card *goquery.Selection) string {
	return crawler.Attr(card.Find("h2.job_tit a"), "title")
}

func (cardFields) Company(card *goquery.Selection) string {
	return crawler.Text(card.Find("strong.corp_name a"))
}

func (cardFields) ExperienceYears(card *goquery.Selection) string {
	return crawler.Text(card.Find("div.job_condition > span").Eq(1))
}

// Location joins the region anchors, e.g. "서울 강남구".
func (cardFields) Location(card *goquery.Selection) string {
	var parts []string
	card.Find("div.job_condition > span").First().Find("a").Each(func(_ int, a *goquery.Selection) {
		if t := strings.TrimSpace(a.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, " ")
}

func (cardFields) Deadline(card *goquery.Selection) string {
	return crawler.Text(card.Find("span.date"))
}

func (cardFields) URL(card *goquery.Selection) string {
	return canonicalURL(crawler.Attr(card.Find("h2.job_tit a"), "href"))
}

// canonicalURL keeps only rec_idx so the same posting reached from different pages
// carries the same url.
func canonicalURL(href string) string {
	if href == "" {
		return ""
	}
	abs := crawler.Absolute(baseURL, href)
	u, err := url.Parse(abs)
	if err != nil {
		return abs
	}
	id := u.Query().Get("rec_idx")
	if id == "" {
		return abs
	}
	u.RawQuery = url.Values{"rec_idx": {id}}.Encode()
	u.Fragment = ""
	return u.String()
}
