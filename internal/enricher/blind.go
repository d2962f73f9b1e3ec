package enricher

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"go-jd-crawler/internal/browser"
)

const blindBaseURL = "https://www.teamblind.com/kr/company"

var (
	ratingValueRegex = regexp.MustCompile(`"ratingValue"\s*:\s*"?([0-9.]+)"?`)
	ratingCountRegex = regexp.MustCompile(`"ratingCount"\s*:\s*"?(\d+)"?`)
)

// Blind reads company ratings from teamblind.com review pages.
type Blind struct {
	WaitTimeout time.Duration
	// Settle lets client-side scripts finish before the markup is read.
	Settle time.Duration
}

var _ Enricher = (*Blind)(nil)

func (b *Blind) Name() string { return "blind" }

func (b *Blind) Normalize(company string) string { return NormalizeCompany(company) }

func (b *Blind) ProfileURL(normalized string) string {
	return fmt.Sprintf("%s/%s/reviews", blindBaseURL, url.PathEscape(normalized))
}

func (b *Blind) FetchRating(ctx context.Context, tab browser.Tab, profileURL string) (Rating, error) {
	if err := tab.Navigate(ctx, profileURL); err != nil {
		return Rating{}, err
	}
	if err := tab.WaitFor(ctx, "body", b.WaitTimeout); err != nil {
		return Rating{}, err
	}
	if err := browser.Pause(ctx, b.Settle); err != nil {
		return Rating{}, err
	}
	markup, err := tab.Content(ctx)
	if err != nil {
		return Rating{}, err
	}
	return ParseBlindRating(markup)
}

// ParseBlindRating reads the EmployerAggregateRating ld+json block of a review page.
// A page without one yields an empty Rating.
func ParseBlindRating(markup string) (Rating, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return Rating{}, fmt.Errorf("parse review page: %w", err)
	}

	var r Rating
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		data := s.Text()
		if !strings.Contains(data, "EmployerAggregateRating") {
			return true
		}
		if m := ratingValueRegex.FindStringSubmatch(data); m != nil {
			r.Value = m[1]
		}
		if m := ratingCountRegex.FindStringSubmatch(data); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				r.ReviewCount = &n
			}
		}
		return false
	})
	return r, nil
}
