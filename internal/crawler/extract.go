package crawler

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"go-jd-crawler/internal/models"
)

// FieldExtractor is a source's strategy for turning one listing card into record fields.
// Every method returns "" when the field is not present on the card.
type FieldExtractor interface {
	CardSelector() string
	Title(card *goquery.Selection) string
	Company(card *goquery.Selection) string
	ExperienceYears(card *goquery.Selection) string
	Location(card *goquery.Selection) string
	Deadline(card *goquery.Selection) string
	URL(card *goquery.Selection) string
}

// KeepFunc decides whether a complete candidate enters the engine.
type KeepFunc func(models.Job) bool

// ExtractFunc turns one rendered snapshot into candidate records. It must be pure.
type ExtractFunc func(markup string) ([]models.Job, error)

// ExtractCards parses markup and maps every card matched by fx to a Job.
// Candidates missing a mandatory field are dropped silently, as are those keep rejects.
func ExtractCards(markup string, fx FieldExtractor, keep KeepFunc) ([]models.Job, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	var jobs []models.Job
	doc.Find(fx.CardSelector()).Each(func(_ int, card *goquery.Selection) {
		job := models.Job{
			Title:           fx.Title(card),
			Company:         fx.Company(card),
			ExperienceYears: fx.ExperienceYears(card),
			Location:        fx.Location(card),
			Deadline:        fx.Deadline(card),
			URL:             fx.URL(card),
		}
		if !job.Valid() {
			return
		}
		if keep != nil && !keep(job) {
			return
		}
		jobs = append(jobs, job)
	})
	return jobs, nil
}

// Text returns the trimmed text of the first matched element.
func Text(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.First().Text())
}

// Attr returns the trimmed attribute of the first matched element.
func Attr(sel *goquery.Selection, name string) string {
	v, _ := sel.First().Attr(name)
	return strings.TrimSpace(v)
}

// Absolute joins href onto base unless it already carries a scheme.
func Absolute(base, href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return strings.TrimRight(base, "/") + href
}
