package crawler

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// cardExtractor reads the minimal card markup produced by cards().
type cardExtractor struct{}

func (cardExtractor) CardSelector() string { return "div.card" }
func (cardExtractor) Title(card *goquery.Selection) string {
	return Text(card.Find("a.title"))
}
func (cardExtractor) Company(card *goquery.Selection) string {
	return Text(card.Find("span.company"))
}
func (cardExtractor) ExperienceYears(card *goquery.Selection) string {
	return Text(card.Find("span.exp"))
}
func (cardExtractor) Location(card *goquery.Selection) string { return Text(card.Find("span.loc")) }
func (cardExtractor) Deadline(card *goquery.Selection) string { return "" }
func (cardExtractor) URL(card *goquery.Selection) string {
	return Absolute("https://jobs.example", Attr(card.Find("a.title"), "href"))
}

type card struct {
	id      int
	title   string
	company string
}

func fullCards(ids ...int) []card {
	out := make([]card, 0, len(ids))
	for _, id := range ids {
		out = append(out, card{id: id, title: fmt.Sprintf("Frontend %d", id), company: fmt.Sprintf("Company %d", id)})
	}
	return out
}

func cards(cs ...card) string {
	var b strings.Builder
	b.WriteString("<html><body><div id=\"list\">")
	for _, c := range cs {
		fmt.Fprintf(&b, `<div class="card"><a class="title" href="/wd/%d">%s</a>`, c.id, c.title)
		if c.company != "" {
			fmt.Fprintf(&b, `<span class="company">%s</span>`, c.company)
		}
		b.WriteString(`<span class="exp">경력 1-3년</span><span class="loc">서울</span></div>`)
	}
	b.WriteString("</div></body></html>")
	return b.String()
}

