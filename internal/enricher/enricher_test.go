package enricher

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jd-crawler/internal/browser/browsertest"
	"go-jd-crawler/internal/crawler"
	"go-jd-crawler/internal/logger"
	"go-jd-crawler/internal/models"
)

func reviewPage(rating string, count int) string {
	return fmt.Sprintf(`<html><head>
<script type="application/ld+json">{"@type":"Organization","name":"x"}</script>
<script type="application/ld+json">{"@context":"https://schema.org","@type":"EmployerAggregateRating","ratingValue":"%s","ratingCount":%d,"bestRating":"5"}</script>
</head><body>reviews</body></html>`, rating, count)
}

func TestNormalizeCompany(t *testing.T) {
	tests := []struct {
		in, expected string
	}{
		{"Acme Corp (서울)", "Acme Corp"},
		{"(주)우아한형제들", "우아한형제들"},
		{"㈜카카오", "카카오"},
		{"네이버（주）", "네이버"},
		{"Foo (A) Bar (B)", "Foo Bar"},
		{"  Toss   Bank ", "Toss Bank"},
		{"Unclosed (paren", "Unclosed (paren"},
		{"(주)", ""},
		{"Plain", "Plain"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := NormalizeCompany(tt.in)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, got, NormalizeCompany(got), "normalize must be idempotent")
		})
	}
}

func TestBlind_ProfileURL(t *testing.T) {
	b := &Blind{}
	assert.Equal(t, "https://www.teamblind.com/kr/company/Acme%20Corp/reviews", b.ProfileURL("Acme Corp"))
	assert.Equal(t, "https://www.teamblind.com/kr/company/%EC%B9%B4%EC%B9%B4%EC%98%A4/reviews", b.ProfileURL("카카오"))
	assert.Equal(t, b.ProfileURL("Acme"), b.ProfileURL("Acme"))
}

func TestParseBlindRating(t *testing.T) {
	r, err := ParseBlindRating(reviewPage("3.4", 128))
	require.NoError(t, err)
	assert.Equal(t, "3.4", r.Value)
	require.NotNil(t, r.ReviewCount)
	assert.Equal(t, 128, *r.ReviewCount)

	r, err = ParseBlindRating(`<script type="application/ld+json">{"@type":"EmployerAggregateRating","ratingValue":4.1}</script>`)
	require.NoError(t, err)
	assert.Equal(t, "4.1", r.Value)
	assert.Nil(t, r.ReviewCount)

	r, err = ParseBlindRating(`<html><body>회사를 찾을 수 없습니다</body></html>`)
	require.NoError(t, err)
	assert.Equal(t, Rating{}, r)

	r, err = ParseBlindRating(`<script type="application/ld+json">{"@type":"Organization","ratingValue":"2.0"}</script>`)
	require.NoError(t, err)
	assert.Equal(t, Rating{}, r)
}

func newPool(t *testing.T, s *browsertest.Session, size int) *crawler.TabPool {
	t.Helper()
	pool, err := crawler.NewTabPool(context.Background(), s, size, crawler.DelayRange{}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })
	return pool
}

func TestRun_AttachesRatings(t *testing.T) {
	b := &Blind{WaitTimeout: time.Second}
	s := &browsertest.Session{Render: browsertest.Pages(map[string]string{
		b.ProfileURL("Acme Corp"): reviewPage("3.4", 10),
		b.ProfileURL("Globex"):    `<html><body>no rating</body></html>`,
	})}
	jobs := []models.Job{
		{Title: "FE", Company: "Acme Corp (서울)", URL: "https://jobs.example/1"},
		{Title: "BE", Company: "Globex", URL: "https://jobs.example/2"},
		{Title: "BE", Company: "(주)", URL: "https://jobs.example/3"},
	}

	batch := Run(context.Background(), newPool(t, s, 2), b, NewMemoryCache(0), jobs, logger.Nop())

	require.Len(t, batch.Jobs, 3)
	assert.Empty(t, batch.Failures)
	assert.Equal(t, "3.4", batch.Jobs[0].Rating)
	require.NotNil(t, batch.Jobs[0].ReviewCount)
	assert.Equal(t, 10, *batch.Jobs[0].ReviewCount)
	assert.Equal(t, "Acme Corp (서울)", batch.Jobs[0].Company)
	assert.Equal(t, jobs[1], batch.Jobs[1])
	assert.Equal(t, jobs[2], batch.Jobs[2])
	assert.Empty(t, jobs[0].Rating, "input must not be modified")
}

func TestRun_TransportFailureKeepsRecord(t *testing.T) {
	b := &Blind{WaitTimeout: time.Second}
	s := &browsertest.Session{
		Render: browsertest.Pages(map[string]string{b.ProfileURL("Acme"): reviewPage("3.0", 1)}),
		NavigateErr: func(url string) error {
			if url == b.ProfileURL("Initech") {
				return errors.New("net::ERR_TIMED_OUT")
			}
			return nil
		},
	}
	jobs := []models.Job{
		{Title: "FE", Company: "Acme", URL: "https://jobs.example/1"},
		{Title: "BE", Company: "Initech", URL: "https://jobs.example/2"},
	}

	batch := Run(context.Background(), newPool(t, s, 2), b, nil, jobs, logger.Nop())

	assert.Equal(t, "3.0", batch.Jobs[0].Rating)
	assert.Equal(t, jobs[1], batch.Jobs[1])
	require.Len(t, batch.Failures, 1)
	assert.Equal(t, jobs[1].URL, batch.Failures[0].URL)
}

func TestRun_SameCompanyFetchedOnce(t *testing.T) {
	b := &Blind{WaitTimeout: time.Second}
	s := &browsertest.Session{
		Render:  browsertest.Pages(map[string]string{b.ProfileURL("Acme"): reviewPage("4.0", 3)}),
		Latency: 2 * time.Millisecond,
	}
	jobs := make([]models.Job, 0, 8)
	for i := 0; i < 8; i++ {
		jobs = append(jobs, models.Job{Title: "FE", Company: "Acme (판교)", URL: fmt.Sprintf("https://jobs.example/%d", i)})
	}

	batch := Run(context.Background(), newPool(t, s, 3), b, NewMemoryCache(time.Hour), jobs, logger.Nop())

	for _, j := range batch.Jobs {
		assert.Equal(t, "4.0", j.Rating)
	}
	navigations := 0
	for _, tab := range s.Tabs() {
		navigations += len(tab.Navigations())
	}
	assert.Equal(t, 1, navigations)
	assert.Equal(t, 0, s.Violations())
}

func TestRun_CacheHitSkipsBrowser(t *testing.T) {
	cache := NewMemoryCache(time.Hour)
	n := 42
	require.NoError(t, cache.Set(context.Background(), "Acme", Rating{Value: "3.9", ReviewCount: &n}))
	s := &browsertest.Session{}

	batch := Run(context.Background(), newPool(t, s, 1), &Blind{WaitTimeout: time.Second}, cache,
		[]models.Job{{Title: "FE", Company: "Acme", URL: "https://jobs.example/1"}}, logger.Nop())

	assert.Equal(t, "3.9", batch.Jobs[0].Rating)
	assert.Empty(t, s.Tabs()[0].Navigations())
}
