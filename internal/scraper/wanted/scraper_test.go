package wanted

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jd-crawler/internal/browser/browsertest"
	"go-jd-crawler/internal/config"
	"go-jd-crawler/internal/models"
)

func card(id int, title, company, meta string) string {
	return fmt.Sprintf(`<div data-cy="job-card"><a href="/wd/%d" data-position-id="%d">
<div class="JobCard_JobCard__thumb__x1"><img src="thumb.png"></div>
<div class="JobCard_JobCard__body__AbC12"><span class="JobCard_JobCard__body__position__1">%s</span><span class="CompanyNameWithLocationPeriod">%s</span><span class="CompanyNameWithLocationPeriod">%s</span></div>
</a></div>`, id, id, title, company, meta)
}

func newScraper() *WantedScraper {
	cfg := config.Default().Wanted
	cfg.ExcludeKeywords = []string{"IOS", "안드로이드"}
	cfg.Settle = 0
	return NewWantedScraper(cfg, time.Second)
}

func TestWantedScraper_ListURL(t *testing.T) {
	s := newScraper()
	assert.Equal(t,
		"https://www.wanted.co.kr/wdlist/518/669?country=kr&job_sort=job.recommend_order&years=0&years=5&locations=all",
		s.ListURL())

	cfg := config.Default().Wanted
	cfg.Subcategory = "backend"
	cfg.MinYears, cfg.MaxYears = 2, 4
	assert.Contains(t, NewWantedScraper(cfg, time.Second).ListURL(), "/wdlist/518/872?")
	assert.Contains(t, NewWantedScraper(cfg, time.Second).ListURL(), "years=2&years=4")
}

func TestWantedScraper_Extract(t *testing.T) {
	markup := "<html><body>" +
		card(101, "프론트엔드 개발자", "우아한형제들", "서울 송파구 ∙ 경력 3-5년") +
		card(102, "iOS Developer", "토스", "서울 강남구 · 경력 2년 이상") +
		card(103, "Web Frontend", "", "서울 ∙ 신입") +
		card(104, "React Engineer", "당근", "경력 1-3년") +
		"</body></html>"

	jobs, err := newScraper().Extract(markup)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, models.Job{
		Title:           "프론트엔드 개발자",
		Company:         "우아한형제들",
		ExperienceYears: "경력 3-5년",
		Location:        "서울 송파구",
		URL:             "https://www.wanted.co.kr/wd/101",
	}, jobs[0])
	assert.Equal(t, "경력 1-3년", jobs[1].ExperienceYears)
	assert.Equal(t, "https://www.wanted.co.kr/wd/104", jobs[1].URL)
}

func TestSplitLocationExperience(t *testing.T) {
	tests := []struct {
		in, loc, exp string
	}{
		{"서울 강남구 ∙ 경력 3-5년", "서울 강남구", "경력 3-5년"},
		{"판교 · 신입", "판교", "신입"},
		{"부산 • 경력 1년", "부산", "경력 1년"},
		{"대전 / 경력무관", "대전", "경력무관"},
		{"원격 | 경력 2-4년 | 정규직", "원격", "경력 2-4년"},
		{"경력 5년", "경력 5년", "경력 5년"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			loc, exp := splitLocationExperience(tt.in)
			assert.Equal(t, tt.loc, loc)
			assert.Equal(t, tt.exp, exp)
		})
	}
}

func TestWantedScraper_CardWithoutAnchorIsDropped(t *testing.T) {
	markup := `<div><div class="JobCard_JobCard__body__x"><span>FE</span><span>Acme</span><span>서울 ∙ 신입</span></div></div>`
	jobs, err := newScraper().Extract(markup)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestWantedScraper_FetchDetail(t *testing.T) {
	job := models.Job{Title: "FE", Company: "Acme", URL: "https://www.wanted.co.kr/wd/1"}
	session := &browsertest.Session{Render: browsertest.Pages(map[string]string{
		job.URL: `<html><body><section><article class="JobDueTime_JobDueTime__3yzxa"><h2>마감일</h2><span>2026.11.30</span></article></section></body></html>`,
	})}
	tab, err := session.NewTab(context.Background())
	require.NoError(t, err)

	updated, err := newScraper().FetchDetail(context.Background(), tab, job)
	require.NoError(t, err)

	assert.Equal(t, "2026.11.30", updated.Deadline)
	assert.Empty(t, job.Deadline)
	assert.Equal(t, job.URL, updated.URL)
}

func TestWantedScraper_FetchDetailNoDeadline(t *testing.T) {
	job := models.Job{Title: "FE", Company: "Acme", URL: "https://www.wanted.co.kr/wd/2", Deadline: "상시"}
	session := &browsertest.Session{Render: browsertest.Pages(map[string]string{job.URL: "<html><body></body></html>"})}
	tab, err := session.NewTab(context.Background())
	require.NoError(t, err)

	updated, err := newScraper().FetchDetail(context.Background(), tab, job)
	require.NoError(t, err)
	assert.Equal(t, job, updated)
}

func TestWantedScraper_FetchDetailNavigationError(t *testing.T) {
	job := models.Job{Title: "FE", Company: "Acme", URL: "https://www.wanted.co.kr/wd/3"}
	session := &browsertest.Session{NavigateErr: func(string) error { return errors.New("net::ERR_ABORTED") }}
	tab, err := session.NewTab(context.Background())
	require.NoError(t, err)

	updated, err := newScraper().FetchDetail(context.Background(), tab, job)
	assert.Error(t, err)
	assert.Equal(t, job, updated)
}
