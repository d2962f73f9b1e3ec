package saramin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jd-crawler/internal/browser/browsertest"
	"go-jd-crawler/internal/config"
	"go-jd-crawler/internal/crawler"
	"go-jd-crawler/internal/logger"
	"go-jd-crawler/internal/models"
)

const listingPage = `<html><body><div id="recruit_info_list"><div class="content">
<div class="item_recruit">
  <div class="area_job">
    <h2 class="job_tit"><a href="/zf_user/jobs/relay/view?view_type=search&rec_idx=49000001&location=ts&searchword=x" title="프론트엔드 개발자 (React)"><span>프론트엔드</span> 개발자</a></h2>
    <div class="job_date"><span class="date">~ 11/15(토)</span></div>
    <div class="job_condition">
      <span><a href="#">서울</a> <a href="#">강남구</a></span>
      <span>경력 1~3년</span>
      <span>대졸↑</span>
    </div>
  </div>
  <div class="area_corp"><strong class="corp_name"><a href="/zf_user/company-info">(주)에이비씨</a></strong></div>
</div>
<div class="item_recruit">
  <div class="area_job">
    <h2 class="job_tit"><a href="/zf_user/jobs/relay/view?rec_idx=49000002" title="iOS 앱 개발자"></a></h2>
    <div class="job_condition"><span><a href="#">경기</a></span><span>신입</span></div>
  </div>
  <div class="area_corp"><strong class="corp_name"><a href="#">모바일컴퍼니</a></strong></div>
</div>
<div class="item_recruit">
  <div class="area_job">
    <h2 class="job_tit"><a href="/zf_user/jobs/relay/view?rec_idx=49000003" title="시니어 프론트엔드 리드"></a></h2>
    <div class="job_condition"><span><a href="#">판교</a></span><span>경력 10년↑</span></div>
  </div>
  <div class="area_corp"><strong class="corp_name"><a href="#">빅테크</a></strong></div>
</div>
<div class="item_recruit">
  <div class="area_job">
    <h2 class="job_tit"><a href="/zf_user/jobs/relay/view?rec_idx=49000004" title="웹 퍼블리셔"></a></h2>
    <div class="job_condition"><span><a href="#">부산</a></span><span>경력무관</span></div>
  </div>
  <div class="area_corp"><strong class="corp_name"></strong></div>
</div>
</div></div></body></html>`

func newScraper() *SaraminScraper {
	cfg := config.Default().Saramin
	cfg.ExcludeKeywords = []string{"IOS", "안드로이드"}
	cfg.MinYears, cfg.MaxYears = 0, 5
	cfg.Settle = 0
	return NewSaraminScraper(cfg, time.Second)
}

func TestSaraminScraper_Extract(t *testing.T) {
	jobs, err := newScraper().Extract(listingPage)
	require.NoError(t, err)

	// iOS is excluded by keyword, 10년↑ by experience, the last card has no company
	require.Len(t, jobs, 1)
	assert.Equal(t, models.Job{
		Title:           "프론트엔드 개발자 (React)",
		Company:         "(주)에이비씨",
		ExperienceYears: "경력 1~3년",
		Location:        "서울 강남구",
		Deadline:        "~ 11/15(토)",
		URL:             "https://www.saramin.co.kr/zf_user/jobs/relay/view?rec_idx=49000001",
	}, jobs[0])
}

func TestSaraminScraper_PageURL(t *testing.T) {
	s := newScraper()
	assert.Equal(t,
		"https://www.saramin.co.kr/zf_user/search/recruit?searchword=%ED%94%84%EB%A1%A0%ED%8A%B8%EC%97%94%EB%93%9C&recruitPage=3",
		s.PageURL(3))
	assert.Equal(t, "saramin", s.Name())
	assert.Equal(t, 8, s.Budget())
}

func TestCanonicalURL(t *testing.T) {
	assert.Equal(t, "https://www.saramin.co.kr/zf_user/jobs/relay/view?rec_idx=7",
		canonicalURL("/zf_user/jobs/relay/view?view_type=list&rec_idx=7&t_ref=main#top"))
	assert.Equal(t, "https://www.saramin.co.kr/zf_user/jobs/view", canonicalURL("/zf_user/jobs/view"))
	assert.Equal(t, "", canonicalURL(""))
}

func TestSaraminScraper_CollectStopsPastLastPage(t *testing.T) {
	s := newScraper()
	empty := `<html><body><div id="recruit_info_list"></div></body></html>`
	session := &browsertest.Session{Render: browsertest.Pages(map[string]string{
		s.PageURL(1): listingPage,
		s.PageURL(2): empty,
		s.PageURL(3): empty,
	})}
	tab, err := session.NewTab(context.Background())
	require.NoError(t, err)

	jobs, err := crawler.Collect(context.Background(), tab, s.Collector(), s.Extract, 0, logger.Nop())
	require.NoError(t, err)

	assert.Len(t, jobs, 1)
	assert.Len(t, session.Tabs()[0].Navigations(), 3)
}
