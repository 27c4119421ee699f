package douban

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/cinesort/cinesort/models"
)

const inceptionDetailPage = `<!DOCTYPE html>
<html>
<body>
<div id="content">
  <h1>
    <span property="v:itemreviewed">盗梦空间 Inception</span>
    <span class="year">(2010)</span>
  </h1>
  <div id="interest_sectl">
    <strong class="ll rating_num" property="v:average">9.0</strong>
  </div>
  <div id="info">
    <span><span class="pl">导演</span>: <a href="/celebrity/1054524/" rel="v:directedBy">克里斯托弗·诺兰</a></span><br/>
    <span><span class="pl">主演</span>: <a href="/celebrity/1041029/" rel="v:starring">莱昂纳多·迪卡普里奥</a> / <a href="/celebrity/1012531/" rel="v:starring">约瑟夫·高登-莱维特</a> / <a href="/celebrity/1049635/" rel="v:starring">艾伦·佩吉</a></span><br/>
    <span class="pl">类型:</span> <span property="v:genre">科幻</span> / <span property="v:genre">悬疑</span> / <span property="v:genre">冒险</span><br/>
    <span class="pl">又名:</span> 潜行凶间(港) / 全面启动(台)<br/>
  </div>
  <div class="related-info">
    <span property="v:summary">
      道姆·柯布与同事阿瑟和纳什在一次针对日本能源大亨齐藤的盗梦行动中失败。
    </span>
  </div>
</div>
</body>
</html>`

func TestDetails_ParsesSubjectPage(t *testing.T) {
	f := newStubFetcher(inceptionDetailPage)
	client := NewClientWithFetcher(testCfg(), func() Fetcher { return f })

	d, err := client.Details(context.Background(), "3541415")
	if err != nil {
		t.Fatalf("Details() error: %v", err)
	}

	if d.Sid != "3541415" {
		t.Errorf("sid = %q, want 3541415", d.Sid)
	}
	if d.Title != "盗梦空间 Inception" {
		t.Errorf("title = %q", d.Title)
	}
	if d.Rating != "9.0" {
		t.Errorf("rating = %q, want 9.0", d.Rating)
	}
	if d.Year != "2010" {
		t.Errorf("year = %q, want 2010", d.Year)
	}
	if !reflect.DeepEqual(d.Directors, []string{"克里斯托弗·诺兰"}) {
		t.Errorf("directors = %v", d.Directors)
	}
	if !reflect.DeepEqual(d.Actors, []string{"莱昂纳多·迪卡普里奥", "约瑟夫·高登-莱维特", "艾伦·佩吉"}) {
		t.Errorf("actors = %v", d.Actors)
	}
	if !reflect.DeepEqual(d.Genres, []string{"科幻", "悬疑", "冒险"}) {
		t.Errorf("genres = %v", d.Genres)
	}
	if d.Summary == "" {
		t.Error("empty summary")
	}
}

func TestDetails_ChallengeBeforePage(t *testing.T) {
	f := newStubFetcher(gatePage("xyz", "1"), inceptionDetailPage)
	client := NewClientWithFetcher(testCfg(), func() Fetcher { return f })

	d, err := client.Details(context.Background(), "3541415")
	if err != nil {
		t.Fatalf("Details() error: %v", err)
	}
	if f.calls != 2 {
		t.Errorf("fetch calls = %d, want 2", f.calls)
	}
	if d.Title == "" {
		t.Error("empty title after challenge bypass")
	}
}

func TestDetails_MissingTitleIsNoMatch(t *testing.T) {
	f := newStubFetcher(`<html><body><div id="content"><p>页面不存在</p></div></body></html>`)
	client := NewClientWithFetcher(testCfg(), func() Fetcher { return f })

	_, err := client.Details(context.Background(), "999")
	if err == nil {
		t.Fatal("expected error for page without a title")
	}
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != models.ErrCodeNoMatch {
		t.Errorf("error = %v, want NO_MATCHING_RESULT", err)
	}
}

func TestParseDetails_AlternateTitle(t *testing.T) {
	d, err := parseDetails(inceptionDetailPage)
	if err != nil {
		t.Fatalf("parseDetails() error: %v", err)
	}
	if d.AlternateTitle != "潜行凶间(港) / 全面启动(台)" {
		t.Errorf("alternate title = %q", d.AlternateTitle)
	}
}
