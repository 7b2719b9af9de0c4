package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/LJTian/NewsHub/internal/model"
)

func strPtr(s string) *string { return &s }

const listingPage = `<!DOCTYPE html>
<html><body>
<div class="story">
  <img src="/img/kisumu.jpg" alt="">
  <h2><a href="/news/1">Kisumu port reopens</a></h2>
  <span class="byline">Jane Doe</span>
  <time>2024-01-15</time>
  <p class="summary">Port listing summary</p>
</div>
<div class="story">
  <p>No headline here</p>
  <a href="/news/2">read more</a>
</div>
<div class="story">
  <h2>Mombasa traders protest</h2>
  <a href="missing">details</a>
  <div class="excerpt">Traders in Mombasa market</div>
</div>
</body></html>`

func longBody(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(words, " ")
}

func newScrapeServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(listingPage))
	})
	mux.HandleFunc("/news/1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<html><body><article class="body"><p>%s</p><p>tail</p></article></body></html>`, longBody(60))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func scrapeSource(base string, cfg *model.ScrapeConfig) model.Source {
	src := model.Source{ID: uuid.New(), Name: "test-scrape", BaseURL: base, Kind: model.KindScrape}
	src.SetScrape(cfg)
	return src
}

func TestScrapeFetcherSkipsElementWithoutTitle(t *testing.T) {
	srv := newScrapeServer(t)
	cfg := &model.ScrapeConfig{
		ArticleSelector: "div.story",
		TitleSelector:   "h2",
		ContentSelector: "article.body",
		AuthorSelector:  strPtr(".byline"),
	}

	items, err := NewScrapeFetcher(testOptions()).Fetch(context.Background(), scrapeSource(srv.URL, cfg))
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(items))
	}

	first := items[0]
	if first.Title != "Kisumu port reopens" {
		t.Fatalf("Title = %q", first.Title)
	}
	if first.URL != srv.URL+"/news/1" {
		t.Fatalf("URL = %q, want %q", first.URL, srv.URL+"/news/1")
	}
	if first.Content == nil || !strings.HasSuffix(*first.Content, "tail") {
		t.Fatalf("Content should come from the detail page, got %v", first.Content)
	}
	if first.Summary == nil || len(strings.Fields(*first.Summary)) != summaryWords {
		t.Fatalf("Summary should be the first %d words, got %v", summaryWords, first.Summary)
	}
	if first.Author == nil || *first.Author != "Jane Doe" {
		t.Fatalf("Author = %v, want Jane Doe", first.Author)
	}
	if first.Region == nil || *first.Region != "kisumu" {
		t.Fatalf("Region = %v, want kisumu", first.Region)
	}
	if len(first.Tags) != 0 {
		t.Fatalf("scraped tags should be empty, got %v", first.Tags)
	}
	if first.ImageURL == nil || *first.ImageURL != srv.URL+"/img/kisumu.jpg" {
		t.Fatalf("ImageURL = %v, want resolved listing image", first.ImageURL)
	}

	// 详情页 404，退回列表里的 .excerpt
	second := items[1]
	if second.URL != srv.URL+"/missing" {
		t.Fatalf("URL = %q", second.URL)
	}
	if second.Content != nil {
		t.Fatalf("Content should be nil when detail fetch fails")
	}
	if second.Summary == nil || *second.Summary != "Traders in Mombasa market" {
		t.Fatalf("Summary = %v, want listing excerpt", second.Summary)
	}
	if second.Author != nil {
		t.Fatalf("Author should be nil when selector does not match, got %q", *second.Author)
	}
	if second.ImageURL != nil {
		t.Fatalf("ImageURL should be nil without <img>, got %q", *second.ImageURL)
	}
	if second.Category == nil || *second.Category != "business" {
		t.Fatalf("Category = %v, want business", second.Category)
	}
}

func TestScrapeFetcherDateFallsBackToNow(t *testing.T) {
	srv := newScrapeServer(t)
	fixed := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	cfg := &model.ScrapeConfig{
		ArticleSelector: "div.story",
		TitleSelector:   "h2",
		ContentSelector: "article.body",
		DateSelector:    strPtr("time"),
		DateFormat:      strPtr("%Y-%m-%d"),
	}

	f := NewScrapeFetcher(testOptions())
	f.now = func() time.Time { return fixed }
	items, err := f.Fetch(context.Background(), scrapeSource(srv.URL+"/", cfg))
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(items))
	}
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	if !items[0].PublishedAt.Equal(want) {
		t.Fatalf("PublishedAt = %v, want %v", items[0].PublishedAt, want)
	}
	// 第二个元素没有 <time>，回落到 now
	if !items[1].PublishedAt.Equal(fixed) {
		t.Fatalf("PublishedAt = %v, want now %v", items[1].PublishedAt, fixed)
	}
}

func TestScrapeFetcherConfigErrors(t *testing.T) {
	f := NewScrapeFetcher(testOptions())

	src := model.Source{ID: uuid.New(), Name: "no-config", BaseURL: "http://127.0.0.1:1", Kind: model.KindScrape}
	if _, err := f.Fetch(context.Background(), src); !errors.Is(err, ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig", err)
	}

	bad := scrapeSource("http://127.0.0.1:1", &model.ScrapeConfig{
		ArticleSelector: "div[[",
		TitleSelector:   "h2",
		ContentSelector: "p",
	})
	if _, err := f.Fetch(context.Background(), bad); !errors.Is(err, ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig", err)
	}
}

func TestScrapeFetcherUnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	src := scrapeSource(base, &model.ScrapeConfig{ArticleSelector: "li", TitleSelector: "h3", ContentSelector: "p"})
	_, err := NewScrapeFetcher(testOptions()).Fetch(context.Background(), src)
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
}

func TestResolveURL(t *testing.T) {
	cases := []struct {
		href, base, want string
	}{
		{"https://x/y", "https://site.com/", "https://x/y"},
		{"http://x/y", "https://site.com", "http://x/y"},
		{"/a/b", "https://site.com/", "https://site.com/a/b"},
		{"/a/b", "https://site.com", "https://site.com/a/b"},
		{"a/b", "https://site.com/", "https://site.com/a/b"},
		{"a/b", "https://site.com/news", "https://site.com/news/a/b"},
	}
	for _, c := range cases {
		if got := ResolveURL(c.href, c.base); got != c.want {
			t.Fatalf("ResolveURL(%q, %q) = %q, want %q", c.href, c.base, got, c.want)
		}
		// 对绝对地址幂等
		if got := ResolveURL(ResolveURL(c.href, c.base), c.base); got != ResolveURL(c.href, c.base) {
			t.Fatalf("ResolveURL not idempotent for %q", c.href)
		}
	}
}

func TestRegistryDispatch(t *testing.T) {
	r := NewRegistry(testOptions())
	if r.For(model.KindFeed) == nil || r.For(model.KindFeed).Name() != "feed" {
		t.Fatalf("feed kind should map to FeedFetcher")
	}
	if r.For(model.KindScrape) == nil || r.For(model.KindScrape).Name() != "scrape" {
		t.Fatalf("scrape kind should map to ScrapeFetcher")
	}
	if r.For(model.KindAPI) != nil {
		t.Fatalf("api kind has no fetcher")
	}
}
