package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/LJTian/NewsHub/internal/model"
)

func TestLoadSourcesDefaults(t *testing.T) {
	sources, err := LoadSources("")
	if err != nil {
		t.Fatalf("LoadSources error: %v", err)
	}
	if len(sources) != 4 {
		t.Fatalf("expected 4 built-in sources, got %d", len(sources))
	}
	for _, s := range sources {
		if s.Kind != model.KindFeed || s.FeedURL == nil {
			t.Fatalf("built-in source %s should be a feed with url", s.Name)
		}
		if !s.Active || s.Country != "kenya" || s.Language != "en" {
			t.Fatalf("unexpected defaults for %s: %+v", s.Name, s)
		}
	}
}

const sampleYAML = `
sources:
  - name: Example Scrape
    base_url: https://example.co.ke/news
    kind: scrape
    region: nairobi
    credibility_score: 70
    scrape:
      article_selector: div.story
      title_selector: h2
      content_selector: article .body
      author_selector: .byline
  - name: Wire API
    base_url: https://wire.example.com
    kind: api
    active: false
`

func TestLoadSourcesFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	sources, err := LoadSources(path)
	if err != nil {
		t.Fatalf("LoadSources error: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}

	s := sources[0]
	if s.Kind != model.KindScrape {
		t.Fatalf("kind = %q, want scrape", s.Kind)
	}
	cfg := s.Scrape()
	if cfg == nil || cfg.ArticleSelector != "div.story" {
		t.Fatalf("scrape config not loaded: %+v", cfg)
	}
	if cfg.AuthorSelector == nil || *cfg.AuthorSelector != ".byline" {
		t.Fatalf("author selector not loaded: %+v", cfg.AuthorSelector)
	}
	if cfg.DateSelector != nil {
		t.Fatalf("date selector should stay nil")
	}
	if s.Region == nil || *s.Region != "nairobi" {
		t.Fatalf("region not loaded: %v", s.Region)
	}

	if sources[1].Active {
		t.Fatalf("second source should be inactive")
	}
}

func TestLoadSourcesRejectsInvalidSelector(t *testing.T) {
	data := []byte(`
sources:
  - name: Broken
    base_url: https://broken.example.com
    kind: scrape
    scrape:
      article_selector: "div[["
      title_selector: h2
      content_selector: p
`)
	specs, err := ParseSources(data)
	if err != nil {
		t.Fatalf("ParseSources error: %v", err)
	}
	if _, err := specs[0].ToSource(); err == nil {
		t.Fatalf("expected invalid selector to be rejected")
	}
}
