package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SourceKind 数据源类型，集合是封闭的：feed / scrape / api
type SourceKind string

const (
	KindFeed   SourceKind = "feed"
	KindScrape SourceKind = "scrape"
	KindAPI    SourceKind = "api"
)

// ParseSourceKind 兼容配置文件里 rss / html 之类的写法
func ParseSourceKind(s string) (SourceKind, error) {
	switch s {
	case "feed", "rss", "atom":
		return KindFeed, nil
	case "scrape", "html", "web":
		return KindScrape, nil
	case "api":
		return KindAPI, nil
	}
	return "", fmt.Errorf("unknown source kind %q", s)
}

// ScrapeConfig 描述一个 HTML 列表页的抽取规则，归属于 kind=scrape 的 Source
type ScrapeConfig struct {
	ArticleSelector string  `json:"articleSelector" yaml:"article_selector"`
	TitleSelector   string  `json:"titleSelector" yaml:"title_selector"`
	ContentSelector string  `json:"contentSelector" yaml:"content_selector"`
	AuthorSelector  *string `json:"authorSelector,omitempty" yaml:"author_selector"`
	DateSelector    *string `json:"dateSelector,omitempty" yaml:"date_selector"`
	DateFormat      *string `json:"dateFormat,omitempty" yaml:"date_format"`
}

// Validate 检查三个必填选择器的语法和 date_format；作者/日期选择器缺省是合法的
func (c *ScrapeConfig) Validate() error {
	required := []struct {
		name, sel string
	}{
		{"article", c.ArticleSelector},
		{"title", c.TitleSelector},
		{"content", c.ContentSelector},
	}
	for _, r := range required {
		if r.sel == "" {
			return fmt.Errorf("scrape config: %s selector is empty", r.name)
		}
		if _, err := cascadia.Compile(r.sel); err != nil {
			return fmt.Errorf("scrape config: invalid %s selector %q: %w", r.name, r.sel, err)
		}
	}
	if c.DateFormat != nil {
		if err := CheckDateFormat(*c.DateFormat); err != nil {
			return fmt.Errorf("scrape config: %w", err)
		}
	}
	return nil
}

// Source 一个新闻来源（RSS 或需要抓取的网页）
type Source struct {
	ID           uuid.UUID                         `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string                            `gorm:"size:128;uniqueIndex" json:"name"`
	BaseURL      string                            `gorm:"size:512" json:"baseUrl"`
	FeedURL      *string                           `gorm:"size:512" json:"feedUrl,omitempty"`
	ScrapeConfig datatypes.JSONType[*ScrapeConfig] `json:"scrapeConfig"`
	Kind         SourceKind                        `gorm:"size:16;index" json:"kind"`
	Active       bool                              `gorm:"index" json:"active"`
	LastFetched  *time.Time                        `json:"lastFetched,omitempty"`

	Language         string   `gorm:"size:8" json:"language"`
	Country          string   `gorm:"size:64" json:"country"`
	Region           *string  `gorm:"size:64" json:"region,omitempty"`
	CredibilityScore *float64 `json:"credibilityScore,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Scrape 返回抓取配置，未配置时为 nil
func (s *Source) Scrape() *ScrapeConfig {
	return s.ScrapeConfig.Data()
}

// SetScrape 设置抓取配置
func (s *Source) SetScrape(c *ScrapeConfig) {
	s.ScrapeConfig = datatypes.NewJSONType(c)
}

var ErrCredibilityRange = errors.New("credibility score must be within 0-100")

// Validate 检查 kind 与其所需字段是否匹配
func (s *Source) Validate() error {
	if s.Name == "" {
		return errors.New("source name is empty")
	}
	if s.CredibilityScore != nil && (*s.CredibilityScore < 0 || *s.CredibilityScore > 100) {
		return ErrCredibilityRange
	}
	switch s.Kind {
	case KindFeed:
		if s.FeedURL == nil || *s.FeedURL == "" {
			return fmt.Errorf("source %s: feed kind without feed url", s.Name)
		}
	case KindScrape:
		cfg := s.Scrape()
		if cfg == nil {
			return fmt.Errorf("source %s: scrape kind without scrape config", s.Name)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("source %s: %w", s.Name, err)
		}
	case KindAPI:
	default:
		return fmt.Errorf("source %s: unknown kind %q", s.Name, s.Kind)
	}
	return nil
}
