package config

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/LJTian/NewsHub/internal/model"
)

// SourceSpec 是 sources.yaml 里的一条来源定义
type SourceSpec struct {
	Name             string              `yaml:"name"`
	BaseURL          string              `yaml:"base_url"`
	FeedURL          string              `yaml:"feed_url"`
	Kind             string              `yaml:"kind"`
	Active           *bool               `yaml:"active"`
	Language         string              `yaml:"language"`
	Country          string              `yaml:"country"`
	Region           string              `yaml:"region"`
	CredibilityScore *float64            `yaml:"credibility_score"`
	Scrape           *model.ScrapeConfig `yaml:"scrape"`
}

type sourcesFile struct {
	Sources []SourceSpec `yaml:"sources"`
}

// DefaultSources 未提供 SOURCES_FILE 时使用的内置来源
func DefaultSources() []SourceSpec {
	score := func(v float64) *float64 { return &v }
	return []SourceSpec{
		{Name: "Daily Nation", BaseURL: "https://nation.africa", FeedURL: "https://nation.africa/kenya/rss", Kind: "feed", CredibilityScore: score(85)},
		{Name: "The Standard", BaseURL: "https://www.standardmedia.co.ke", FeedURL: "https://www.standardmedia.co.ke/rss/headlines.php", Kind: "feed", CredibilityScore: score(80)},
		{Name: "Citizen Digital", BaseURL: "https://citizentv.co.ke", FeedURL: "https://citizentv.co.ke/feed/", Kind: "feed", CredibilityScore: score(82)},
		{Name: "Capital FM", BaseURL: "https://www.capitalfm.co.ke", FeedURL: "https://www.capitalfm.co.ke/news/feed/", Kind: "feed", CredibilityScore: score(78)},
	}
}

// LoadSources 读取来源目录；path 为空时返回内置来源
func LoadSources(path string) ([]model.Source, error) {
	specs := DefaultSources()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read sources file: %w", err)
		}
		specs, err = ParseSources(data)
		if err != nil {
			return nil, err
		}
	}

	out := make([]model.Source, 0, len(specs))
	for _, sp := range specs {
		src, err := sp.ToSource()
		if err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, nil
}

func ParseSources(data []byte) ([]SourceSpec, error) {
	var f sourcesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse sources file: %w", err)
	}
	return f.Sources, nil
}

// ToSource 转成 model.Source，并做 kind 与字段一致性校验
func (sp SourceSpec) ToSource() (model.Source, error) {
	kind, err := model.ParseSourceKind(sp.Kind)
	if err != nil {
		return model.Source{}, fmt.Errorf("source %s: %w", sp.Name, err)
	}

	src := model.Source{
		ID:               uuid.New(),
		Name:             sp.Name,
		BaseURL:          sp.BaseURL,
		Kind:             kind,
		Active:           true,
		Language:         sp.Language,
		Country:          sp.Country,
		CredibilityScore: sp.CredibilityScore,
	}
	if sp.Active != nil {
		src.Active = *sp.Active
	}
	if src.Language == "" {
		src.Language = "en"
	}
	if src.Country == "" {
		src.Country = "kenya"
	}
	if sp.FeedURL != "" {
		feedURL := sp.FeedURL
		src.FeedURL = &feedURL
	}
	if sp.Region != "" {
		region := sp.Region
		src.Region = &region
	}
	src.SetScrape(sp.Scrape)

	if err := src.Validate(); err != nil {
		return model.Source{}, err
	}
	return src, nil
}
