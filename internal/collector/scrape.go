package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	"github.com/LJTian/NewsHub/internal/enrich"
	"github.com/LJTian/NewsHub/internal/model"
)

// 在列表元素内依次查找文章链接
var linkSelectors = []string{"a", "a[href]", ".title a", ".headline a"}

// 全文抓取失败时，从列表元素里取摘要
var summarySelectors = []string{".summary", ".excerpt", ".description", "p"}

const summaryWords = 50

var errNoContent = errors.New("content selector matched nothing")

// ScrapeFetcher 按 ScrapeConfig 的 CSS 选择器抓取 HTML 列表页，并尝试进入详情页取正文
type ScrapeFetcher struct {
	opts     Options
	enricher enrich.Enricher
	now      func() time.Time
}

func NewScrapeFetcher(opts Options) *ScrapeFetcher {
	return &ScrapeFetcher{
		opts:     opts,
		enricher: enrich.Keywords{},
		now:      time.Now,
	}
}

func (f *ScrapeFetcher) WithEnricher(e enrich.Enricher) *ScrapeFetcher {
	f.enricher = e
	return f
}

func (f *ScrapeFetcher) Name() string {
	return "scrape"
}

func (f *ScrapeFetcher) Fetch(ctx context.Context, src model.Source) ([]model.Candidate, error) {
	cfg := src.Scrape()
	if cfg == nil {
		return nil, fmt.Errorf("%w: source %s has no scrape config", ErrConfig, src.Name)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	c := f.opts.newCollector(ctx)
	detail := newDetailPage(ctx, c)

	results := make([]model.Candidate, 0, 32)
	matched := 0

	// 页面结构各站不同，每个列表元素独立解析，失败只跳过该元素
	c.OnHTML("html", func(e *colly.HTMLElement) {
		e.DOM.Find(cfg.ArticleSelector).Each(func(i int, s *goquery.Selection) {
			matched++
			cand, err := f.extract(ctx, detail, src, cfg, s)
			if err != nil {
				log.Warn().Err(err).Str("source", src.Name).Int("element", i).Msg("skip scraped element")
				return
			}
			results = append(results, cand)
		})
	})

	if err := visit(ctx, c, src.BaseURL); err != nil {
		return nil, err
	}

	log.Debug().Str("source", src.Name).Int("matched", matched).Int("candidates", len(results)).Msg("page scraped")
	return results, nil
}

func (f *ScrapeFetcher) extract(ctx context.Context, detail *detailPage, src model.Source, cfg *model.ScrapeConfig, s *goquery.Selection) (model.Candidate, error) {
	title := firstText(s.Find(cfg.TitleSelector).First())
	if title == "" {
		return model.Candidate{}, fmt.Errorf("%w: no title under %q", ErrParse, cfg.TitleSelector)
	}

	href, ok := findLink(s)
	if !ok {
		return model.Candidate{}, fmt.Errorf("%w: no link for %q", ErrParse, title)
	}
	url := ResolveURL(href, src.BaseURL)

	cand := model.Candidate{
		Title:    title,
		URL:      url,
		SourceID: src.ID,
		Tags:     []string{},
	}

	var summary string
	if strings.HasPrefix(url, "http") {
		content, err := detail.content(ctx, url, cfg.ContentSelector)
		if err != nil {
			log.Debug().Err(err).Str("url", url).Msg("full content unavailable, using listing summary")
		} else {
			cand.Content = &content
			summary = firstWords(content, summaryWords)
		}
	}
	if cand.Content == nil {
		summary = listingSummary(s)
	}
	if summary != "" {
		cand.Summary = &summary
	}

	cand.Author = optionalText(s, cfg.AuthorSelector)
	cand.PublishedAt = f.publishedAt(s, cfg)
	if img, ok := s.Find("img[src]").First().Attr("src"); ok && strings.TrimSpace(img) != "" {
		imgURL := ResolveURL(strings.TrimSpace(img), src.BaseURL)
		cand.ImageURL = &imgURL
	}

	enrich.Apply(f.enricher, &cand)
	return cand, nil
}

// publishedAt 需要同时配置 date_selector 和 date_format；任何失败都退回当前时间
func (f *ScrapeFetcher) publishedAt(s *goquery.Selection, cfg *model.ScrapeConfig) time.Time {
	if cfg.DateSelector == nil || cfg.DateFormat == nil {
		return f.now().UTC()
	}
	text := optionalText(s, cfg.DateSelector)
	if text == nil {
		return f.now().UTC()
	}
	t, err := model.ParseDate(*text, *cfg.DateFormat)
	if err != nil {
		log.Debug().Err(err).Str("value", *text).Msg("scraped date not parsed, using now")
		return f.now().UTC()
	}
	return t
}

// ResolveURL 把列表页里的 href 解析成绝对地址
func ResolveURL(href, base string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "http") {
		return href
	}
	base = strings.TrimRight(base, "/")
	if strings.HasPrefix(href, "/") {
		return base + href
	}
	return base + "/" + href
}

func findLink(s *goquery.Selection) (string, bool) {
	for _, sel := range linkSelectors {
		link := s.Find(sel).First()
		if link.Length() == 0 {
			continue
		}
		if href, ok := link.Attr("href"); ok && strings.TrimSpace(href) != "" {
			return href, true
		}
	}
	return "", false
}

func listingSummary(s *goquery.Selection) string {
	for _, sel := range summarySelectors {
		m := s.Find(sel).First()
		if m.Length() == 0 {
			continue
		}
		if text := joinText(m); text != "" {
			return text
		}
	}
	return ""
}

// optionalText 选择器未配置或不合法时返回 nil
func optionalText(s *goquery.Selection, selector *string) *string {
	if selector == nil || strings.TrimSpace(*selector) == "" {
		return nil
	}
	if _, err := cascadia.Compile(*selector); err != nil {
		return nil
	}
	text := firstText(s.Find(*selector).First())
	if text == "" {
		return nil
	}
	return &text
}

// detailPage 复用一个 clone 出来的采集器抓取文章详情页
type detailPage struct {
	c    *colly.Collector
	page *goquery.Selection
}

func newDetailPage(ctx context.Context, parent *colly.Collector) *detailPage {
	d := &detailPage{c: parent.Clone()}
	abortOnDone(ctx, d.c)
	d.c.OnHTML("html", func(e *colly.HTMLElement) {
		d.page = e.DOM
	})
	return d
}

// content 取详情页中第一个匹配 selector 的元素文本
func (d *detailPage) content(ctx context.Context, url, selector string) (string, error) {
	d.page = nil
	if err := visit(ctx, d.c, url); err != nil {
		return "", err
	}
	if d.page == nil {
		return "", fmt.Errorf("%w: %s is not an html page", ErrParse, url)
	}
	text := joinText(d.page.Find(selector).First())
	if text == "" {
		return "", errNoContent
	}
	return text, nil
}

// textNodes 按文档顺序返回所有后代文本节点
func textNodes(s *goquery.Selection) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			out = append(out, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return out
}

// firstText 第一个非空白文本节点
func firstText(s *goquery.Selection) string {
	for _, t := range textNodes(s) {
		if t = strings.TrimSpace(t); t != "" {
			return t
		}
	}
	return ""
}

func joinText(s *goquery.Selection) string {
	return strings.TrimSpace(strings.Join(textNodes(s), " "))
}

func firstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
