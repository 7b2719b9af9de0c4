package collector

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog/log"

	"github.com/LJTian/NewsHub/internal/enrich"
	"github.com/LJTian/NewsHub/internal/model"
)

// FeedFetcher 拉取 RSS / Atom / JSON Feed 并转换成候选文章
type FeedFetcher struct {
	opts     Options
	enricher enrich.Enricher
	now      func() time.Time
}

func NewFeedFetcher(opts Options) *FeedFetcher {
	return &FeedFetcher{
		opts:     opts,
		enricher: enrich.Keywords{},
		now:      time.Now,
	}
}

// WithEnricher 替换默认的关键词分类器
func (f *FeedFetcher) WithEnricher(e enrich.Enricher) *FeedFetcher {
	f.enricher = e
	return f
}

func (f *FeedFetcher) Name() string {
	return "feed"
}

func (f *FeedFetcher) Fetch(ctx context.Context, src model.Source) ([]model.Candidate, error) {
	if src.FeedURL == nil || strings.TrimSpace(*src.FeedURL) == "" {
		return nil, fmt.Errorf("%w: source %s has no feed url", ErrConfig, src.Name)
	}
	feedURL := strings.TrimSpace(*src.FeedURL)

	body, err := f.download(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: decode feed %s: %v", ErrParse, feedURL, err)
	}

	results := make([]model.Candidate, 0, len(feed.Items))
	for i, item := range feed.Items {
		cand, err := f.toCandidate(src, item)
		if err != nil {
			log.Warn().Err(err).Str("source", src.Name).Int("item", i).Msg("skip feed item")
			continue
		}
		results = append(results, cand)
	}

	log.Debug().Str("source", src.Name).Int("items", len(feed.Items)).Int("candidates", len(results)).Msg("feed parsed")
	return results, nil
}

// download 以指数退避重试整个 feed 请求
func (f *FeedFetcher) download(ctx context.Context, url string) ([]byte, error) {
	c := f.opts.newCollector(ctx)

	var body []byte
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	attempts := f.opts.Retries
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		body = nil
		if err = visit(ctx, c, url); err == nil {
			return body, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt == attempts {
			break
		}

		wait := f.opts.RetryBackoff << (attempt - 1)
		log.Warn().Err(err).Str("url", url).Int("attempt", attempt).Dur("backoff", wait).Msg("feed request failed, retrying")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, err
}

func (f *FeedFetcher) toCandidate(src model.Source, item *gofeed.Item) (model.Candidate, error) {
	title := strings.TrimSpace(item.Title)
	link := strings.TrimSpace(item.Link)
	if title == "" {
		return model.Candidate{}, fmt.Errorf("%w: item without title", ErrParse)
	}
	if link == "" {
		return model.Candidate{}, fmt.Errorf("%w: item %q without link", ErrParse, title)
	}

	published, err := f.publishedAt(item)
	if err != nil {
		return model.Candidate{}, err
	}

	tags := make([]string, len(item.Categories))
	copy(tags, item.Categories)

	cand := model.Candidate{
		Title:       title,
		URL:         link,
		PublishedAt: published,
		SourceID:    src.ID,
		Tags:        tags,
	}
	if item.Content != "" {
		content := item.Content
		cand.Content = &content
	}
	if item.Description != "" {
		if summary := enrich.StripMarkup(item.Description); summary != "" {
			cand.Summary = &summary
		}
	}
	if author := itemAuthor(item); author != "" {
		cand.Author = &author
	}
	if img := itemImage(item); img != "" {
		cand.ImageURL = &img
	}

	enrich.Apply(f.enricher, &cand)
	return cand, nil
}

// publishedAt 没有日期字段时用当前时间；有但解析不了则报错
func (f *FeedFetcher) publishedAt(item *gofeed.Item) (time.Time, error) {
	raw := item.Published
	if strings.TrimSpace(raw) == "" {
		raw = item.Updated
	}
	if strings.TrimSpace(raw) == "" {
		return f.now().UTC(), nil
	}
	return parseFeedDate(raw)
}

func itemAuthor(item *gofeed.Item) string {
	if item.Author != nil && strings.TrimSpace(item.Author.Name) != "" {
		return strings.TrimSpace(item.Author.Name)
	}
	for _, a := range item.Authors {
		if a != nil && strings.TrimSpace(a.Name) != "" {
			return strings.TrimSpace(a.Name)
		}
	}
	return ""
}

// itemImage 依次查看 <image>、图片类型的 enclosure、media:content / media:thumbnail
func itemImage(item *gofeed.Item) string {
	if item.Image != nil && strings.TrimSpace(item.Image.URL) != "" {
		return strings.TrimSpace(item.Image.URL)
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") && strings.TrimSpace(enc.URL) != "" {
			return strings.TrimSpace(enc.URL)
		}
	}
	media := item.Extensions["media"]
	for _, name := range []string{"content", "thumbnail"} {
		if exts := media[name]; len(exts) > 0 {
			if u := strings.TrimSpace(exts[0].Attrs["url"]); u != "" {
				return u
			}
		}
	}
	return ""
}
