package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/LJTian/NewsHub/internal/config"
	"github.com/LJTian/NewsHub/internal/model"
)

// Fetcher 抽象每一种来源类型：给定 Source，产出候选文章
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, src model.Source) ([]model.Candidate, error)
}

// 错误分类：配置错误 / 传输错误 / 解析错误，均只影响当前来源
var (
	ErrConfig    = errors.New("source misconfigured")
	ErrTransport = errors.New("transport failure")
	ErrParse     = errors.New("parse failure")
)

// Options 所有 Fetcher 共用的 HTTP 设置
type Options struct {
	UserAgent    string
	Timeout      time.Duration
	Retries      int           // 整个 feed 请求的最大尝试次数，<=1 表示不重试
	RetryBackoff time.Duration // 第 n 次重试前等待 RetryBackoff * 2^(n-1)
	MaxBodyBytes int
}

func DefaultOptions() Options {
	return Options{
		UserAgent:    config.DefaultUserAgent,
		Timeout:      30 * time.Second,
		Retries:      3,
		RetryBackoff: time.Second,
		MaxBodyBytes: 10 << 20,
	}
}

// OptionsFromConfig 从全局配置构造 Options
func OptionsFromConfig(cfg *config.Config) Options {
	o := DefaultOptions()
	if cfg.UserAgent != "" {
		o.UserAgent = cfg.UserAgent
	}
	if cfg.RequestTimeout > 0 {
		o.Timeout = cfg.RequestTimeout
	}
	o.Retries = cfg.FetchRetries
	return o
}

// newCollector 创建一个同步 colly 采集器；ctx 取消后不再发出新请求
func (o Options) newCollector(ctx context.Context) *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent(o.UserAgent),
		colly.AllowURLRevisit(),
		colly.MaxBodySize(o.MaxBodyBytes),
	)
	c.SetRequestTimeout(o.Timeout)
	abortOnDone(ctx, c)
	return c
}

func abortOnDone(ctx context.Context, c *colly.Collector) {
	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})
}

// visit 包一层 Visit：把 colly 的错误统一归为传输错误
func visit(ctx context.Context, c *colly.Collector, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.Visit(url); err != nil {
		return fmt.Errorf("%w: GET %s: %v", ErrTransport, url, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

// Registry 按来源类型分发到对应的 Fetcher；api 类型目前没有实现
type Registry struct {
	Feed   Fetcher
	Scrape Fetcher
}

// NewRegistry 创建带默认 Feed/Scrape 实现的 Registry
func NewRegistry(opts Options) *Registry {
	return &Registry{
		Feed:   NewFeedFetcher(opts),
		Scrape: NewScrapeFetcher(opts),
	}
}

// For 返回 kind 对应的 Fetcher，没有实现时返回 nil
func (r *Registry) For(kind model.SourceKind) Fetcher {
	switch kind {
	case model.KindFeed:
		return r.Feed
	case model.KindScrape:
		return r.Scrape
	case model.KindAPI:
		return nil
	}
	return nil
}
