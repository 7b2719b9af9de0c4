package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/feeds"

	"github.com/LJTian/NewsHub/internal/model"
)

const rssDescriptionLimit = 500

// buildFeed 把最新文章转换成 RSS 2.0；link 为站点根地址
func buildFeed(articles []model.Article, link string, now time.Time) (string, error) {
	feed := &feeds.Feed{
		Title:       "NewsHub",
		Link:        &feeds.Link{Href: link},
		Description: "Latest Kenyan news aggregated by NewsHub",
		Created:     now,
	}

	feed.Items = make([]*feeds.Item, 0, len(articles))
	for _, a := range articles {
		item := &feeds.Item{
			Title:   a.Title,
			Link:    &feeds.Link{Href: a.URL},
			Id:      fmt.Sprintf("%s/api/v1/articles/%s", link, a.ID),
			Created: a.PublishedAt,
		}
		if a.Summary != nil {
			desc := []rune(*a.Summary)
			if len(desc) > rssDescriptionLimit {
				desc = append(desc[:rssDescriptionLimit], []rune("...")...)
			}
			item.Description = string(desc)
		}
		if a.Author != nil {
			item.Author = &feeds.Author{Name: *a.Author}
		}
		if a.Category != nil {
			item.Description = fmt.Sprintf("[%s] %s", *a.Category, item.Description)
		}
		feed.Items = append(feed.Items, item)
	}

	rss, err := feed.ToRss()
	if err != nil {
		return "", fmt.Errorf("generate rss: %w", err)
	}
	return rss, nil
}

func (s *Server) rss(c *gin.Context) {
	articles, err := s.store.RecentArticles(c.Request.Context(), queryInt(c, "limit", 50))
	if err != nil {
		internalError(c, err)
		return
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	body, err := buildFeed(articles, scheme+"://"+c.Request.Host, time.Now())
	if err != nil {
		internalError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(body))
}
