package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/LJTian/NewsHub/internal/model"
)

const (
	defaultLimit = 20
	maxLimit     = 100

	// 浏览数超过该值即视为热门
	trendingViewThreshold = 100
)

// ArticleFilter 列表查询条件，空字段表示不过滤
type ArticleFilter struct {
	Category string
	Language string
	Region   string
	SourceID *uuid.UUID
	Limit    int
	Offset   int
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

func (f ArticleFilter) cacheKey() string {
	src := ""
	if f.SourceID != nil {
		src = f.SourceID.String()
	}
	return fmt.Sprintf("newshub:articles:list:%s:%s:%s:%s:%d:%d",
		f.Category, f.Language, f.Region, src, f.Limit, f.Offset)
}

// ListArticles 按条件分页返回文章（发布时间倒序），结果缓存 5 分钟
func (s *Store) ListArticles(ctx context.Context, f ArticleFilter) ([]model.Article, error) {
	f.Limit = normalizeLimit(f.Limit)
	if f.Offset < 0 {
		f.Offset = 0
	}

	key := f.cacheKey()
	var cached []model.Article
	if s.getCached(ctx, key, &cached) {
		return cached, nil
	}

	db := s.DB.WithContext(ctx).Model(&model.Article{})
	if f.Category != "" {
		db = db.Where("category = ?", f.Category)
	}
	if f.Language != "" {
		db = db.Where("language = ?", f.Language)
	}
	if f.Region != "" {
		db = db.Where("region = ?", f.Region)
	}
	if f.SourceID != nil {
		db = db.Where("source_id = ?", *f.SourceID)
	}

	var list []model.Article
	if err := db.Order("published_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&list).Error; err != nil {
		return nil, err
	}
	if len(list) > 0 {
		s.setCached(ctx, key, list)
	}
	return list, nil
}

// RecentArticles 最新入库的文章
func (s *Store) RecentArticles(ctx context.Context, limit int) ([]model.Article, error) {
	return s.ListArticles(ctx, ArticleFilter{Limit: limit})
}

// TrendingArticles is_trending 为真或浏览数超过阈值的文章，按浏览数再按发布时间排序
func (s *Store) TrendingArticles(ctx context.Context, limit int) ([]model.Article, error) {
	limit = normalizeLimit(limit)
	key := fmt.Sprintf("newshub:articles:trending:%d", limit)

	var list []model.Article
	if s.getCached(ctx, key, &list) {
		return list, nil
	}

	err := s.DB.WithContext(ctx).
		Where("is_trending = ? OR view_count > ?", true, trendingViewThreshold).
		Order("view_count DESC").
		Order("published_at DESC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	if len(list) > 0 {
		s.setCached(ctx, key, list)
	}
	return list, nil
}

// SearchArticles 在标题、摘要、正文中做不区分大小写的子串匹配
func (s *Store) SearchArticles(ctx context.Context, query string, limit, offset int) ([]model.Article, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.Article{}, nil
	}
	limit = normalizeLimit(limit)
	if offset < 0 {
		offset = 0
	}

	pattern := "%" + strings.ToLower(query) + "%"
	var list []model.Article
	err := s.DB.WithContext(ctx).
		Where("LOWER(title) LIKE ? OR LOWER(summary) LIKE ? OR LOWER(content) LIKE ?", pattern, pattern, pattern).
		Order("published_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&list).Error
	return list, err
}

// MarkTrending 运营侧手动设置热门标记
func (s *Store) MarkTrending(ctx context.Context, id uuid.UUID, trending bool) error {
	res := s.DB.WithContext(ctx).Model(&model.Article{}).Where("id = ?", id).Update("is_trending", trending)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
