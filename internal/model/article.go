package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Candidate 由 Fetcher 产出、尚未入库的文章
type Candidate struct {
	Title       string
	URL         string
	Content     *string
	Summary     *string
	Author      *string
	ImageURL    *string
	PublishedAt time.Time
	SourceID    uuid.UUID
	Category    *string
	Tags        []string
	Language    string
	Region      *string
}

// SummaryText 便于拼接 title + summary 做关键词匹配
func (c *Candidate) SummaryText() string {
	if c.Summary == nil {
		return ""
	}
	return *c.Summary
}

// Article 入库后的文章；URL 是自然键
type Article struct {
	ID          uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string                      `gorm:"size:512" json:"title"`
	URL         string                      `gorm:"size:1024;uniqueIndex" json:"url"`
	Content     *string                     `gorm:"type:text" json:"content,omitempty"`
	Summary     *string                     `gorm:"type:text" json:"summary,omitempty"`
	Author      *string                     `gorm:"size:256" json:"author,omitempty"`
	ImageURL    *string                     `gorm:"size:1024" json:"imageUrl,omitempty"`
	PublishedAt time.Time                   `gorm:"index" json:"publishedAt"`
	SourceID    uuid.UUID                   `gorm:"type:uuid;index" json:"sourceId"`
	Category    *string                     `gorm:"size:32;index" json:"category,omitempty"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	Language    string                      `gorm:"size:8;index" json:"language"`
	Region      *string                     `gorm:"size:64;index" json:"region,omitempty"`

	IsTrending bool  `gorm:"index;default:false" json:"isTrending"`
	ViewCount  int64 `gorm:"default:0" json:"viewCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ToArticle 生成待写入的 Article：新 id，trending=false，view_count=0
func (c *Candidate) ToArticle(now time.Time) *Article {
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	return &Article{
		ID:          uuid.New(),
		Title:       c.Title,
		URL:         c.URL,
		Content:     c.Content,
		Summary:     c.Summary,
		Author:      c.Author,
		ImageURL:    c.ImageURL,
		PublishedAt: c.PublishedAt,
		SourceID:    c.SourceID,
		Category:    c.Category,
		Tags:        datatypes.JSONSlice[string](tags),
		Language:    c.Language,
		Region:      c.Region,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
