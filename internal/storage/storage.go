package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/LJTian/NewsHub/internal/config"
	"github.com/LJTian/NewsHub/internal/model"
)

var ErrNotFound = errors.New("record not found")

type Store struct {
	DB    *gorm.DB
	Redis *redis.Client // 可为 nil，此时不使用缓存
}

// Open 按 DB_DRIVER 连接数据库，并在配置了 REDIS_ADDR 时连接 Redis
func Open(cfg *config.Config) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "", "postgres":
		dialector = postgres.Open(cfg.PostgresDSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed")
		}
	}

	return NewStore(db, rdb)
}

// NewStore 在已有连接上迁移表结构
func NewStore(db *gorm.DB, rdb *redis.Client) (*Store, error) {
	if err := db.AutoMigrate(&model.Source{}, &model.Article{}); err != nil {
		return nil, err
	}
	return &Store{DB: db, Redis: rdb}, nil
}

func (s *Store) Close() error {
	if s.Redis != nil {
		_ = s.Redis.Close()
	}
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping 用于 /health
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// toValidUTF8 将字符串规范为合法 UTF-8，避免 PostgreSQL invalid byte sequence 错误（抓取的页面编码不可控）
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

// truncateRunesDB 按 rune 数截断字符串，确保不会超过数据库字段长度
func truncateRunesDB(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}

func cleanOptional(p *string, limit int) *string {
	if p == nil {
		return nil
	}
	v := toValidUTF8(*p)
	if limit > 0 {
		v = truncateRunesDB(v, limit)
	}
	return &v
}

// ArticleExistsByURL 先查 Redis 的已见集合，再查数据库
func (s *Store) ArticleExistsByURL(ctx context.Context, url string) (bool, error) {
	if s.seenURL(ctx, url) {
		return true, nil
	}

	var n int64
	if err := s.DB.WithContext(ctx).Model(&model.Article{}).Where("url = ?", url).Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		s.markURLSeen(ctx, url)
		return true, nil
	}
	return false, nil
}

// CreateArticle 写入新文章：新 id，trending=false，view_count=0
func (s *Store) CreateArticle(ctx context.Context, c *model.Candidate) (*model.Article, error) {
	a := c.ToArticle(time.Now().UTC())
	a.Title = truncateRunesDB(toValidUTF8(a.Title), 512)
	a.Content = cleanOptional(a.Content, 0)
	a.Summary = cleanOptional(a.Summary, 0)
	a.Author = cleanOptional(a.Author, 256)
	a.ImageURL = cleanOptional(a.ImageURL, 1024)

	if err := s.DB.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	s.markURLSeen(ctx, a.URL)
	return a, nil
}

// GetArticle 按 id 查询，不存在时返回 ErrNotFound
func (s *Store) GetArticle(ctx context.Context, id uuid.UUID) (*model.Article, error) {
	var a model.Article
	silent := s.DB.Session(&gorm.Session{Logger: s.DB.Logger.LogMode(logger.Silent)})
	err := silent.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// IncrementArticleViews 浏览数 +1，返回新的浏览数
func (s *Store) IncrementArticleViews(ctx context.Context, id uuid.UUID) (int64, error) {
	res := s.DB.WithContext(ctx).Model(&model.Article{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrNotFound
	}

	var views int64
	if err := s.DB.WithContext(ctx).Model(&model.Article{}).Where("id = ?", id).Select("view_count").Scan(&views).Error; err != nil {
		return 0, err
	}
	return views, nil
}
