package processor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/LJTian/NewsHub/internal/model"
)

// Store 是 Gateway 需要的最小存储接口
type Store interface {
	ArticleExistsByURL(ctx context.Context, url string) (bool, error)
	CreateArticle(ctx context.Context, c *model.Candidate) (*model.Article, error)
	UpdateSourceLastFetched(ctx context.Context, sourceID uuid.UUID, ts time.Time) error
}

// Result 单个来源一轮入库的统计；Saved 为本轮实际新增的文章数
type Result struct {
	Considered int
	Saved      int
	Skipped    int
	Failed     int
}

// Gateway 按 URL 去重后写入新文章
type Gateway struct {
	store Store
	now   func() time.Time
}

func NewGateway(store Store) *Gateway {
	return &Gateway{store: store, now: time.Now}
}

// Ingest 只处理前 maxPerSource 条（<=0 表示不限），逐条检查 URL 是否已存在，不存在才写入。
// 单条失败只记日志；结束后无论成败都会更新来源的 last_fetched。
func (g *Gateway) Ingest(ctx context.Context, src model.Source, candidates []model.Candidate, maxPerSource int) Result {
	if maxPerSource > 0 && len(candidates) > maxPerSource {
		candidates = candidates[:maxPerSource]
	}

	res := Result{Considered: len(candidates)}
	seen := make(map[string]struct{}, len(candidates))

	for i := range candidates {
		if ctx.Err() != nil {
			break
		}
		c := &candidates[i]

		// 同一批次里重复的链接只保留第一条
		if _, ok := seen[c.URL]; ok {
			res.Skipped++
			continue
		}
		seen[c.URL] = struct{}{}

		exists, err := g.store.ArticleExistsByURL(ctx, c.URL)
		if err != nil {
			log.Warn().Err(err).Str("url", c.URL).Msg("check article existence failed")
			res.Failed++
			continue
		}
		if exists {
			res.Skipped++
			continue
		}

		if c.SourceID == uuid.Nil {
			c.SourceID = src.ID
		}
		if _, err := g.store.CreateArticle(ctx, c); err != nil {
			log.Warn().Err(err).Str("url", c.URL).Msg("save article failed")
			res.Failed++
			continue
		}
		res.Saved++
	}

	if err := g.store.UpdateSourceLastFetched(context.WithoutCancel(ctx), src.ID, g.now().UTC()); err != nil {
		log.Warn().Err(err).Str("source", src.Name).Msg("update last_fetched failed")
	}

	log.Info().
		Str("source", src.Name).
		Int("considered", res.Considered).
		Int("saved", res.Saved).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Msg("ingest done")
	return res
}
