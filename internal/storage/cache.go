package storage

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	seenURLPrefix = "newshub:article:url:"
	seenURLTTL    = 7 * 24 * time.Hour
	listCacheTTL  = 5 * time.Minute
)

func seenURLKey(url string) string {
	h := sha1.Sum([]byte(url))
	return seenURLPrefix + hex.EncodeToString(h[:])
}

// seenURL Redis 不可用时返回 false，由数据库兜底
func (s *Store) seenURL(ctx context.Context, url string) bool {
	if s.Redis == nil {
		return false
	}
	n, err := s.Redis.Exists(ctx, seenURLKey(url)).Result()
	if err != nil {
		log.Debug().Err(err).Msg("redis exists failed")
		return false
	}
	return n > 0
}

func (s *Store) markURLSeen(ctx context.Context, url string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Set(ctx, seenURLKey(url), 1, seenURLTTL).Err(); err != nil {
		log.Debug().Err(err).Msg("redis set failed")
	}
}

// getCached 读取列表缓存，未命中返回 false
func (s *Store) getCached(ctx context.Context, key string, dst any) bool {
	if s.Redis == nil {
		return false
	}
	bs, err := s.Redis.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(bs, dst) == nil
}

// setCached 回写缓存；这里不做主动失效，完全依赖短 TTL 自然过期
func (s *Store) setCached(ctx context.Context, key string, v any) {
	if s.Redis == nil {
		return
	}
	bs, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = s.Redis.Set(ctx, key, bs, listCacheTTL).Err()
}
