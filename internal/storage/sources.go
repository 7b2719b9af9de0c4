package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/LJTian/NewsHub/internal/model"
)

// ListActiveSources 返回所有启用的来源（按创建顺序）
func (s *Store) ListActiveSources(ctx context.Context) ([]model.Source, error) {
	var list []model.Source
	err := s.DB.WithContext(ctx).Where("active = ?", true).Order("created_at ASC").Find(&list).Error
	return list, err
}

// ListSources 返回全部来源，包括已停用的
func (s *Store) ListSources(ctx context.Context) ([]model.Source, error) {
	var list []model.Source
	err := s.DB.WithContext(ctx).Order("created_at ASC").Find(&list).Error
	return list, err
}

func (s *Store) SourceExistsByName(ctx context.Context, name string) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&model.Source{}).Where("name = ?", name).Count(&n).Error
	return n > 0, err
}

func (s *Store) CreateSource(ctx context.Context, src *model.Source) error {
	if src.ID == uuid.Nil {
		src.ID = uuid.New()
	}
	return s.DB.WithContext(ctx).Create(src).Error
}

// EnsureSources 启动时确保来源目录里的每个来源都存在（按名称判断，已存在则忽略）
func (s *Store) EnsureSources(ctx context.Context, sources []model.Source) (int, error) {
	created := 0
	for i := range sources {
		exists, err := s.SourceExistsByName(ctx, sources[i].Name)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}
		if err := s.CreateSource(ctx, &sources[i]); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (s *Store) UpdateSourceLastFetched(ctx context.Context, id uuid.UUID, ts time.Time) error {
	res := s.DB.WithContext(ctx).Model(&model.Source{}).
		Where("id = ?", id).
		Updates(map[string]any{"last_fetched": ts, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetSourceActive 来源只停用不删除
func (s *Store) SetSourceActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := s.DB.WithContext(ctx).Model(&model.Source{}).
		Where("id = ?", id).
		Updates(map[string]any{"active": active, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
