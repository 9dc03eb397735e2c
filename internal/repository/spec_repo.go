package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"item_taxonomy_v1_202603/internal/model"
)

// SpecRepository 分类规格配置仓储接口
type SpecRepository interface {
	// 查不到返回 (nil, nil)
	GetByNodeCode(ctx context.Context, nodeCode string) (*model.SpecificationConfig, error)

	// 全量替换式 upsert，不做局部合并
	Upsert(ctx context.Context, cfg *model.SpecificationConfig) error

	Delete(ctx context.Context, nodeCode string) error
}

type specRepo struct {
	db *gorm.DB
}

// NewSpecRepository 创建规格配置仓储
func NewSpecRepository(db *gorm.DB) SpecRepository {
	return &specRepo{db: db}
}

func (r *specRepo) GetByNodeCode(ctx context.Context, nodeCode string) (*model.SpecificationConfig, error) {
	var cfg model.SpecificationConfig
	err := r.db.WithContext(ctx).Where("node_code = ?", nodeCode).First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *specRepo) Upsert(ctx context.Context, cfg *model.SpecificationConfig) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "node_code"}},
		// deleted_at 一并清掉，删除后重新配置要能复活同一行
		DoUpdates: clause.AssignmentColumns([]string{
			"node_level", "dimensions", "custom_fields", "is_active", "updated_by", "updated_at", "deleted_at",
		}),
	}).Create(cfg).Error
}

func (r *specRepo) Delete(ctx context.Context, nodeCode string) error {
	return r.db.WithContext(ctx).Where("node_code = ?", nodeCode).Delete(&model.SpecificationConfig{}).Error
}
