package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"item_taxonomy_v1_202603/internal/model"
)

// VariantRepository 变体分组仓储接口
type VariantRepository interface {
	ListByType(ctx context.Context, variantType model.VariantType, activeOnly bool) ([]model.VariantGroup, error)
	GetByCode(ctx context.Context, variantType model.VariantType, groupCode string) (*model.VariantGroup, error)
	Upsert(ctx context.Context, group *model.VariantGroup) error

	// 返回 groupCodes 中确实存在的编码
	FilterExisting(ctx context.Context, variantType model.VariantType, groupCodes []string) ([]string, error)
}

type variantRepo struct {
	db *gorm.DB
}

// NewVariantRepository 创建变体分组仓储
func NewVariantRepository(db *gorm.DB) VariantRepository {
	return &variantRepo{db: db}
}

func (r *variantRepo) ListByType(ctx context.Context, variantType model.VariantType, activeOnly bool) ([]model.VariantGroup, error) {
	query := r.db.WithContext(ctx).Where("variant_type = ?", variantType)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var groups []model.VariantGroup
	err := query.Order("display_order ASC, group_code ASC").Find(&groups).Error
	return groups, err
}

func (r *variantRepo) GetByCode(ctx context.Context, variantType model.VariantType, groupCode string) (*model.VariantGroup, error) {
	var group model.VariantGroup
	err := r.db.WithContext(ctx).
		Where("variant_type = ? AND group_code = ?", variantType, groupCode).
		First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *variantRepo) Upsert(ctx context.Context, group *model.VariantGroup) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "variant_type"}, {Name: "group_code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"group_name", "description", "members", "display_order", "is_active", "updated_by", "updated_at",
		}),
	}).Create(group).Error
}

func (r *variantRepo) FilterExisting(ctx context.Context, variantType model.VariantType, groupCodes []string) ([]string, error) {
	if len(groupCodes) == 0 {
		return nil, nil
	}
	var existing []string
	err := r.db.WithContext(ctx).Model(&model.VariantGroup{}).
		Where("variant_type = ? AND group_code IN ?", variantType, groupCodes).
		Pluck("group_code", &existing).Error
	return existing, err
}
