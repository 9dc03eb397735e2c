package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"item_taxonomy_v1_202603/internal/model"
)

// ItemTypeRepository 物料类型仓储接口
type ItemTypeRepository interface {
	Create(ctx context.Context, itemType *model.ItemType) error
	Update(ctx context.Context, itemType *model.ItemType) error
	GetByCode(ctx context.Context, code string) (*model.ItemType, error)
	List(ctx context.Context, activeOnly bool) ([]model.ItemType, error)
}

type itemTypeRepo struct {
	db *gorm.DB
}

// NewItemTypeRepository 创建物料类型仓储
func NewItemTypeRepository(db *gorm.DB) ItemTypeRepository {
	return &itemTypeRepo{db: db}
}

func (r *itemTypeRepo) Create(ctx context.Context, itemType *model.ItemType) error {
	return r.db.WithContext(ctx).Create(itemType).Error
}

func (r *itemTypeRepo) Update(ctx context.Context, itemType *model.ItemType) error {
	return r.db.WithContext(ctx).Save(itemType).Error
}

func (r *itemTypeRepo) GetByCode(ctx context.Context, code string) (*model.ItemType, error) {
	var itemType model.ItemType
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&itemType).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &itemType, nil
}

func (r *itemTypeRepo) List(ctx context.Context, activeOnly bool) ([]model.ItemType, error) {
	query := r.db.WithContext(ctx).Model(&model.ItemType{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var types []model.ItemType
	err := query.Order("sort_order ASC, code ASC").Find(&types).Error
	return types, err
}
