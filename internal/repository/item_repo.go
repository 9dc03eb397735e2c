package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"item_taxonomy_v1_202603/internal/model"
)

// ItemRepository 物料仓储接口
type ItemRepository interface {
	Create(ctx context.Context, item *model.Item) error
	Update(ctx context.Context, item *model.Item) error
	GetByID(ctx context.Context, id int64) (*model.Item, error)
	GetByUID(ctx context.Context, uid string) (*model.Item, error)
	List(ctx context.Context, filter ItemFilter) ([]model.Item, int64, error)
	CountActiveByNode(ctx context.Context, level int, nodeCode string) (int64, error)
	CountByItemType(ctx context.Context, itemTypeCode string) (int64, error)
	ListDegraded(ctx context.Context) ([]model.Item, error)
}

// ItemFilter 物料列表过滤条件
type ItemFilter struct {
	ItemTypeCode string
	NodeCode     string
	Keyword      string
	Page         int
	PageSize     int
}

type itemRepo struct {
	db *gorm.DB
}

// NewItemRepository 创建物料仓储
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepo{db: db}
}

func (r *itemRepo) Create(ctx context.Context, item *model.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *itemRepo) Update(ctx context.Context, item *model.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *itemRepo) GetByID(ctx context.Context, id int64) (*model.Item, error) {
	var item model.Item
	err := r.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepo) GetByUID(ctx context.Context, uid string) (*model.Item, error) {
	var item model.Item
	err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepo) List(ctx context.Context, filter ItemFilter) ([]model.Item, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Item{})

	if filter.ItemTypeCode != "" {
		query = query.Where("item_type_code = ?", filter.ItemTypeCode)
	}
	if filter.NodeCode != "" {
		query = query.Where("node_code = ?", filter.NodeCode)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		query = query.Where("name LIKE ? OR sku LIKE ? OR uid LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var items []model.Item
	err := query.Order("updated_at DESC").Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *itemRepo) CountActiveByNode(ctx context.Context, level int, nodeCode string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Item{}).
		Where("node_level = ? AND node_code = ? AND is_active = ?", level, nodeCode, true).
		Count(&count).Error
	return count, err
}

func (r *itemRepo) CountByItemType(ctx context.Context, itemTypeCode string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Item{}).
		Where("item_type_code = ?", itemTypeCode).
		Count(&count).Error
	return count, err
}

// ListDegraded 降级签发的物料，对账任务用
func (r *itemRepo) ListDegraded(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	err := r.db.WithContext(ctx).
		Where("sequence_degraded = ?", true).
		Order("created_at ASC").Find(&items).Error
	return items, err
}
