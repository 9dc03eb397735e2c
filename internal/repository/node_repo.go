package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"item_taxonomy_v1_202603/internal/model"
)

// ==================== 接口定义 ====================

// NodeFilter 节点列表过滤条件
type NodeFilter struct {
	Level           int
	ParentCode      string
	Keyword         string // 匹配 code / name
	IncludeInactive bool
	Page            int
	PageSize        int
}

// NodeRepository 分类节点仓储接口
type NodeRepository interface {
	Create(ctx context.Context, node *model.TaxonomyNode) error
	Update(ctx context.Context, node *model.TaxonomyNode) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error

	// 查不到返回 (nil, nil)
	GetByLevelCode(ctx context.Context, level int, code string) (*model.TaxonomyNode, error)

	ExistsInParent(ctx context.Context, level int, parentCode, code string) (bool, error)
	List(ctx context.Context, filter NodeFilter) ([]model.TaxonomyNode, int64, error)
	ListChildren(ctx context.Context, parentLevel int, parentCode string, activeOnly bool) ([]model.TaxonomyNode, error)
	ListAll(ctx context.Context, activeOnly bool) ([]model.TaxonomyNode, error)
	CountActiveChildren(ctx context.Context, level int, code string) (int64, error)
	CountByItemType(ctx context.Context, itemTypeCode string) (int64, error)

	// 沿 parent_code 逐层停用/启用整棵子树
	SetSubtreeActive(ctx context.Context, node *model.TaxonomyNode, active bool) (int64, error)

	// 乐观锁更新：version 不匹配时返回 0 行
	UpdateWithVersion(ctx context.Context, node *model.TaxonomyNode, fields map[string]interface{}) (int64, error)

	// 事务
	WithTx(tx *gorm.DB) NodeRepository
	Transaction(ctx context.Context, fn func(txRepo NodeRepository) error) error
}

// ==================== 仓储实现 ====================

type nodeRepo struct {
	db *gorm.DB
}

// NewNodeRepository 创建节点仓储
func NewNodeRepository(db *gorm.DB) NodeRepository {
	return &nodeRepo{db: db}
}

func (r *nodeRepo) Create(ctx context.Context, node *model.TaxonomyNode) error {
	return r.db.WithContext(ctx).Create(node).Error
}

func (r *nodeRepo) Update(ctx context.Context, node *model.TaxonomyNode) error {
	return r.db.WithContext(ctx).Save(node).Error
}

func (r *nodeRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.TaxonomyNode{}).Where("id = ?", id).Updates(fields).Error
}

func (r *nodeRepo) GetByLevelCode(ctx context.Context, level int, code string) (*model.TaxonomyNode, error) {
	var node model.TaxonomyNode
	err := r.db.WithContext(ctx).
		Where("level = ? AND code = ?", level, code).
		First(&node).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &node, nil
}

func (r *nodeRepo) ExistsInParent(ctx context.Context, level int, parentCode, code string) (bool, error) {
	var count int64
	// 编码入库前统一大写，等值比较即为不区分大小写
	err := r.db.WithContext(ctx).Model(&model.TaxonomyNode{}).
		Where("level = ? AND parent_code = ? AND code = ?", level, parentCode, code).
		Count(&count).Error
	return count > 0, err
}

func (r *nodeRepo) List(ctx context.Context, filter NodeFilter) ([]model.TaxonomyNode, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.TaxonomyNode{})

	if filter.Level > 0 {
		query = query.Where("level = ?", filter.Level)
	}
	if filter.ParentCode != "" {
		query = query.Where("parent_code = ?", filter.ParentCode)
	}
	if !filter.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		query = query.Where("code LIKE ? OR name LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var nodes []model.TaxonomyNode
	err := query.Order("level ASC, sort_order ASC, code ASC").Find(&nodes).Error
	if err != nil {
		return nil, 0, err
	}
	return nodes, total, nil
}

func (r *nodeRepo) ListChildren(ctx context.Context, parentLevel int, parentCode string, activeOnly bool) ([]model.TaxonomyNode, error) {
	query := r.db.WithContext(ctx).
		Where("level = ? AND parent_code = ?", parentLevel+1, parentCode)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var nodes []model.TaxonomyNode
	err := query.Order("sort_order ASC, code ASC").Find(&nodes).Error
	return nodes, err
}

func (r *nodeRepo) ListAll(ctx context.Context, activeOnly bool) ([]model.TaxonomyNode, error) {
	query := r.db.WithContext(ctx).Model(&model.TaxonomyNode{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var nodes []model.TaxonomyNode
	err := query.Order("level ASC, sort_order ASC, code ASC").Find(&nodes).Error
	return nodes, err
}

func (r *nodeRepo) CountActiveChildren(ctx context.Context, level int, code string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.TaxonomyNode{}).
		Where("level = ? AND parent_code = ? AND is_active = ?", level+1, code, true).
		Count(&count).Error
	return count, err
}

func (r *nodeRepo) CountByItemType(ctx context.Context, itemTypeCode string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.TaxonomyNode{}).
		Where("level = ? AND item_type_code = ?", model.LevelCategory, itemTypeCode).
		Count(&count).Error
	return count, err
}

func (r *nodeRepo) SetSubtreeActive(ctx context.Context, node *model.TaxonomyNode, active bool) (int64, error) {
	// 移动节点时不回写后代行的冗余祖先列，冗余列可能过期，
	// 只有 parent_code 始终是准的，沿它逐层下推
	var total int64
	frontier := []string{node.Code}
	for level := node.Level + 1; level <= model.LevelSubClass; level++ {
		var codes []string
		err := r.db.WithContext(ctx).Model(&model.TaxonomyNode{}).
			Where("level = ? AND parent_code IN ?", level, frontier).
			Pluck("code", &codes).Error
		if err != nil {
			return total, err
		}
		if len(codes) == 0 {
			break
		}
		res := r.db.WithContext(ctx).Model(&model.TaxonomyNode{}).
			Where("level = ? AND code IN ?", level, codes).
			Update("is_active", active)
		if res.Error != nil {
			return total, res.Error
		}
		total += res.RowsAffected
		frontier = codes
	}
	return total, nil
}

func (r *nodeRepo) UpdateWithVersion(ctx context.Context, node *model.TaxonomyNode, fields map[string]interface{}) (int64, error) {
	fields["version"] = node.Version + 1
	res := r.db.WithContext(ctx).Model(&model.TaxonomyNode{}).
		Where("id = ? AND version = ?", node.ID, node.Version).
		Updates(fields)
	return res.RowsAffected, res.Error
}

func (r *nodeRepo) WithTx(tx *gorm.DB) NodeRepository {
	return &nodeRepo{db: tx}
}

func (r *nodeRepo) Transaction(ctx context.Context, fn func(txRepo NodeRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&nodeRepo{db: tx})
	})
}

