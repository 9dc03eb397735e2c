package model

import (
	"strings"

	"gorm.io/datatypes"
)

// ==================== 层级常量 ====================

// 五级商品分类：Category → Sub-Category → Division → Class → Sub-Class
const (
	LevelCategory    = 1
	LevelSubCategory = 2
	LevelDivision    = 3
	LevelClass       = 4
	LevelSubClass    = 5

	MaxLevel = LevelSubClass
)

// DefaultLevelLabels 各层级默认显示名，可被 Level 1 节点的 LevelNames 覆盖
var DefaultLevelLabels = map[string]string{
	"l1": "Category",
	"l2": "Sub-Category",
	"l3": "Division",
	"l4": "Class",
	"l5": "Sub-Class",
}

// ==================== 分类节点 ====================

// TaxonomyNode 分类树节点，五级共用一张表
// 编码 2-4 位大写字母数字，同级同父下唯一（不区分大小写，入库前统一大写）
type TaxonomyNode struct {
	BaseModel
	AuditMixin

	Level int    `gorm:"not null;index;uniqueIndex:idx_level_parent_code" json:"level"`
	Code  string `gorm:"size:4;not null;uniqueIndex:idx_level_parent_code" json:"code"`
	Name  string `gorm:"size:100;not null" json:"name"`

	Description string `gorm:"size:255" json:"description"`

	// 父节点编码，Level 1 为空
	ParentCode string `gorm:"size:4;index;uniqueIndex:idx_level_parent_code" json:"parent_code"`

	// 冗余的祖先编码，move 时由目标节点重算
	// 后代节点不存路径，路径按 ParentCode 现算
	CategoryCode    string `gorm:"size:4;index" json:"category_code"`
	SubCategoryCode string `gorm:"size:4;index" json:"sub_category_code"`
	DivisionCode    string `gorm:"size:4;index" json:"division_code"`
	ClassCode       string `gorm:"size:4;index" json:"class_code"`

	// 仅 Level 1 有效
	ItemTypeCode string            `gorm:"size:2;index" json:"item_type_code"`
	LevelNames   datatypes.JSONMap `gorm:"type:jsonb" json:"level_names"`

	// 仅 Level 5 有效，SKU 中的分类段
	SkuCategoryCode string `gorm:"size:4" json:"sku_category_code"`

	SortOrder  int  `gorm:"default:0" json:"sort_order"`
	IsActive   bool `gorm:"default:true;index" json:"is_active"`
	ChildCount int  `gorm:"default:0" json:"child_count"`

	// 乐观锁版本号，move 与 level_names 回写用
	Version int64 `gorm:"default:1" json:"-"`
}

func (TaxonomyNode) TableName() string {
	return "taxonomy_nodes"
}

// IsRoot Level 1 节点不可移动
func (n *TaxonomyNode) IsRoot() bool {
	return n.Level == LevelCategory
}

// Same 节点身份按 (level, code) 判定
func (n *TaxonomyNode) Same(other *TaxonomyNode) bool {
	if other == nil {
		return false
	}
	return n.Level == other.Level && strings.EqualFold(n.Code, other.Code)
}

// AncestorCodes 冗余祖先编码，根在前，不含自身
func (n *TaxonomyNode) AncestorCodes() []string {
	all := []string{n.CategoryCode, n.SubCategoryCode, n.DivisionCode, n.ClassCode}
	if n.Level <= LevelCategory {
		return nil
	}
	return all[:n.Level-1]
}

// AncestorCodeAt 指定层级的祖先编码，越界返回空串
func (n *TaxonomyNode) AncestorCodeAt(level int) string {
	switch level {
	case LevelCategory:
		return n.CategoryCode
	case LevelSubCategory:
		return n.SubCategoryCode
	case LevelDivision:
		return n.DivisionCode
	case LevelClass:
		return n.ClassCode
	}
	return ""
}

// PathEntry 路径上的一个节点
type PathEntry struct {
	Level int    `json:"level"`
	Code  string `json:"code"`
	Name  string `json:"name"`
}
