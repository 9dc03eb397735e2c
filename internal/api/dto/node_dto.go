package dto

import "item_taxonomy_v1_202603/internal/model"

// ==================== 请求 DTO ====================

// CreateNodeReq 创建分类节点请求
type CreateNodeReq struct {
	Level       int    `json:"level" binding:"required,gte=1,lte=5"`
	Code        string `json:"code" binding:"required,max=4"`
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=500"`

	// Level ≥ 2 时祖先链必须给全
	CategoryCode    string `json:"category_code"`
	SubCategoryCode string `json:"sub_category_code"`
	DivisionCode    string `json:"division_code"`
	ClassCode       string `json:"class_code"`

	// 仅 Level 1
	ItemTypeCode string            `json:"item_type_code"`
	LevelNames   map[string]string `json:"level_names"`

	// 仅 Level 5，不填按名称派生
	SkuCategoryCode string `json:"sku_category_code"`

	SortOrder int `json:"sort_order"`
}

// UpdateNodeReq 更新分类节点请求
type UpdateNodeReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	SortOrder   *int    `json:"sort_order"`

	LevelNames map[string]string `json:"level_names"`
}

// MoveNodeReq 移动请求
type MoveNodeReq struct {
	TargetParentCode string `json:"target_parent_code" binding:"required,max=4"`
	DryRun           bool   `json:"dry_run"`
}

// DeactivateNodeReq 停用请求
type DeactivateNodeReq struct {
	Cascade bool `json:"cascade"`
}

// ==================== 响应 DTO ====================

// NodeResp 节点详情
type NodeResp struct {
	ID          int64  `json:"id"`
	Level       int    `json:"level"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`

	ParentCode      string `json:"parent_code"`
	CategoryCode    string `json:"category_code"`
	SubCategoryCode string `json:"sub_category_code"`
	DivisionCode    string `json:"division_code"`
	ClassCode       string `json:"class_code"`

	ItemTypeCode    string            `json:"item_type_code,omitempty"`
	LevelNames      map[string]string `json:"level_names,omitempty"`
	SkuCategoryCode string            `json:"sku_category_code,omitempty"`

	SortOrder  int  `json:"sort_order"`
	IsActive   bool `json:"is_active"`
	ChildCount int  `json:"child_count"`

	Path     []model.PathEntry `json:"path,omitempty"`
	PathText string            `json:"path_text,omitempty"`
}

// NodeListResp 节点列表
type NodeListResp struct {
	Code     int        `json:"code"`
	Message  string     `json:"message"`
	Data     []NodeResp `json:"data"`
	Total    int64      `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}
