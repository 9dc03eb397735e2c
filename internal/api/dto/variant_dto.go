package dto

import "item_taxonomy_v1_202603/internal/model"

// SaveVariantGroupReq 变体组创建/更新请求，成员全量替换
type SaveVariantGroupReq struct {
	GroupCode    string               `json:"group_code" binding:"required,max=20"`
	GroupName    string               `json:"group_name" binding:"required,max=100"`
	Description  string               `json:"description" binding:"max=500"`
	Members      []model.VariantValue `json:"members" binding:"required,min=1"`
	DisplayOrder int                  `json:"display_order"`
}
