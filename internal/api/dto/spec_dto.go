package dto

import "item_taxonomy_v1_202603/internal/model"

// SetSpecConfigReq 规格配置全量替换请求
// 没出现的维度和字段会被清掉
type SetSpecConfigReq struct {
	NodeLevel    int                                          `json:"node_level" binding:"required,gte=1,lte=5"`
	Dimensions   map[model.DimensionKey]model.DimensionConfig `json:"dimensions"`
	CustomFields []model.CustomField                          `json:"custom_fields"`
}
