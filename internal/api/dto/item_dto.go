package dto

// CreateItemReq 物料建档请求
type CreateItemReq struct {
	Name         string `json:"name" binding:"required,max=200"`
	ItemTypeCode string `json:"item_type_code" binding:"required,max=2"`
	NodeLevel    int    `json:"node_level" binding:"required,gte=1,lte=5"`
	NodeCode     string `json:"node_code" binding:"required,max=4"`
	ColourName   string `json:"colour_name"`
	SizeName     string `json:"size_name"`
}

// UpdateSelectionReq 定稿前改选请求
type UpdateSelectionReq struct {
	NodeLevel  *int    `json:"node_level"`
	NodeCode   *string `json:"node_code"`
	ColourName *string `json:"colour_name"`
	SizeName   *string `json:"size_name"`
}

// PreviewSKUReq SKU 预览请求，不落库不占号
type PreviewSKUReq struct {
	ItemTypeCode string `json:"item_type_code" binding:"required,max=2"`
	NodeLevel    int    `json:"node_level" binding:"required,gte=1,lte=5"`
	NodeCode     string `json:"node_code" binding:"required,max=4"`
	ColourName   string `json:"colour_name"`
	SizeName     string `json:"size_name"`
	Sequence     int64  `json:"sequence"`
}
