package dto

// SaveItemTypeReq 物料类型创建/更新请求
type SaveItemTypeReq struct {
	Code                string `json:"code" binding:"max=2"`
	Name                string `json:"name" binding:"required,max=100"`
	Description         string `json:"description" binding:"max=500"`
	AllowPurchase       bool   `json:"allow_purchase"`
	AllowSale           bool   `json:"allow_sale"`
	TrackInventory      bool   `json:"track_inventory"`
	RequireQualityCheck bool   `json:"require_quality_check"`
	DefaultUOM          string `json:"default_uom"`
	SortOrder           int    `json:"sort_order"`
}
