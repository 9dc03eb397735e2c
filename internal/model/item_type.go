package model

// ItemType 物料类型主数据
// 编码固定 2 位（FG 成品、GF 坯布、TR 辅料...），有物料引用后不可改
type ItemType struct {
	BaseModel
	AuditMixin

	Code        string `gorm:"size:2;not null;uniqueIndex" json:"code"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`

	AllowPurchase       bool `gorm:"default:true" json:"allow_purchase"`
	AllowSale           bool `gorm:"default:false" json:"allow_sale"`
	TrackInventory      bool `gorm:"default:true" json:"track_inventory"`
	RequireQualityCheck bool `gorm:"default:false" json:"require_quality_check"`

	DefaultUOM string `gorm:"size:10;default:PCS" json:"default_uom"`
	SortOrder  int    `gorm:"default:0" json:"sort_order"`
	IsActive   bool   `gorm:"default:true" json:"is_active"`
}

func (ItemType) TableName() string {
	return "item_types"
}
