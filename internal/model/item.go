package model

// Item 物料档案（最小集）
// UID 签发后永不变；SKU 在 Finalized 前可随分类/颜色/尺码变化重算
type Item struct {
	BaseModel
	AuditMixin

	Name string `gorm:"size:200;not null" json:"name"`

	ItemTypeCode string `gorm:"size:2;not null;index" json:"item_type_code"`

	// 归属的最深分类节点（规格配置按它解析）
	NodeLevel int    `gorm:"not null" json:"node_level"`
	NodeCode  string `gorm:"size:4;not null;index" json:"node_code"`

	// 变体选择，存人读名称，SKU 段由名称派生
	ColourName string `gorm:"size:50" json:"colour_name"`
	SizeName   string `gorm:"size:50" json:"size_name"`

	SKU string `gorm:"size:30;index" json:"sku"`
	UID string `gorm:"size:12;uniqueIndex" json:"uid"`

	// 签发时分配的序列号，重算 SKU 时复用，不再申请
	Sequence int64 `gorm:"not null" json:"sequence"`

	// 降级签发标记，计数器不可用时置位，见 DegradedSequenceWarning
	SequenceDegraded bool `gorm:"default:false" json:"sequence_degraded"`

	Finalized bool `gorm:"default:false;index" json:"finalized"`
	IsActive  bool `gorm:"default:true" json:"is_active"`
}

func (Item) TableName() string {
	return "items"
}
