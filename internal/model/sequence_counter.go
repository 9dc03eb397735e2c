package model

// SequenceCounter 物料序列号计数器，每个物料类型一条
// 同一类型下所有分类共用，只增不减
type SequenceCounter struct {
	BaseModel

	ItemTypeCode string `gorm:"size:2;not null;uniqueIndex" json:"item_type_code"`
	Value        int64  `gorm:"not null;default:0" json:"value"`
}

func (SequenceCounter) TableName() string {
	return "sequence_counters"
}
