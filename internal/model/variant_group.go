package model

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// VariantType 变体值类型
type VariantType string

const (
	VariantColour   VariantType = "COLOUR"
	VariantSize     VariantType = "SIZE"
	VariantUOM      VariantType = "UOM"
	VariantBrand    VariantType = "BRAND"
	VariantSupplier VariantType = "SUPPLIER"
)

func (t VariantType) Valid() bool {
	switch t {
	case VariantColour, VariantSize, VariantUOM, VariantBrand, VariantSupplier:
		return true
	}
	return false
}

// VariantValue 组内的一个变体值
type VariantValue struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// VariantGroup 变体值分组（THREAD_COLORS、APPAREL_SIZES...）
// 规格配置按 group_code 引用，不拥有
type VariantGroup struct {
	BaseModel
	AuditMixin

	VariantType VariantType `gorm:"size:10;not null;index:idx_type_group,unique" json:"variant_type"`
	GroupCode   string      `gorm:"size:30;not null;index:idx_type_group,unique" json:"group_code"`
	GroupName   string      `gorm:"size:100;not null" json:"group_name"`
	Description string      `gorm:"size:255" json:"description"`

	// 成员值列表
	Members datatypes.JSON `gorm:"type:jsonb" json:"members"`

	DisplayOrder int  `gorm:"default:0" json:"display_order"`
	IsActive     bool `gorm:"default:true" json:"is_active"`
}

func (VariantGroup) TableName() string {
	return "variant_groups"
}

// DecodeMembers 反序列化成员值
func (g *VariantGroup) DecodeMembers() ([]VariantValue, error) {
	if len(g.Members) == 0 {
		return nil, nil
	}
	var values []VariantValue
	if err := json.Unmarshal(g.Members, &values); err != nil {
		return nil, err
	}
	return values, nil
}

// EncodeMembers 序列化成员值
func (g *VariantGroup) EncodeMembers(values []VariantValue) error {
	data, err := json.Marshal(values)
	if err != nil {
		return err
	}
	g.Members = data
	return nil
}
