package model

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// ==================== 维度与字段类型 ====================

// DimensionKey 变体维度
type DimensionKey string

const (
	DimColour   DimensionKey = "colour"
	DimSize     DimensionKey = "size"
	DimUOM      DimensionKey = "uom"
	DimBrand    DimensionKey = "brand"
	DimSupplier DimensionKey = "supplier"
)

// AllDimensions 固定的五个维度
var AllDimensions = []DimensionKey{DimColour, DimSize, DimUOM, DimBrand, DimSupplier}

func (d DimensionKey) Valid() bool {
	switch d {
	case DimColour, DimSize, DimUOM, DimBrand, DimSupplier:
		return true
	}
	return false
}

// FieldType 自定义字段类型，封闭集合
type FieldType string

const (
	FieldText     FieldType = "TEXT"
	FieldNumber   FieldType = "NUMBER"
	FieldDropdown FieldType = "DROPDOWN"
	FieldCheckbox FieldType = "CHECKBOX"
	FieldDate     FieldType = "DATE"
)

func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldNumber, FieldDropdown, FieldCheckbox, FieldDate:
		return true
	}
	return false
}

// ==================== 配置结构 ====================

// DimensionConfig 单个变体维度的配置
type DimensionConfig struct {
	Enabled    bool     `json:"enabled"`
	Required   bool     `json:"required"`
	GroupCodes []string `json:"group_codes,omitempty"`
}

// CustomField 自定义字段定义
type CustomField struct {
	FieldCode    string    `json:"field_code"`
	FieldName    string    `json:"field_name"`
	FieldType    FieldType `json:"field_type"`
	Required     bool      `json:"required"`
	Options      []string  `json:"options,omitempty"` // DROPDOWN 用
	DisplayOrder int       `json:"display_order"`
}

// SpecConfig 一个节点的完整规格配置
// 配置只属于节点自身，不沿层级继承
type SpecConfig struct {
	NodeCode     string                           `json:"node_code"`
	Dimensions   map[DimensionKey]DimensionConfig `json:"dimensions"`
	CustomFields []CustomField                    `json:"custom_fields"`
}

// DefaultSpecConfig 全部维度关闭的空配置
func DefaultSpecConfig(nodeCode string) *SpecConfig {
	dims := make(map[DimensionKey]DimensionConfig, len(AllDimensions))
	for _, d := range AllDimensions {
		dims[d] = DimensionConfig{}
	}
	return &SpecConfig{NodeCode: nodeCode, Dimensions: dims}
}

// Dimension 取指定维度配置，缺失按关闭处理
func (s *SpecConfig) Dimension(key DimensionKey) DimensionConfig {
	if s == nil || s.Dimensions == nil {
		return DimensionConfig{}
	}
	return s.Dimensions[key]
}

// ==================== 持久化模型 ====================

// SpecificationConfig 分类规格配置表
type SpecificationConfig struct {
	BaseModel
	AuditMixin

	NodeCode  string `gorm:"size:4;not null;uniqueIndex" json:"node_code"`
	NodeLevel int    `gorm:"not null" json:"node_level"`

	Dimensions   datatypes.JSON `gorm:"type:jsonb" json:"dimensions"`
	CustomFields datatypes.JSON `gorm:"type:jsonb" json:"custom_fields"`

	IsActive bool `gorm:"default:true" json:"is_active"`
}

func (SpecificationConfig) TableName() string {
	return "category_specifications"
}

// Decode 反序列化为领域配置
func (m *SpecificationConfig) Decode() (*SpecConfig, error) {
	cfg := DefaultSpecConfig(m.NodeCode)
	if len(m.Dimensions) > 0 {
		if err := json.Unmarshal(m.Dimensions, &cfg.Dimensions); err != nil {
			return nil, err
		}
	}
	if len(m.CustomFields) > 0 {
		if err := json.Unmarshal(m.CustomFields, &cfg.CustomFields); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Encode 序列化领域配置
func (m *SpecificationConfig) Encode(cfg *SpecConfig) error {
	dims, err := json.Marshal(cfg.Dimensions)
	if err != nil {
		return err
	}
	fields, err := json.Marshal(cfg.CustomFields)
	if err != nil {
		return err
	}
	m.NodeCode = cfg.NodeCode
	m.Dimensions = dims
	m.CustomFields = fields
	return nil
}
