package model

import (
	"time"

	"gorm.io/gorm"
)

type BaseModel struct {
	ID        int64          `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// AuditMixin 审计字段
type AuditMixin struct {
	CreatedBy string `gorm:"size:50" json:"created_by"`
	UpdatedBy string `gorm:"size:50" json:"updated_by"`
}
