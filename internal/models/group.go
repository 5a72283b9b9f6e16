package models

import (
	"time"

	"gorm.io/gorm"
)

type Group struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Name            string         `gorm:"size:255;not null" json:"name"`
	AssetValueCents int64          `gorm:"not null" json:"asset_value_cents"`
	MonthlyCents    int64          `gorm:"not null" json:"monthly_cents"`
	TotalQuotas     int            `gorm:"not null" json:"total_quotas"`
	AdjustmentType  string         `gorm:"size:20;default:'NONE'" json:"adjustment_type"` // NONE | FIXED | PERCENT
	AdjustmentValue float64        `gorm:"default:0" json:"adjustment_value"`
	// IsActive flips to false exactly when every quota is contemplated.
	IsActive  bool           `gorm:"default:true;index" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Quotas []Quota `gorm:"foreignKey:GroupID" json:"quotas,omitempty"`
}

func (Group) TableName() string { return "groups" }
