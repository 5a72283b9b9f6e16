package models

import (
	"time"
)

type Quota struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	GroupID     uint   `gorm:"not null;index;uniqueIndex:idx_group_number" json:"group_id"`
	QuotaNumber int    `gorm:"not null;uniqueIndex:idx_group_number" json:"quota_number"`
	// Status only ever moves ACTIVE -> CONTEMPLATED, and only via a committed draw.
	Status         string     `gorm:"size:20;not null;default:'ACTIVE';index" json:"status"`
	MemberID       *uint      `gorm:"index" json:"member_id"`
	ContemplatedAt *time.Time `json:"contemplated_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Member *Profile `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}

func (Quota) TableName() string { return "quotas" }
