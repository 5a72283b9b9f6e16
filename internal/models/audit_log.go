package models

import "time"

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProfileID uint      `gorm:"index" json:"profile_id"`
	Action    string    `gorm:"size:64;not null;index" json:"action"`
	Detail    string    `gorm:"type:text" json:"detail"` // JSON
	IP        string    `gorm:"size:45" json:"ip"`
	CreatedAt time.Time `json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }
