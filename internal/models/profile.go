package models

import (
	"time"

	"confraria/internal/domain"

	"gorm.io/gorm"
)

type Profile struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	FullName      string         `gorm:"size:255;not null" json:"full_name"`
	Phone         string         `gorm:"uniqueIndex;size:20;not null" json:"phone"` // digits only, canonical form
	Role          string         `gorm:"size:20;not null;index" json:"role"`        // MEMBER | ADMIN
	PreRegistered bool           `gorm:"default:false" json:"pre_registered"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Profile) TableName() string { return "profiles" }

func (p *Profile) IsAdmin() bool { return p.Role == domain.RoleAdmin }
