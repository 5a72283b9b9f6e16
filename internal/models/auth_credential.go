package models

import "time"

// AuthCredential backs the local (GORM) auth provider. In deployments that use
// a hosted auth service this table is unused; the provider owns identity and
// this system only keeps the PreRegistrationAttempt hash for audit.
type AuthCredential struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ProfileID    uint      `gorm:"uniqueIndex;not null" json:"profile_id"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (AuthCredential) TableName() string { return "auth_credentials" }
