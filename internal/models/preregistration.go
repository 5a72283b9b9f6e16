package models

import (
	"time"
)

// PreRegistrationAttempt is one outstanding temporary-credential issuance for
// a member. The most recently created attempt with a future expiration_date is
// the authoritative one; older rows stay as audit trail.
type PreRegistrationAttempt struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	MemberID              uint       `gorm:"not null;index" json:"member_id"`
	CreatedByAdminID      uint       `gorm:"not null" json:"created_by_admin_id"`
	TemporaryPasswordHash string     `gorm:"size:255;not null" json:"-"`
	PasswordGeneratedAt   time.Time  `gorm:"not null" json:"password_generated_at"`
	SendMethod            string     `gorm:"size:20;not null" json:"send_method"` // whatsapp | sms
	SendCount             int        `gorm:"default:0" json:"send_count"`
	LastSentAt            *time.Time `json:"last_sent_at"`
	// FirstAccessedAt is set at most once; it is the terminal marker of the
	// attempt's lifecycle.
	FirstAccessedAt   *time.Time `json:"first_accessed_at"`
	FirstAccessFromIP string     `gorm:"size:45" json:"first_access_from_ip"`
	AccessAttempts    int        `gorm:"default:0" json:"access_attempts"`
	MaxAccessAttempts int        `gorm:"default:5" json:"max_access_attempts"`
	LockedUntil       *time.Time `json:"locked_until"`
	ExpirationDate    time.Time  `gorm:"not null;index" json:"expiration_date"`
	Notes             string     `gorm:"type:text" json:"notes"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	Member *Profile `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}

func (PreRegistrationAttempt) TableName() string { return "pre_registration_attempts" }

func (a *PreRegistrationAttempt) Expired(t time.Time) bool {
	return !a.ExpirationDate.After(t)
}

func (a *PreRegistrationAttempt) Locked(t time.Time) bool {
	return a.LockedUntil != nil && a.LockedUntil.After(t)
}

func (a *PreRegistrationAttempt) Accessed() bool {
	return a.FirstAccessedAt != nil
}
