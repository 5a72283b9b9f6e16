package models

import "time"

// RateLimitEvent records one consumed unit of a rate-limited action. Counting
// rows inside the window gives a limit that holds across server instances,
// unlike the in-memory IP limiter.
type RateLimitEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"size:128;not null;index" json:"key"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (RateLimitEvent) TableName() string { return "rate_limit_events" }
