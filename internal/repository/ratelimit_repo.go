package repository

import (
	"time"

	"confraria/internal/models"

	"gorm.io/gorm"
)

// RateLimitRepository counts consumed units per key in a sliding window,
// persisted so limits hold across server instances.
type RateLimitRepository struct {
	db *gorm.DB
}

func NewRateLimitRepository(db *gorm.DB) *RateLimitRepository {
	return &RateLimitRepository{db: db}
}

// Allow consumes one unit for key if fewer than limit units were consumed in
// the window ending now.
func (r *RateLimitRepository) Allow(key string, limit int, window time.Duration) (bool, error) {
	cutoff := time.Now().Add(-window)
	var count int64
	err := r.db.Model(&models.RateLimitEvent{}).
		Where("`key` = ? AND created_at > ?", key, cutoff).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count >= int64(limit) {
		return false, nil
	}
	return true, r.db.Create(&models.RateLimitEvent{Key: key}).Error
}

// Prune deletes events older than the given age. Called opportunistically.
func (r *RateLimitRepository) Prune(age time.Duration) error {
	cutoff := time.Now().Add(-age)
	return r.db.Where("created_at < ?", cutoff).Delete(&models.RateLimitEvent{}).Error
}
