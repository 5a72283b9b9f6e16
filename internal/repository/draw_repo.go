package repository

import (
	"errors"

	"confraria/internal/models"

	"gorm.io/gorm"
)

type DrawRepository struct {
	db *gorm.DB
}

func NewDrawRepository(db *gorm.DB) *DrawRepository {
	return &DrawRepository{db: db}
}

// Current returns the group's active (not soft-deleted) draw, or nil.
func (r *DrawRepository) Current(groupID uint) (*models.Draw, error) {
	var d models.Draw
	err := r.db.Preload("WinningQuota").Preload("WinningQuota.Member").
		Where("group_id = ?", groupID).
		Order("created_at desc").
		First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// SoftDeleteCurrent marks any active draw for the group deleted. Gorm's
// soft-delete handles the deleted_at stamp.
func (r *DrawRepository) SoftDeleteCurrent(groupID uint) error {
	return r.db.Where("group_id = ?", groupID).Delete(&models.Draw{}).Error
}
