package repository

import (
	"confraria/internal/domain"
	"confraria/internal/models"

	"gorm.io/gorm"
)

type QuotaRepository struct {
	db *gorm.DB
}

func NewQuotaRepository(db *gorm.DB) *QuotaRepository {
	return &QuotaRepository{db: db}
}

// Eligible returns the group's quotas still eligible for a draw (ACTIVE),
// member preloaded for display, ordered by quota number.
func (r *QuotaRepository) Eligible(groupID uint) ([]models.Quota, error) {
	var quotas []models.Quota
	err := r.db.Preload("Member").
		Where("group_id = ? AND status = ?", groupID, domain.QuotaActive).
		Order("quota_number asc").
		Find(&quotas).Error
	return quotas, err
}

func (r *QuotaRepository) GetByNumber(groupID uint, number int) (*models.Quota, error) {
	var q models.Quota
	err := r.db.Where("group_id = ? AND quota_number = ?", groupID, number).First(&q).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuotaRepository) AssignMember(groupID uint, number int, memberID *uint) error {
	res := r.db.Model(&models.Quota{}).
		Where("group_id = ? AND quota_number = ?", groupID, number).
		Update("member_id", memberID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *QuotaRepository) CountActive(groupID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Quota{}).
		Where("group_id = ? AND status = ?", groupID, domain.QuotaActive).
		Count(&count).Error
	return count, err
}
