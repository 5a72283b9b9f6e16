package repository

import (
	"time"

	"confraria/internal/models"

	"gorm.io/gorm"
)

type PreRegistrationRepository struct {
	db *gorm.DB
}

func NewPreRegistrationRepository(db *gorm.DB) *PreRegistrationRepository {
	return &PreRegistrationRepository{db: db}
}

func (r *PreRegistrationRepository) Create(a *models.PreRegistrationAttempt) error {
	return r.db.Create(a).Error
}

func (r *PreRegistrationRepository) GetByID(id uint) (*models.PreRegistrationAttempt, error) {
	var a models.PreRegistrationAttempt
	err := r.db.Preload("Member").First(&a, id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// LatestActiveForMember returns the authoritative attempt: the most recently
// created one whose expiration is still in the future.
func (r *PreRegistrationRepository) LatestActiveForMember(memberID uint, now time.Time) (*models.PreRegistrationAttempt, error) {
	var a models.PreRegistrationAttempt
	err := r.db.Where("member_id = ? AND expiration_date > ?", memberID, now).
		Order("created_at desc, id desc").
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PreRegistrationRepository) Update(a *models.PreRegistrationAttempt) error {
	return r.db.Save(a).Error
}

// MarkFirstAccess sets the terminal first-access marker, but only if it is
// still unset. Returns true when this call performed the write; a false return
// with nil error means the marker was already set (idempotent no-op).
func (r *PreRegistrationRepository) MarkFirstAccess(id uint, ip string, at time.Time) (bool, error) {
	res := r.db.Model(&models.PreRegistrationAttempt{}).
		Where("id = ? AND first_accessed_at IS NULL", id).
		Updates(map[string]interface{}{
			"first_accessed_at":    at,
			"first_access_from_ip": ip,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PreRegistrationRepository) ListForMember(memberID uint) ([]models.PreRegistrationAttempt, error) {
	var attempts []models.PreRegistrationAttempt
	err := r.db.Where("member_id = ?", memberID).Order("created_at desc, id desc").Find(&attempts).Error
	return attempts, err
}
