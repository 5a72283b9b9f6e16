package repository

import (
	"confraria/internal/models"

	"gorm.io/gorm"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(p *models.Profile) error {
	return r.db.Create(p).Error
}

func (r *ProfileRepository) GetByID(id uint) (*models.Profile, error) {
	var p models.Profile
	err := r.db.First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) GetByPhone(phone string) (*models.Profile, error) {
	var p models.Profile
	err := r.db.Where("phone = ?", phone).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) Update(p *models.Profile) error {
	return r.db.Save(p).Error
}
