package repository

import (
	"confraria/internal/domain"
	"confraria/internal/models"

	"gorm.io/gorm"
)

type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// CreateWithQuotas inserts the group and its quota slots numbered 1..N in one
// transaction.
func (r *GroupRepository) CreateWithQuotas(g *models.Group) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(g).Error; err != nil {
			return err
		}
		quotas := make([]models.Quota, 0, g.TotalQuotas)
		for n := 1; n <= g.TotalQuotas; n++ {
			quotas = append(quotas, models.Quota{
				GroupID:     g.ID,
				QuotaNumber: n,
				Status:      domain.QuotaActive,
			})
		}
		return tx.Create(&quotas).Error
	})
}

func (r *GroupRepository) GetByID(id uint) (*models.Group, error) {
	var g models.Group
	err := r.db.First(&g, id).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GroupRepository) GetWithQuotas(id uint) (*models.Group, error) {
	var g models.Group
	err := r.db.Preload("Quotas", func(db *gorm.DB) *gorm.DB {
		return db.Order("quota_number asc")
	}).Preload("Quotas.Member").First(&g, id).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GroupRepository) List() ([]models.Group, error) {
	var groups []models.Group
	err := r.db.Order("id desc").Find(&groups).Error
	return groups, err
}
