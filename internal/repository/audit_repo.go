package repository

import (
	"encoding/json"
	"log"

	"confraria/internal/models"

	"gorm.io/gorm"
)

type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Record writes an audit entry; failures are logged, never propagated, so the
// audited operation is not affected.
func (r *AuditLogRepository) Record(profileID uint, action, ip string, detail map[string]interface{}) {
	var detailJSON string
	if detail != nil {
		b, _ := json.Marshal(detail)
		detailJSON = string(b)
	}
	entry := models.AuditLog{ProfileID: profileID, Action: action, IP: ip, Detail: detailJSON}
	if err := r.db.Create(&entry).Error; err != nil {
		log.Printf("[audit] record %s: %v", action, err)
	}
}

func (r *AuditLogRepository) ListByAction(action string, limit int) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	err := r.db.Where("action = ?", action).Order("id desc").Limit(limit).Find(&entries).Error
	return entries, err
}
