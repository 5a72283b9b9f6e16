package database

import (
	"log"

	"confraria/config"
	"confraria/internal/domain"
	"confraria/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Profile{},
		&models.Group{},
		&models.Quota{},
		&models.Draw{},
		&models.PreRegistrationAttempt{},
		&models.AuthCredential{},
		&models.AuditLog{},
		&models.RateLimitEvent{},
	)
}

// SeedAdmin creates the bootstrap admin profile and local credential if none
// exists yet. Phone/password come from env in production; the defaults are for
// development only.
func SeedAdmin(db *gorm.DB, phone, password string) {
	var count int64
	db.Model(&models.Profile{}).Where("role = ?", domain.RoleAdmin).Count(&count)
	if count > 0 {
		return
	}
	admin := models.Profile{FullName: "Administrador", Phone: phone, Role: domain.RoleAdmin}
	if err := db.Create(&admin).Error; err != nil {
		log.Printf("[seed] admin profile: %v", err)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[seed] admin hash: %v", err)
		return
	}
	if err := db.Create(&models.AuthCredential{ProfileID: admin.ID, PasswordHash: string(hash)}).Error; err != nil {
		log.Printf("[seed] admin credential: %v", err)
		return
	}
	log.Printf("[seed] admin profile created (phone=%s)", phone)
}
