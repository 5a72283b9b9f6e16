package authprovider

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// GormProvider is the local identity backend: bcrypt hashes in the
// auth_credentials table, joined to profiles by phone. Used in development and
// in deployments that do not delegate login to a hosted service.
type GormProvider struct {
	db *gorm.DB
}

func NewGormProvider(db *gorm.DB) *GormProvider {
	return &GormProvider{db: db}
}

type credentialRow struct {
	ProfileID    uint
	PasswordHash string
}

func (p *GormProvider) UpdatePassword(ctx context.Context, profileID uint, plaintext string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	db := p.db.WithContext(ctx)
	var row credentialRow
	err = db.Table("auth_credentials").Where("profile_id = ?", profileID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Table("auth_credentials").Create(map[string]interface{}{
			"profile_id":    profileID,
			"password_hash": string(hash),
		}).Error
	}
	if err != nil {
		return err
	}
	return db.Table("auth_credentials").Where("profile_id = ?", profileID).
		Update("password_hash", string(hash)).Error
}

func (p *GormProvider) SignIn(ctx context.Context, phone, plaintext string) (uint, error) {
	db := p.db.WithContext(ctx)
	var profile struct{ ID uint }
	err := db.Table("profiles").Select("id").
		Where("phone = ? AND deleted_at IS NULL", phone).Take(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrInvalidCredentials
	}
	if err != nil {
		return 0, err
	}
	var row credentialRow
	err = db.Table("auth_credentials").Where("profile_id = ?", profile.ID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrInvalidCredentials
	}
	if err != nil {
		return 0, err
	}
	if bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(plaintext)) != nil {
		return 0, ErrInvalidCredentials
	}
	return profile.ID, nil
}
