package database

import (
	"log"

	"giveflow/config"
	"giveflow/internal/domain"
	"giveflow/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error), // Only log errors, not every SQL query
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
		&models.User{},
		&models.Charity{},
		&models.Campaign{},
		&models.Donation{},
		&models.Payout{},
		&models.AuditLog{},
	)
}

// SeedAdmin creates the admin account from config if it does not exist yet.
// Skipped when no admin password is configured.
func SeedAdmin(db *gorm.DB, cfg *config.AdminConfig) {
	if cfg.Password == "" {
		log.Printf("[Seed] ADMIN_PASSWORD not set, skipping admin seed")
		return
	}
	var existing models.User
	if err := db.Where("email = ?", cfg.Email).First(&existing).Error; err == nil {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[Seed] bcrypt: %v", err)
		return
	}
	u := models.User{
		Name:         "Administrator",
		Email:        cfg.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}
	if err := db.Create(&u).Error; err != nil {
		log.Printf("[Seed] create admin: %v", err)
		return
	}
	log.Printf("[Seed] admin account created: %s", cfg.Email)
}
