package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"linklytics/config"
	"linklytics/models"
)

const connectRetries = 5

// Connect opens the Postgres connection and runs the schema migration.
// TranslateError lets callers match unique violations as
// gorm.ErrDuplicatedKey regardless of driver.
func Connect(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	var db *gorm.DB
	var err error
	for i := 0; i < connectRetries; i++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if err == nil {
			break
		}
		log.Warn("database connection failed, retrying",
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", connectRetries),
			zap.Error(err))
		time.Sleep(3 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Link{}, &models.Visit{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	log.Info("database ready")
	return db, nil
}
