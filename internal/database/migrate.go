package database

import (
	"github.com/algopath/community-bot/internal/domain"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.AllowedEmail{},
		&domain.Member{},
		&domain.Doubt{},
		&domain.Challenge{},
		&domain.Submission{},
		&domain.Vote{},
	)
}
