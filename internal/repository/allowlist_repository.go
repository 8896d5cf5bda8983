package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/algopath/community-bot/internal/domain"
	"github.com/algopath/community-bot/internal/observability"
)

type AllowlistRepository interface {
	Contains(ctx context.Context, email string) (bool, error)
}

type GormAllowlistRepository struct{ db *gorm.DB }

func NewAllowlistRepository(db *gorm.DB) AllowlistRepository {
	return &GormAllowlistRepository{db: db}
}

func (r *GormAllowlistRepository) Contains(ctx context.Context, email string) (bool, error) {
	var entry domain.AllowedEmail
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.TrimSpace(strings.ToLower(email))).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "allowed_email", "contains", "not_found")
			return false, nil
		}
		observability.RecordRepositoryOperation(ctx, "allowed_email", "contains", "error")
		return false, err
	}
	observability.RecordRepositoryOperation(ctx, "allowed_email", "contains", "success")
	return true, nil
}
