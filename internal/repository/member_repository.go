package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/algopath/community-bot/internal/domain"
	"github.com/algopath/community-bot/internal/observability"
)

var ErrOTPMismatch = errors.New("invalid or expired otp")

type MemberRepository interface {
	// UpsertPendingVerification records a fresh OTP for the email.
	// A pending code already stored for that email is overwritten
	// and thereby invalidated.
	UpsertPendingVerification(ctx context.Context, member *domain.Member) error
	// FindByOTP returns the member matching the caller's Discord ID
	// and a non-expired code, or ErrOTPMismatch.
	FindByOTP(ctx context.Context, discordID, code string, now time.Time) (*domain.Member, error)
	MarkVerified(ctx context.Context, discordID string) error
}

type GormMemberRepository struct{ db *gorm.DB }

func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &GormMemberRepository{db: db}
}

func (r *GormMemberRepository) UpsertPendingVerification(ctx context.Context, member *domain.Member) error {
	member.Email = strings.TrimSpace(strings.ToLower(member.Email))
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"discord_id", "otp", "otp_expires", "updated_at"}),
	}).Create(member).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "member", "upsert_pending", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "member", "upsert_pending", "success")
	return nil
}

func (r *GormMemberRepository) FindByOTP(ctx context.Context, discordID, code string, now time.Time) (*domain.Member, error) {
	var member domain.Member
	err := r.db.WithContext(ctx).
		Where("discord_id = ? AND otp = ? AND otp_expires > ?", discordID, code, now).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "member", "find_by_otp", "not_found")
			return nil, ErrOTPMismatch
		}
		observability.RecordRepositoryOperation(ctx, "member", "find_by_otp", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "member", "find_by_otp", "success")
	return &member, nil
}

func (r *GormMemberRepository) MarkVerified(ctx context.Context, discordID string) error {
	err := r.db.WithContext(ctx).
		Model(&domain.Member{}).
		Where("discord_id = ?", discordID).
		Update("verified", true).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "member", "mark_verified", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "member", "mark_verified", "success")
	return nil
}
