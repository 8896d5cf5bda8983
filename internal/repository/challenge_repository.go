package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/algopath/community-bot/internal/domain"
	"github.com/algopath/community-bot/internal/observability"
)

var (
	ErrNoChallenge        = errors.New("no current challenge")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrVoteNotFound       = errors.New("vote not found")
)

// SubmissionStats is one leaderboard row: a submission with its
// ballot count and average rank.
type SubmissionStats struct {
	MessageID   string  `json:"message_id"`
	AuthorID    string  `json:"author_id"`
	Content     string  `json:"content"`
	VoteCount   int64   `json:"vote_count"`
	AverageRank float64 `json:"average_rank"`
}

type ChallengeRepository interface {
	// Current returns the singleton challenge row.
	Current(ctx context.Context) (*domain.Challenge, error)
	// Replace clears all submissions and votes and overwrites the
	// singleton challenge row, all inside one transaction.
	Replace(ctx context.Context, ch *domain.Challenge) error
	SetStatus(ctx context.Context, status domain.ChallengeStatus) error

	CreateSubmission(ctx context.Context, sub *domain.Submission) error
	FindSubmission(ctx context.Context, messageID string) (*domain.Submission, error)
	SubmissionCount(ctx context.Context) (int64, error)

	FindVote(ctx context.Context, messageID, voterID string) (*domain.Vote, error)
	SaveVote(ctx context.Context, messageID, voterID string, rank domain.Rank, at time.Time) error
	DeleteVote(ctx context.Context, messageID, voterID string, rank domain.Rank) error
	VoteCount(ctx context.Context) (int64, error)
	VoteStats(ctx context.Context) ([]SubmissionStats, error)
}

type GormChallengeRepository struct{ db *gorm.DB }

func NewChallengeRepository(db *gorm.DB) ChallengeRepository {
	return &GormChallengeRepository{db: db}
}

func (r *GormChallengeRepository) Current(ctx context.Context) (*domain.Challenge, error) {
	var ch domain.Challenge
	err := r.db.WithContext(ctx).First(&ch, domain.ChallengeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "challenge", "current", "not_found")
			return nil, ErrNoChallenge
		}
		observability.RecordRepositoryOperation(ctx, "challenge", "current", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "challenge", "current", "success")
	return &ch, nil
}

func (r *GormChallengeRepository) Replace(ctx context.Context, ch *domain.Challenge) error {
	ch.ID = domain.ChallengeID
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&domain.Submission{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&domain.Challenge{}, domain.ChallengeID).Error; err != nil {
			return err
		}
		return tx.Create(ch).Error
	})
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "challenge", "replace", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "challenge", "replace", "success")
	return nil
}

func (r *GormChallengeRepository) SetStatus(ctx context.Context, status domain.ChallengeStatus) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Challenge{}).
		Where("id = ?", domain.ChallengeID).
		Update("status", status)
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "challenge", "set_status", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "challenge", "set_status", "not_found")
		return ErrNoChallenge
	}
	observability.RecordRepositoryOperation(ctx, "challenge", "set_status", "success")
	return nil
}

func (r *GormChallengeRepository) CreateSubmission(ctx context.Context, sub *domain.Submission) error {
	if err := r.db.WithContext(ctx).Create(sub).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "submission", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "submission", "create", "success")
	return nil
}

func (r *GormChallengeRepository) FindSubmission(ctx context.Context, messageID string) (*domain.Submission, error) {
	var sub domain.Submission
	err := r.db.WithContext(ctx).Where("message_id = ?", messageID).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "submission", "find", "not_found")
			return nil, ErrSubmissionNotFound
		}
		observability.RecordRepositoryOperation(ctx, "submission", "find", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "submission", "find", "success")
	return &sub, nil
}

func (r *GormChallengeRepository) SubmissionCount(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Submission{}).Count(&n).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "submission", "count", "error")
		return 0, err
	}
	observability.RecordRepositoryOperation(ctx, "submission", "count", "success")
	return n, nil
}

func (r *GormChallengeRepository) FindVote(ctx context.Context, messageID, voterID string) (*domain.Vote, error) {
	var vote domain.Vote
	err := r.db.WithContext(ctx).
		Where("message_id = ? AND voter_id = ?", messageID, voterID).
		First(&vote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "vote", "find", "not_found")
			return nil, ErrVoteNotFound
		}
		observability.RecordRepositoryOperation(ctx, "vote", "find", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "vote", "find", "success")
	return &vote, nil
}

// SaveVote inserts the voter's ballot for the submission, or updates
// rank and timestamp if one already exists. At most one row per
// (submission, voter) survives.
func (r *GormChallengeRepository) SaveVote(ctx context.Context, messageID, voterID string, rank domain.Rank, at time.Time) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.Vote
		err := tx.Where("message_id = ? AND voter_id = ?", messageID, voterID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&domain.Vote{
				MessageID: messageID,
				VoterID:   voterID,
				Rank:      rank,
				VotedAt:   at,
			}).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&existing).Updates(map[string]any{
			"rank":     rank,
			"voted_at": at,
		}).Error
	})
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "vote", "save", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "vote", "save", "success")
	return nil
}

// DeleteVote removes the matching ballot. Deleting an absent ballot
// is a no-op.
func (r *GormChallengeRepository) DeleteVote(ctx context.Context, messageID, voterID string, rank domain.Rank) error {
	err := r.db.WithContext(ctx).
		Where("message_id = ? AND voter_id = ? AND rank = ?", messageID, voterID, rank).
		Delete(&domain.Vote{}).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "vote", "delete", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "vote", "delete", "success")
	return nil
}

func (r *GormChallengeRepository) VoteCount(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Vote{}).Count(&n).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "vote", "count", "error")
		return 0, err
	}
	observability.RecordRepositoryOperation(ctx, "vote", "count", "success")
	return n, nil
}

func (r *GormChallengeRepository) VoteStats(ctx context.Context) ([]SubmissionStats, error) {
	var rows []SubmissionStats
	err := r.db.WithContext(ctx).
		Table("submissions").
		Select("submissions.message_id, submissions.author_id, submissions.content, COUNT(votes.id) AS vote_count, COALESCE(AVG(votes.rank), 0) AS average_rank").
		Joins("LEFT JOIN votes ON votes.message_id = submissions.message_id").
		Group("submissions.message_id, submissions.author_id, submissions.content").
		Order("average_rank DESC, vote_count DESC").
		Scan(&rows).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "vote", "stats", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "vote", "stats", "success")
	return rows, nil
}
