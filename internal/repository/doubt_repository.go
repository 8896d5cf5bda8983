package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/algopath/community-bot/internal/domain"
	"github.com/algopath/community-bot/internal/observability"
)

var ErrDoubtNotFound = errors.New("doubt not found")

type DoubtFilter string

const (
	DoubtFilterAll    DoubtFilter = "all"
	DoubtFilterOpen   DoubtFilter = "open"
	DoubtFilterClosed DoubtFilter = "closed"
)

// PendingDoubts groups an author's unresolved doubt IDs for the
// daily reminder sweep.
type PendingDoubts struct {
	AuthorID string
	IDs      []uint
}

type DoubtRepository interface {
	Create(ctx context.Context, doubt *domain.Doubt) error
	FindByID(ctx context.Context, id uint) (*domain.Doubt, error)
	Resolve(ctx context.Context, id uint, resolvedBy string, at time.Time) error
	ListByAuthor(ctx context.Context, authorID string, filter DoubtFilter) ([]domain.Doubt, error)
	Unresolved(ctx context.Context) ([]PendingDoubts, error)
}

type GormDoubtRepository struct{ db *gorm.DB }

func NewDoubtRepository(db *gorm.DB) DoubtRepository {
	return &GormDoubtRepository{db: db}
}

func (r *GormDoubtRepository) Create(ctx context.Context, doubt *domain.Doubt) error {
	if err := r.db.WithContext(ctx).Create(doubt).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "doubt", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "doubt", "create", "success")
	return nil
}

func (r *GormDoubtRepository) FindByID(ctx context.Context, id uint) (*domain.Doubt, error) {
	var doubt domain.Doubt
	err := r.db.WithContext(ctx).First(&doubt, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "doubt", "find_by_id", "not_found")
			return nil, ErrDoubtNotFound
		}
		observability.RecordRepositoryOperation(ctx, "doubt", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "doubt", "find_by_id", "success")
	return &doubt, nil
}

func (r *GormDoubtRepository) Resolve(ctx context.Context, id uint, resolvedBy string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Doubt{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"resolved":    true,
			"resolved_by": resolvedBy,
			"resolved_at": at,
		})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "doubt", "resolve", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "doubt", "resolve", "not_found")
		return ErrDoubtNotFound
	}
	observability.RecordRepositoryOperation(ctx, "doubt", "resolve", "success")
	return nil
}

func (r *GormDoubtRepository) ListByAuthor(ctx context.Context, authorID string, filter DoubtFilter) ([]domain.Doubt, error) {
	q := r.db.WithContext(ctx).Where("author_id = ?", authorID)
	switch filter {
	case DoubtFilterOpen:
		q = q.Where("resolved = ?", false)
	case DoubtFilterClosed:
		q = q.Where("resolved = ?", true)
	}
	var doubts []domain.Doubt
	if err := q.Order("id asc").Find(&doubts).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "doubt", "list", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "doubt", "list", "success")
	return doubts, nil
}

func (r *GormDoubtRepository) Unresolved(ctx context.Context) ([]PendingDoubts, error) {
	var doubts []domain.Doubt
	err := r.db.WithContext(ctx).
		Where("resolved = ?", false).
		Order("author_id asc").Order("id asc").
		Find(&doubts).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "doubt", "unresolved", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "doubt", "unresolved", "success")

	var out []PendingDoubts
	for _, d := range doubts {
		if len(out) == 0 || out[len(out)-1].AuthorID != d.AuthorID {
			out = append(out, PendingDoubts{AuthorID: d.AuthorID})
		}
		out[len(out)-1].IDs = append(out[len(out)-1].IDs, d.ID)
	}
	return out, nil
}
