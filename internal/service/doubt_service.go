package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/algopath/community-bot/internal/domain"
	"github.com/algopath/community-bot/internal/repository"
)

var (
	ErrEmptyQuestion   = errors.New("question text is empty")
	ErrNotDoubtOwner   = errors.New("doubt belongs to another user")
	ErrAlreadyResolved = errors.New("doubt already resolved")
)

// DoubtSummary aggregates a member's doubts for the !doubts reply.
type DoubtSummary struct {
	Doubts []domain.Doubt
	Total  int
	Open   int
	Closed int
}

type DoubtService struct {
	doubts repository.DoubtRepository
	now    func() time.Time
}

func NewDoubtService(doubts repository.DoubtRepository) *DoubtService {
	return &DoubtService{doubts: doubts, now: time.Now}
}

func (s *DoubtService) Ask(ctx context.Context, authorID, question string) (*domain.Doubt, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	doubt := &domain.Doubt{AuthorID: authorID, Question: question}
	if err := s.doubts.Create(ctx, doubt); err != nil {
		return nil, err
	}
	return doubt, nil
}

// Resolve marks the doubt resolved. Only the doubt's own author may
// resolve it; a doubt owned by someone else is reported as not found
// so IDs cannot be probed.
func (s *DoubtService) Resolve(ctx context.Context, callerID string, id uint) error {
	doubt, err := s.doubts.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if doubt.AuthorID != callerID {
		return ErrNotDoubtOwner
	}
	if doubt.Resolved {
		return ErrAlreadyResolved
	}
	return s.doubts.Resolve(ctx, id, callerID, s.now())
}

func (s *DoubtService) List(ctx context.Context, authorID string, filter repository.DoubtFilter) (*DoubtSummary, error) {
	doubts, err := s.doubts.ListByAuthor(ctx, authorID, filter)
	if err != nil {
		return nil, err
	}
	summary := &DoubtSummary{Doubts: doubts, Total: len(doubts)}
	for _, d := range doubts {
		if d.Resolved {
			summary.Closed++
		} else {
			summary.Open++
		}
	}
	return summary, nil
}
