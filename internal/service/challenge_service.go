package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/algopath/community-bot/internal/domain"
	"github.com/algopath/community-bot/internal/repository"
)

// ErrSubmissionsClosed is returned when a submission arrives while no
// challenge is accepting entries.
var ErrSubmissionsClosed = errors.New("no active challenge accepting submissions")

// ChallengeSnapshot is the read-only diagnostic view served by
// !test-status and !test-debug.
type ChallengeSnapshot struct {
	Status      domain.ChallengeStatus
	Title       string
	CreatedAt   time.Time
	Submissions int64
	Votes       int64
}

// ChallengeService drives the weekly challenge lifecycle:
// post (reset + active) -> close submissions (voting) -> close voting
// (completed). Transitions are invoked by the scheduler and by the
// manual !test-* commands with identical semantics.
type ChallengeService struct {
	challenges repository.ChallengeRepository
	catalog    *Catalog
	gateway    Gateway

	challengeChannelID  string
	submissionChannelID string

	now    func() time.Time
	logger *slog.Logger
}

func NewChallengeService(
	challenges repository.ChallengeRepository,
	catalog *Catalog,
	gateway Gateway,
	challengeChannelID, submissionChannelID string,
	logger *slog.Logger,
) *ChallengeService {
	return &ChallengeService{
		challenges:          challenges,
		catalog:             catalog,
		gateway:             gateway,
		challengeChannelID:  challengeChannelID,
		submissionChannelID: submissionChannelID,
		now:                 time.Now,
		logger:              logger,
	}
}

// PostChallenge picks a random definition from the catalog, announces
// it and replaces the singleton challenge record with a fresh active
// one, clearing every previous submission and vote in the same
// transaction. An empty catalog aborts without touching state. An
// unreachable announcement channel does not skip the state reset; the
// failure is reported alongside the posted challenge.
func (s *ChallengeService) PostChallenge(ctx context.Context) (*domain.Challenge, error) {
	def, err := s.catalog.Random()
	if err != nil {
		return nil, err
	}

	messageID, annErr := s.gateway.SendEmbed(ctx, s.challengeChannelID, Embed{
		Title:       "🏆 Weekly Challenge!",
		Description: def.Description,
		Fields: []EmbedField{
			{Name: "📅 Submission Deadline", Value: "Thursday 11:59 PM", Inline: true},
			{Name: "🗳️ Voting Period", Value: "Thursday - Saturday", Inline: true},
			{Name: "📝 How to Submit", Value: fmt.Sprintf("Post your solution in <#%s>", s.submissionChannelID)},
		},
		Footer: "Good luck everyone! 🚀",
	})
	if annErr != nil {
		s.logger.ErrorContext(ctx, "challenge announcement failed", "error", annErr)
	}

	ch := &domain.Challenge{
		MessageID:   messageID,
		Title:       def.Title,
		Description: def.Description,
		Status:      domain.ChallengeActive,
		CreatedAt:   s.now(),
	}
	if err := s.challenges.Replace(ctx, ch); err != nil {
		return nil, errors.Join(annErr, fmt.Errorf("reset challenge state: %w", err))
	}
	if annErr != nil {
		return ch, fmt.Errorf("challenge posted but announcement failed: %w", annErr)
	}
	return ch, nil
}

// CloseSubmissions moves the challenge into the voting state and
// announces it. Closing an already-closed challenge re-announces
// without error. State mutation and announcement fail independently.
func (s *ChallengeService) CloseSubmissions(ctx context.Context) error {
	stateErr := s.challenges.SetStatus(ctx, domain.ChallengeVoting)
	if stateErr != nil {
		s.logger.ErrorContext(ctx, "close submissions state update failed", "error", stateErr)
	}
	_, annErr := s.gateway.SendEmbed(ctx, s.challengeChannelID, Embed{
		Title:       "⏰ Challenge Submissions Closed!",
		Description: "The submission period for this week's challenge has ended.",
		Fields: []EmbedField{
			{Name: "🗳️ What's Next?", Value: "Voting is now open! Check the submissions and vote for your favorites."},
			{Name: "📊 Voting Deadline", Value: "Saturday 11:59 PM", Inline: true},
		},
	})
	if annErr != nil {
		s.logger.ErrorContext(ctx, "close submissions announcement failed", "error", annErr)
	}
	return errors.Join(stateErr, annErr)
}

// CloseVoting moves the challenge into the completed state and
// announces it.
func (s *ChallengeService) CloseVoting(ctx context.Context) error {
	stateErr := s.challenges.SetStatus(ctx, domain.ChallengeCompleted)
	if stateErr != nil {
		s.logger.ErrorContext(ctx, "close voting state update failed", "error", stateErr)
	}
	_, annErr := s.gateway.SendEmbed(ctx, s.challengeChannelID, Embed{
		Title:       "🗳️ Voting Period Ended!",
		Description: "The voting period for this week's challenge has ended.",
		Fields: []EmbedField{
			{Name: "🎉 Results", Value: "Thank you everyone for participating! Check back Monday for the next challenge."},
		},
	})
	if annErr != nil {
		s.logger.ErrorContext(ctx, "close voting announcement failed", "error", annErr)
	}
	return errors.Join(stateErr, annErr)
}

// Submit records a non-command message posted in the submission venue
// as a challenge entry and seeds the five rank reactions on it.
func (s *ChallengeService) Submit(ctx context.Context, messageID, authorID, content string) error {
	ch, err := s.challenges.Current(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNoChallenge) {
			return ErrSubmissionsClosed
		}
		return err
	}
	if ch.Status != domain.ChallengeActive {
		return ErrSubmissionsClosed
	}

	sub := &domain.Submission{
		MessageID:   messageID,
		AuthorID:    authorID,
		Content:     content,
		SubmittedAt: s.now(),
	}
	if err := s.challenges.CreateSubmission(ctx, sub); err != nil {
		return fmt.Errorf("store submission: %w", err)
	}
	for _, rank := range domain.AllRanks() {
		if err := s.gateway.React(ctx, s.submissionChannelID, messageID, rank.Glyph()); err != nil {
			s.logger.WarnContext(ctx, "seed reaction failed",
				"message_id", messageID, "glyph", rank.Glyph(), "error", err)
		}
	}
	return nil
}

func (s *ChallengeService) Status(ctx context.Context) (*ChallengeSnapshot, error) {
	ch, err := s.challenges.Current(ctx)
	if err != nil {
		return nil, err
	}
	subs, err := s.challenges.SubmissionCount(ctx)
	if err != nil {
		return nil, err
	}
	votes, err := s.challenges.VoteCount(ctx)
	if err != nil {
		return nil, err
	}
	return &ChallengeSnapshot{
		Status:      ch.Status,
		Title:       ch.Title,
		CreatedAt:   ch.CreatedAt,
		Submissions: subs,
		Votes:       votes,
	}, nil
}

func (s *ChallengeService) VoteStats(ctx context.Context) ([]repository.SubmissionStats, error) {
	return s.challenges.VoteStats(ctx)
}
