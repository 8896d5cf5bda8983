package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/algopath/community-bot/internal/domain"
	"github.com/algopath/community-bot/internal/observability"
	"github.com/algopath/community-bot/internal/repository"
)

// ReactionEvent is one reaction add/remove delivered by the gateway.
type ReactionEvent struct {
	ChannelID string
	MessageID string
	UserID    string
	Glyph     string
	FromBot   bool
}

// VoteReconciler keeps the persisted vote set consistent with the
// reaction UI: at most one rank reaction per voter per submission.
// The database is ground truth; the reaction state is a mirror the
// reconciler actively corrects.
type VoteReconciler struct {
	challenges repository.ChallengeRepository
	gateway    Gateway

	submissionChannelID string
	votable             map[domain.ChallengeStatus]bool

	now    func() time.Time
	logger *slog.Logger
}

func NewVoteReconciler(
	challenges repository.ChallengeRepository,
	gateway Gateway,
	submissionChannelID string,
	voteDuringSubmissions bool,
	logger *slog.Logger,
) *VoteReconciler {
	votable := map[domain.ChallengeStatus]bool{domain.ChallengeVoting: true}
	if voteDuringSubmissions {
		votable[domain.ChallengeActive] = true
	}
	return &VoteReconciler{
		challenges:          challenges,
		gateway:             gateway,
		submissionChannelID: submissionChannelID,
		votable:             votable,
		now:                 time.Now,
		logger:              logger,
	}
}

// ReactionAdded applies the single-choice voting contract to a new
// reaction. Reactions from bots, outside the submission venue, or
// with a non-rank glyph are ignored without touching the store.
func (r *VoteReconciler) ReactionAdded(ctx context.Context, ev ReactionEvent) error {
	if ev.FromBot || ev.ChannelID != r.submissionChannelID {
		return nil
	}
	rank, ok := domain.RankFromGlyph(ev.Glyph)
	if !ok {
		return nil
	}

	ch, err := r.challenges.Current(ctx)
	if err != nil && !errors.Is(err, repository.ErrNoChallenge) {
		return fmt.Errorf("load challenge: %w", err)
	}
	if err != nil || !r.votable[ch.Status] {
		observability.RecordVoteEvent(ctx, "rejected_closed")
		return r.retract(ctx, ev.MessageID, ev.Glyph, ev.UserID)
	}

	sub, err := r.challenges.FindSubmission(ctx, ev.MessageID)
	if err != nil {
		if errors.Is(err, repository.ErrSubmissionNotFound) {
			return nil
		}
		return fmt.Errorf("load submission: %w", err)
	}
	if sub.AuthorID == ev.UserID {
		observability.RecordVoteEvent(ctx, "rejected_self")
		if err := r.retract(ctx, ev.MessageID, ev.Glyph, ev.UserID); err != nil {
			return err
		}
		if err := r.gateway.DirectMessage(ctx, ev.UserID, "❌ You cannot vote on your own submission!"); err != nil {
			r.logger.WarnContext(ctx, "self-vote notice failed", "user_id", ev.UserID, "error", err)
		}
		return nil
	}

	existing, err := r.challenges.FindVote(ctx, ev.MessageID, ev.UserID)
	switch {
	case errors.Is(err, repository.ErrVoteNotFound):
		if err := r.challenges.SaveVote(ctx, ev.MessageID, ev.UserID, rank, r.now()); err != nil {
			return fmt.Errorf("record vote: %w", err)
		}
		observability.RecordVoteEvent(ctx, "created")
	case err != nil:
		return fmt.Errorf("load vote: %w", err)
	case existing.Rank != rank:
		if err := r.retract(ctx, ev.MessageID, existing.Rank.Glyph(), ev.UserID); err != nil {
			r.logger.WarnContext(ctx, "old reaction retraction failed",
				"message_id", ev.MessageID, "user_id", ev.UserID, "error", err)
		}
		if err := r.challenges.SaveVote(ctx, ev.MessageID, ev.UserID, rank, r.now()); err != nil {
			return fmt.Errorf("update vote: %w", err)
		}
		observability.RecordVoteEvent(ctx, "changed")
	default:
		// Same glyph again, already consistent.
		observability.RecordVoteEvent(ctx, "unchanged")
	}

	r.sweep(ctx, ev.MessageID, ev.UserID, rank)
	return nil
}

// ReactionRemoved deletes the matching ballot. Removing a reaction
// that never produced a ballot is a no-op.
func (r *VoteReconciler) ReactionRemoved(ctx context.Context, ev ReactionEvent) error {
	if ev.FromBot || ev.ChannelID != r.submissionChannelID {
		return nil
	}
	rank, ok := domain.RankFromGlyph(ev.Glyph)
	if !ok {
		return nil
	}
	if err := r.challenges.DeleteVote(ctx, ev.MessageID, ev.UserID, rank); err != nil {
		return fmt.Errorf("delete vote: %w", err)
	}
	observability.RecordVoteEvent(ctx, "removed")
	return nil
}

// sweep retracts every rank glyph other than kept that the voter
// still has on the message. This repairs the race where a second
// reaction lands before the retraction of the first completes.
func (r *VoteReconciler) sweep(ctx context.Context, messageID, userID string, kept domain.Rank) {
	for _, rank := range domain.AllRanks() {
		if rank == kept {
			continue
		}
		users, err := r.gateway.ReactionUsers(ctx, r.submissionChannelID, messageID, rank.Glyph())
		if err != nil {
			r.logger.WarnContext(ctx, "sweep reaction listing failed",
				"message_id", messageID, "glyph", rank.Glyph(), "error", err)
			continue
		}
		for _, id := range users {
			if id != userID {
				continue
			}
			if err := r.retract(ctx, messageID, rank.Glyph(), userID); err != nil {
				r.logger.WarnContext(ctx, "sweep retraction failed",
					"message_id", messageID, "glyph", rank.Glyph(), "error", err)
			}
		}
	}
}

func (r *VoteReconciler) retract(ctx context.Context, messageID, glyph, userID string) error {
	return r.gateway.RemoveReaction(ctx, r.submissionChannelID, messageID, glyph, userID)
}
