package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/algopath/community-bot/internal/domain"
)

func seedChallenge(t *testing.T, repo ChallengeRepository, status domain.ChallengeStatus) {
	t.Helper()
	err := repo.Replace(context.Background(), &domain.Challenge{
		MessageID: "m-challenge",
		Title:     "Test Challenge",
		Status:    status,
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("seed challenge: %v", err)
	}
}

func TestChallengeCurrentNotFound(t *testing.T) {
	repo := NewChallengeRepository(newRepositoryDBForTest(t))
	if _, err := repo.Current(context.Background()); !errors.Is(err, ErrNoChallenge) {
		t.Fatalf("expected ErrNoChallenge, got %v", err)
	}
}

func TestChallengeReplaceClearsSubmissionsAndVotes(t *testing.T) {
	ctx := context.Background()
	repo := NewChallengeRepository(newRepositoryDBForTest(t))
	seedChallenge(t, repo, domain.ChallengeActive)

	if err := repo.CreateSubmission(ctx, &domain.Submission{MessageID: "s1", AuthorID: "alice"}); err != nil {
		t.Fatalf("create submission: %v", err)
	}
	if err := repo.SaveVote(ctx, "s1", "bob", domain.RankFour, time.Now()); err != nil {
		t.Fatalf("save vote: %v", err)
	}

	seedChallenge(t, repo, domain.ChallengeActive)

	subs, err := repo.SubmissionCount(ctx)
	if err != nil || subs != 0 {
		t.Fatalf("expected 0 submissions after replace, got %d err=%v", subs, err)
	}
	votes, err := repo.VoteCount(ctx)
	if err != nil || votes != 0 {
		t.Fatalf("expected 0 votes after replace, got %d err=%v", votes, err)
	}
	ch, err := repo.Current(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if ch.ID != domain.ChallengeID || ch.Status != domain.ChallengeActive {
		t.Fatalf("unexpected challenge after replace: %+v", ch)
	}
}

func TestChallengeSetStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewChallengeRepository(newRepositoryDBForTest(t))

	if err := repo.SetStatus(ctx, domain.ChallengeVoting); !errors.Is(err, ErrNoChallenge) {
		t.Fatalf("expected ErrNoChallenge without a row, got %v", err)
	}

	seedChallenge(t, repo, domain.ChallengeActive)
	if err := repo.SetStatus(ctx, domain.ChallengeVoting); err != nil {
		t.Fatalf("set status: %v", err)
	}
	ch, err := repo.Current(ctx)
	if err != nil || ch.Status != domain.ChallengeVoting {
		t.Fatalf("expected voting status, got %+v err=%v", ch, err)
	}

	// Re-applying the same status is allowed.
	if err := repo.SetStatus(ctx, domain.ChallengeVoting); err != nil {
		t.Fatalf("idempotent set status: %v", err)
	}
}

func TestSaveVoteKeepsSingleRowPerVoter(t *testing.T) {
	ctx := context.Background()
	repo := NewChallengeRepository(newRepositoryDBForTest(t))
	seedChallenge(t, repo, domain.ChallengeVoting)

	if err := repo.SaveVote(ctx, "s1", "bob", domain.RankThree, time.Now()); err != nil {
		t.Fatalf("insert vote: %v", err)
	}
	if err := repo.SaveVote(ctx, "s1", "bob", domain.RankFive, time.Now()); err != nil {
		t.Fatalf("update vote: %v", err)
	}

	n, err := repo.VoteCount(ctx)
	if err != nil || n != 1 {
		t.Fatalf("expected exactly one vote row, got %d err=%v", n, err)
	}
	vote, err := repo.FindVote(ctx, "s1", "bob")
	if err != nil {
		t.Fatalf("find vote: %v", err)
	}
	if vote.Rank != domain.RankFive {
		t.Fatalf("expected rank 5 after update, got %v", vote.Rank)
	}
}

func TestDeleteVoteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewChallengeRepository(newRepositoryDBForTest(t))
	seedChallenge(t, repo, domain.ChallengeVoting)

	if err := repo.DeleteVote(ctx, "s1", "bob", domain.RankTwo); err != nil {
		t.Fatalf("delete absent vote: %v", err)
	}

	if err := repo.SaveVote(ctx, "s1", "bob", domain.RankTwo, time.Now()); err != nil {
		t.Fatalf("save vote: %v", err)
	}
	if err := repo.DeleteVote(ctx, "s1", "bob", domain.RankTwo); err != nil {
		t.Fatalf("delete vote: %v", err)
	}
	if _, err := repo.FindVote(ctx, "s1", "bob"); !errors.Is(err, ErrVoteNotFound) {
		t.Fatalf("expected ErrVoteNotFound after delete, got %v", err)
	}

	// A delete keyed on a stale rank leaves the current ballot alone.
	if err := repo.SaveVote(ctx, "s1", "bob", domain.RankFour, time.Now()); err != nil {
		t.Fatalf("save vote: %v", err)
	}
	if err := repo.DeleteVote(ctx, "s1", "bob", domain.RankOne); err != nil {
		t.Fatalf("delete with stale rank: %v", err)
	}
	if _, err := repo.FindVote(ctx, "s1", "bob"); err != nil {
		t.Fatalf("current ballot should survive stale-rank delete: %v", err)
	}
}

func TestVoteStatsOrdering(t *testing.T) {
	ctx := context.Background()
	repo := NewChallengeRepository(newRepositoryDBForTest(t))
	seedChallenge(t, repo, domain.ChallengeVoting)

	for _, sub := range []domain.Submission{
		{MessageID: "s1", AuthorID: "alice", Content: "solution one"},
		{MessageID: "s2", AuthorID: "bob", Content: "solution two"},
		{MessageID: "s3", AuthorID: "carol", Content: "solution three"},
	} {
		sub := sub
		if err := repo.CreateSubmission(ctx, &sub); err != nil {
			t.Fatalf("create submission: %v", err)
		}
	}
	now := time.Now()
	mustSave := func(messageID, voter string, rank domain.Rank) {
		t.Helper()
		if err := repo.SaveVote(ctx, messageID, voter, rank, now); err != nil {
			t.Fatalf("save vote: %v", err)
		}
	}
	mustSave("s1", "u1", domain.RankTwo)
	mustSave("s1", "u2", domain.RankFour)
	mustSave("s2", "u1", domain.RankFive)

	stats, err := repo.VoteStats(ctx)
	if err != nil {
		t.Fatalf("vote stats: %v", err)
	}
	if len(stats) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(stats))
	}
	if stats[0].MessageID != "s2" || stats[0].AverageRank != 5 || stats[0].VoteCount != 1 {
		t.Fatalf("unexpected leader: %+v", stats[0])
	}
	if stats[1].MessageID != "s1" || stats[1].VoteCount != 2 || stats[1].AverageRank != 3 {
		t.Fatalf("unexpected second row: %+v", stats[1])
	}
	if stats[2].MessageID != "s3" || stats[2].VoteCount != 0 {
		t.Fatalf("unexpected unvoted row: %+v", stats[2])
	}
}
