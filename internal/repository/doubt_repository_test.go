package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/algopath/community-bot/internal/domain"
)

func TestDoubtCreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewDoubtRepository(newRepositoryDBForTest(t))

	doubt := &domain.Doubt{AuthorID: "alice", Question: "What is Big-O?"}
	if err := repo.Create(ctx, doubt); err != nil {
		t.Fatalf("create: %v", err)
	}
	if doubt.ID == 0 {
		t.Fatal("expected generated ID")
	}

	got, err := repo.FindByID(ctx, doubt.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Question != "What is Big-O?" || got.Resolved {
		t.Fatalf("unexpected doubt: %+v", got)
	}

	if _, err := repo.FindByID(ctx, 9999); !errors.Is(err, ErrDoubtNotFound) {
		t.Fatalf("expected ErrDoubtNotFound, got %v", err)
	}
}

func TestDoubtResolve(t *testing.T) {
	ctx := context.Background()
	repo := NewDoubtRepository(newRepositoryDBForTest(t))

	doubt := &domain.Doubt{AuthorID: "alice", Question: "q"}
	if err := repo.Create(ctx, doubt); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Resolve(ctx, doubt.ID, "alice", time.Now()); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	got, err := repo.FindByID(ctx, doubt.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !got.Resolved || got.ResolvedBy != "alice" || got.ResolvedAt == nil {
		t.Fatalf("expected resolved doubt, got %+v", got)
	}

	if err := repo.Resolve(ctx, 9999, "alice", time.Now()); !errors.Is(err, ErrDoubtNotFound) {
		t.Fatalf("expected ErrDoubtNotFound, got %v", err)
	}
}

func TestDoubtListByAuthorFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewDoubtRepository(newRepositoryDBForTest(t))

	open := &domain.Doubt{AuthorID: "alice", Question: "open one"}
	closed := &domain.Doubt{AuthorID: "alice", Question: "closed one"}
	other := &domain.Doubt{AuthorID: "bob", Question: "not alice's"}
	for _, d := range []*domain.Doubt{open, closed, other} {
		if err := repo.Create(ctx, d); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if err := repo.Resolve(ctx, closed.ID, "alice", time.Now()); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	all, err := repo.ListByAuthor(ctx, "alice", DoubtFilterAll)
	if err != nil || len(all) != 2 {
		t.Fatalf("expected 2 doubts, got %d err=%v", len(all), err)
	}
	openOnly, err := repo.ListByAuthor(ctx, "alice", DoubtFilterOpen)
	if err != nil || len(openOnly) != 1 || openOnly[0].ID != open.ID {
		t.Fatalf("unexpected open listing: %+v err=%v", openOnly, err)
	}
	closedOnly, err := repo.ListByAuthor(ctx, "alice", DoubtFilterClosed)
	if err != nil || len(closedOnly) != 1 || closedOnly[0].ID != closed.ID {
		t.Fatalf("unexpected closed listing: %+v err=%v", closedOnly, err)
	}
}

func TestDoubtUnresolvedGroupsByAuthor(t *testing.T) {
	ctx := context.Background()
	repo := NewDoubtRepository(newRepositoryDBForTest(t))

	for _, d := range []*domain.Doubt{
		{AuthorID: "alice", Question: "a1"},
		{AuthorID: "alice", Question: "a2"},
		{AuthorID: "bob", Question: "b1"},
	} {
		if err := repo.Create(ctx, d); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	pending, err := repo.Unresolved(ctx)
	if err != nil {
		t.Fatalf("unresolved: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 authors, got %d", len(pending))
	}
	if pending[0].AuthorID != "alice" || len(pending[0].IDs) != 2 {
		t.Fatalf("unexpected first group: %+v", pending[0])
	}
	if pending[1].AuthorID != "bob" || len(pending[1].IDs) != 1 {
		t.Fatalf("unexpected second group: %+v", pending[1])
	}
}
