package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/algopath/community-bot/internal/domain"
	"github.com/algopath/community-bot/internal/repository"
)

func TestAllowlistServiceCachesLookups(t *testing.T) {
	ctx := context.Background()
	db := newServiceDBForTest(t)
	if err := db.Create(&domain.AllowedEmail{Email: "alice@algopath.com"}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	cache := NewInMemoryAllowlistCacheStore()
	svc := NewAllowlistService(repository.NewAllowlistRepository(db), cache, time.Minute, discardLogger())

	allowed, err := svc.IsAllowed(ctx, "ALICE@algopath.com")
	if err != nil || !allowed {
		t.Fatalf("expected allowed, got %v err=%v", allowed, err)
	}

	// Remove the row; the cached verdict still answers.
	if err := db.Where("1 = 1").Delete(&domain.AllowedEmail{}).Error; err != nil {
		t.Fatalf("clear allow-list: %v", err)
	}
	allowed, err = svc.IsAllowed(ctx, "alice@algopath.com")
	if err != nil || !allowed {
		t.Fatalf("expected cached allow, got %v err=%v", allowed, err)
	}

	allowed, err = svc.IsAllowed(ctx, "mallory@example.com")
	if err != nil || allowed {
		t.Fatalf("expected rejection, got %v err=%v", allowed, err)
	}
}

func TestInMemoryAllowlistCacheExpiry(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryAllowlistCacheStore()

	if err := cache.Set(ctx, "a@b.com", true, 10*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, found, _ := cache.Get(ctx, "a@b.com"); !found {
		t.Fatal("expected fresh entry to be found")
	}
	time.Sleep(20 * time.Millisecond)
	if _, found, _ := cache.Get(ctx, "a@b.com"); found {
		t.Fatal("expected entry to expire")
	}

	// Zero TTL disables caching.
	if err := cache.Set(ctx, "c@d.com", true, 0); err != nil {
		t.Fatalf("set zero ttl: %v", err)
	}
	if _, found, _ := cache.Get(ctx, "c@d.com"); found {
		t.Fatal("zero-ttl entry must not be stored")
	}
}

func TestRedisAllowlistCacheStore(t *testing.T) {
	ctx := context.Background()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	cache := NewRedisAllowlistCacheStore(client, "allowlist")

	if _, found, err := cache.Get(ctx, "a@b.com"); err != nil || found {
		t.Fatalf("expected miss, got found=%v err=%v", found, err)
	}
	if err := cache.Set(ctx, "a@b.com", true, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	allowed, found, err := cache.Get(ctx, "a@b.com")
	if err != nil || !found || !allowed {
		t.Fatalf("expected cached allow, got allowed=%v found=%v err=%v", allowed, found, err)
	}

	if err := cache.Set(ctx, "m@e.com", false, time.Minute); err != nil {
		t.Fatalf("set deny: %v", err)
	}
	allowed, found, err = cache.Get(ctx, "m@e.com")
	if err != nil || !found || allowed {
		t.Fatalf("expected cached deny, got allowed=%v found=%v err=%v", allowed, found, err)
	}

	srv.FastForward(2 * time.Minute)
	if _, found, _ := cache.Get(ctx, "a@b.com"); found {
		t.Fatal("expected redis entry to expire")
	}
}
