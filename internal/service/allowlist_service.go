package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/algopath/community-bot/internal/repository"
)

// AllowlistService answers "is this email permitted" with a cache in
// front of the store. Cache failures degrade to direct lookups.
type AllowlistService struct {
	repo   repository.AllowlistRepository
	cache  AllowlistCacheStore
	ttl    time.Duration
	logger *slog.Logger
}

func NewAllowlistService(repo repository.AllowlistRepository, cache AllowlistCacheStore, ttl time.Duration, logger *slog.Logger) *AllowlistService {
	if cache == nil {
		cache = NewNoopAllowlistCacheStore()
	}
	return &AllowlistService{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

func (s *AllowlistService) IsAllowed(ctx context.Context, email string) (bool, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	allowed, found, err := s.cache.Get(ctx, email)
	if err != nil {
		s.logger.WarnContext(ctx, "allowlist cache read failed", "error", err)
	} else if found {
		return allowed, nil
	}

	allowed, err = s.repo.Contains(ctx, email)
	if err != nil {
		return false, err
	}
	if err := s.cache.Set(ctx, email, allowed, s.ttl); err != nil {
		s.logger.WarnContext(ctx, "allowlist cache write failed", "error", err)
	}
	return allowed, nil
}
