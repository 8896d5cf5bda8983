package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/algopath/community-bot/internal/repository"
)

// ReminderService DMs each member a daily summary of their
// unresolved doubts. A member who cannot be reached is skipped.
type ReminderService struct {
	doubts  repository.DoubtRepository
	gateway Gateway
	logger  *slog.Logger
}

func NewReminderService(doubts repository.DoubtRepository, gateway Gateway, logger *slog.Logger) *ReminderService {
	return &ReminderService{doubts: doubts, gateway: gateway, logger: logger}
}

func (s *ReminderService) RemindUnresolved(ctx context.Context) error {
	pending, err := s.doubts.Unresolved(ctx)
	if err != nil {
		return fmt.Errorf("list unresolved doubts: %w", err)
	}
	for _, p := range pending {
		ids := make([]string, len(p.IDs))
		for i, id := range p.IDs {
			ids[i] = fmt.Sprintf("%d", id)
		}
		msg := fmt.Sprintf("🔔 You have %d unresolved doubts (IDs: %s).", len(p.IDs), strings.Join(ids, ", "))
		if err := s.gateway.DirectMessage(ctx, p.AuthorID, msg); err != nil {
			s.logger.WarnContext(ctx, "doubt reminder DM failed", "user_id", p.AuthorID, "error", err)
		}
	}
	return nil
}
