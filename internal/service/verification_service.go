package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/algopath/community-bot/internal/domain"
	"github.com/algopath/community-bot/internal/mailer"
	"github.com/algopath/community-bot/internal/repository"
	"github.com/algopath/community-bot/internal/security"
)

var (
	ErrMalformedEmail  = errors.New("malformed email")
	ErrEmailNotAllowed = errors.New("email not on allow-list")
)

const otpDigits = 6

// VerificationService runs the email-gated onboarding flow: issue an
// OTP for an allow-listed email, confirm it, grant the member role.
type VerificationService struct {
	members   repository.MemberRepository
	allowlist *AllowlistService
	notifier  mailer.OTPNotifier
	gateway   Gateway
	otpTTL    time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

func NewVerificationService(
	members repository.MemberRepository,
	allowlist *AllowlistService,
	notifier mailer.OTPNotifier,
	gateway Gateway,
	otpTTL time.Duration,
	logger *slog.Logger,
) *VerificationService {
	return &VerificationService{
		members:   members,
		allowlist: allowlist,
		notifier:  notifier,
		gateway:   gateway,
		otpTTL:    otpTTL,
		now:       time.Now,
		logger:    logger,
	}
}

// RequestOTP validates the email, issues a fresh 6-digit code valid
// for the configured TTL and emails it. A prior pending code for the
// same email is overwritten and no longer authenticates.
func (s *VerificationService) RequestOTP(ctx context.Context, discordID, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrMalformedEmail
	}

	allowed, err := s.allowlist.IsAllowed(ctx, email)
	if err != nil {
		return fmt.Errorf("allow-list lookup: %w", err)
	}
	if !allowed {
		return ErrEmailNotAllowed
	}

	code, err := security.GenerateOTP(otpDigits)
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	member := &domain.Member{
		DiscordID:  discordID,
		Email:      email,
		OTP:        code,
		OTPExpires: s.now().Add(s.otpTTL),
	}
	if err := s.members.UpsertPendingVerification(ctx, member); err != nil {
		return fmt.Errorf("store pending verification: %w", err)
	}
	if err := s.notifier.SendOTP(ctx, email, code); err != nil {
		return fmt.Errorf("deliver otp: %w", err)
	}
	return nil
}

// ConfirmOTP checks the code against the caller's pending
// verification. On success the member is marked verified (one-way)
// and the member role is granted best-effort.
func (s *VerificationService) ConfirmOTP(ctx context.Context, discordID, code string) error {
	if _, err := s.members.FindByOTP(ctx, discordID, code, s.now()); err != nil {
		return err
	}
	if err := s.members.MarkVerified(ctx, discordID); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	if err := s.gateway.GrantMemberRole(ctx, discordID); err != nil {
		s.logger.WarnContext(ctx, "role grant failed", "user_id", discordID, "error", err)
	}
	return nil
}
