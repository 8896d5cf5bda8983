package di

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/algopath/community-bot/internal/app"
	"github.com/algopath/community-bot/internal/bot"
	"github.com/algopath/community-bot/internal/config"
	"github.com/algopath/community-bot/internal/database"
	"github.com/algopath/community-bot/internal/http/handler"
	"github.com/algopath/community-bot/internal/http/middleware"
	"github.com/algopath/community-bot/internal/http/router"
	"github.com/algopath/community-bot/internal/mailer"
	"github.com/algopath/community-bot/internal/observability"
	"github.com/algopath/community-bot/internal/repository"
	"github.com/algopath/community-bot/internal/scheduler"
	"github.com/algopath/community-bot/internal/service"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(provideLogger)

var InfraSet = wire.NewSet(provideDB, provideRedisClient, provideSession)

var RepositorySet = wire.NewSet(
	repository.NewChallengeRepository,
	repository.NewDoubtRepository,
	repository.NewMemberRepository,
	repository.NewAllowlistRepository,
)

var ServiceSet = wire.NewSet(
	provideCatalog,
	provideAllowlistCacheStore,
	provideAllowlistService,
	provideNotifier,
	provideVerificationService,
	service.NewDoubtService,
	provideChallengeService,
	provideVoteReconciler,
	provideReminderService,
)

var BotSet = wire.NewSet(provideGateway, provideChat, provideRouter, provideBot)

var HTTPSet = wire.NewSet(provideLimiter, provideRateLimiter, provideInviteHandler, provideHTTPHandler, provideHTTPServer)

var AppSet = wire.NewSet(provideScheduler, app.New)

func provideLogger(cfg *config.Config) *slog.Logger {
	return observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
}

func provideDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func provideRedisClient(cfg *config.Config) redis.UniversalClient {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
}

func provideSession(cfg *config.Config) (*discordgo.Session, error) {
	return discordgo.New("Bot " + cfg.DiscordToken)
}

func provideGateway(session *discordgo.Session, cfg *config.Config) *bot.DiscordGateway {
	return bot.NewDiscordGateway(session, cfg.GuildID, cfg.MemberRoleName)
}

func provideChat(gateway *bot.DiscordGateway) bot.Chat {
	return gateway
}

func provideCatalog(cfg *config.Config) *service.Catalog {
	return service.NewCatalog(cfg.ChallengesFile)
}

func provideAllowlistCacheStore(client redis.UniversalClient) service.AllowlistCacheStore {
	if client == nil {
		return service.NewInMemoryAllowlistCacheStore()
	}
	return service.NewRedisAllowlistCacheStore(client, "allowlist")
}

func provideAllowlistService(repo repository.AllowlistRepository, cache service.AllowlistCacheStore, cfg *config.Config, logger *slog.Logger) *service.AllowlistService {
	return service.NewAllowlistService(repo, cache, cfg.AllowlistCacheTTL, logger)
}

func provideNotifier(cfg *config.Config, logger *slog.Logger) mailer.OTPNotifier {
	if cfg.SMTPHost == "" {
		return mailer.NewDevNotifier(logger)
	}
	return mailer.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
}

func provideVerificationService(
	members repository.MemberRepository,
	allowlist *service.AllowlistService,
	notifier mailer.OTPNotifier,
	gateway *bot.DiscordGateway,
	cfg *config.Config,
	logger *slog.Logger,
) *service.VerificationService {
	return service.NewVerificationService(members, allowlist, notifier, gateway, cfg.OTPTTL, logger)
}

func provideChallengeService(
	challenges repository.ChallengeRepository,
	catalog *service.Catalog,
	gateway *bot.DiscordGateway,
	cfg *config.Config,
	logger *slog.Logger,
) *service.ChallengeService {
	return service.NewChallengeService(challenges, catalog, gateway, cfg.ChallengeChannelID, cfg.SubmissionChannelID, logger)
}

func provideVoteReconciler(
	challenges repository.ChallengeRepository,
	gateway *bot.DiscordGateway,
	cfg *config.Config,
	logger *slog.Logger,
) *service.VoteReconciler {
	return service.NewVoteReconciler(challenges, gateway, cfg.SubmissionChannelID, cfg.VoteDuringSubmissions, logger)
}

func provideReminderService(doubts repository.DoubtRepository, gateway *bot.DiscordGateway, logger *slog.Logger) *service.ReminderService {
	return service.NewReminderService(doubts, gateway, logger)
}

func provideRouter(
	chat bot.Chat,
	doubts *service.DoubtService,
	verification *service.VerificationService,
	challenges *service.ChallengeService,
	cfg *config.Config,
	logger *slog.Logger,
) *bot.Router {
	return bot.NewRouter(chat, doubts, verification, challenges,
		cfg.QuestionsChannelID, cfg.ChallengeChannelID, cfg.SubmissionChannelID, logger)
}

func provideBot(
	session *discordgo.Session,
	gateway *bot.DiscordGateway,
	botRouter *bot.Router,
	reconciler *service.VoteReconciler,
	logger *slog.Logger,
) *bot.Bot {
	return bot.New(session, gateway, botRouter, reconciler, logger)
}

func provideLimiter(client redis.UniversalClient) middleware.Limiter {
	if client == nil {
		return middleware.NewLocalFixedWindowLimiter()
	}
	return middleware.NewRedisFixedWindowLimiter(client, "invite")
}

func provideRateLimiter(limiter middleware.Limiter, cfg *config.Config, logger *slog.Logger) *middleware.RateLimiter {
	return middleware.NewRateLimiter(limiter, cfg.InviteRateLimit, cfg.InviteRateLimitWindow, logger)
}

func provideInviteHandler(allowlist *service.AllowlistService, gateway *bot.DiscordGateway, cfg *config.Config, logger *slog.Logger) *handler.InviteHandler {
	return handler.NewInviteHandler(allowlist, gateway, cfg.InviteChannelID, logger)
}

func provideHTTPHandler(invite *handler.InviteHandler, rateLimiter *middleware.RateLimiter) http.Handler {
	return router.New(router.Dependencies{Invite: invite, RateLimiter: rateLimiter})
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      h,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

func provideScheduler(
	cfg *config.Config,
	challenges *service.ChallengeService,
	reminders *service.ReminderService,
	logger *slog.Logger,
) (*scheduler.Scheduler, error) {
	sched := scheduler.New(logger)
	jobs := []scheduler.Job{
		{Name: "challenge_post", Spec: cfg.ChallengePostSpec, Run: func(ctx context.Context) error {
			_, err := challenges.PostChallenge(ctx)
			return err
		}},
		{Name: "submission_close", Spec: cfg.SubmissionCloseSpec, Run: challenges.CloseSubmissions},
		{Name: "voting_close", Spec: cfg.VotingCloseSpec, Run: challenges.CloseVoting},
		{Name: "doubt_reminders", Spec: cfg.DoubtReminderSpec, Run: reminders.RemindUnresolved},
	}
	for _, job := range jobs {
		if err := sched.Register(job); err != nil {
			return nil, err
		}
	}
	return sched, nil
}
