package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env      string
	HTTPPort string

	DatabaseURL string
	RedisAddr   string

	DiscordToken        string
	GuildID             string
	QuestionsChannelID  string
	ChallengeChannelID  string
	SubmissionChannelID string
	InviteChannelID     string
	MemberRoleName      string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	OTPTTL            time.Duration
	AllowlistCacheTTL time.Duration

	ChallengesFile        string
	ChallengePostSpec     string
	SubmissionCloseSpec   string
	VotingCloseSpec       string
	DoubtReminderSpec     string
	VoteDuringSubmissions bool

	InviteRateLimit       int
	InviteRateLimitWindow time.Duration

	LogLevel  string
	LogFormat string
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		HTTPPort: getEnv("HTTP_PORT", "3000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),

		DiscordToken:        os.Getenv("DISCORD_TOKEN"),
		GuildID:             os.Getenv("DISCORD_GUILD_ID"),
		QuestionsChannelID:  os.Getenv("QUESTIONS_CHANNEL_ID"),
		ChallengeChannelID:  os.Getenv("CHALLENGE_CHANNEL_ID"),
		SubmissionChannelID: os.Getenv("SUBMISSION_CHANNEL_ID"),
		InviteChannelID:     os.Getenv("INVITE_CHANNEL_ID"),
		MemberRoleName:      getEnv("MEMBER_ROLE_NAME", "Member"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     getEnv("SMTP_FROM", "AlgoPath Auth <no-reply@algopath.com>"),

		ChallengesFile:        getEnv("CHALLENGES_FILE", "challenges.json"),
		ChallengePostSpec:     getEnv("CHALLENGE_POST_CRON", "0 9 * * 1"),
		SubmissionCloseSpec:   getEnv("SUBMISSION_CLOSE_CRON", "59 23 * * 4"),
		VotingCloseSpec:       getEnv("VOTING_CLOSE_CRON", "59 23 * * 6"),
		DoubtReminderSpec:     getEnv("DOUBT_REMINDER_CRON", "0 10 * * *"),
		VoteDuringSubmissions: getEnvBool("VOTE_DURING_SUBMISSIONS", true),

		InviteRateLimit: getEnvInt("INVITE_RATE_LIMIT", 5),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	otpTTL, err := time.ParseDuration(getEnv("OTP_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("parse OTP_TTL: %w", err)
	}
	cfg.OTPTTL = otpTTL

	cacheTTL, err := time.ParseDuration(getEnv("ALLOWLIST_CACHE_TTL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("parse ALLOWLIST_CACHE_TTL: %w", err)
	}
	cfg.AllowlistCacheTTL = cacheTTL

	window, err := time.ParseDuration(getEnv("INVITE_RATE_LIMIT_WINDOW", "15m"))
	if err != nil {
		return nil, fmt.Errorf("parse INVITE_RATE_LIMIT_WINDOW: %w", err)
	}
	cfg.InviteRateLimitWindow = window

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if c.DiscordToken == "" {
		errs = append(errs, "DISCORD_TOKEN is required")
	}
	if c.GuildID == "" {
		errs = append(errs, "DISCORD_GUILD_ID is required")
	}
	if c.QuestionsChannelID == "" {
		errs = append(errs, "QUESTIONS_CHANNEL_ID is required")
	}
	if c.ChallengeChannelID == "" {
		errs = append(errs, "CHALLENGE_CHANNEL_ID is required")
	}
	if c.SubmissionChannelID == "" {
		errs = append(errs, "SUBMISSION_CHANNEL_ID is required")
	}
	if c.InviteChannelID == "" {
		errs = append(errs, "INVITE_CHANNEL_ID is required")
	}
	if c.OTPTTL <= 0 || c.OTPTTL > time.Hour {
		errs = append(errs, "OTP_TTL must be between 1s and 1h")
	}
	if c.InviteRateLimit <= 0 {
		errs = append(errs, "INVITE_RATE_LIMIT must be > 0")
	}
	if c.InviteRateLimitWindow <= 0 {
		errs = append(errs, "INVITE_RATE_LIMIT_WINDOW must be > 0")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
