package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/algopath/community-bot/internal/service"
)

// Bot owns the Discord session and fans gateway events out to the
// command router and the vote reconciler. Each event is handled on
// its own goroutine by discordgo; handler failures are logged and
// never propagate.
type Bot struct {
	session    *discordgo.Session
	gateway    *DiscordGateway
	router     *Router
	reconciler *service.VoteReconciler
	logger     *slog.Logger
}

func New(session *discordgo.Session, gateway *DiscordGateway, router *Router, reconciler *service.VoteReconciler, logger *slog.Logger) *Bot {
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsMessageContent

	b := &Bot{session: session, gateway: gateway, router: router, reconciler: reconciler, logger: logger}
	session.AddHandler(b.onReady)
	session.AddHandler(b.onMessageCreate)
	session.AddHandler(b.onReactionAdd)
	session.AddHandler(b.onReactionRemove)
	session.AddHandler(b.onMemberJoin)
	return b
}

func (b *Bot) Open() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	return nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("bot online", "user", r.User.Username)
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.GuildID == "" {
		return
	}
	b.router.HandleMessage(context.Background(), Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		AuthorID:  m.Author.ID,
		AuthorBot: m.Author.Bot,
		Content:   m.Content,
	})
}

func (b *Bot) onReactionAdd(s *discordgo.Session, e *discordgo.MessageReactionAdd) {
	ev := b.reactionEvent(s, e.MessageReaction)
	if err := b.reconciler.ReactionAdded(context.Background(), ev); err != nil {
		b.logger.Error("reaction add handling failed",
			"message_id", ev.MessageID, "user_id", ev.UserID, "error", err)
	}
}

func (b *Bot) onReactionRemove(s *discordgo.Session, e *discordgo.MessageReactionRemove) {
	ev := b.reactionEvent(s, e.MessageReaction)
	if err := b.reconciler.ReactionRemoved(context.Background(), ev); err != nil {
		b.logger.Error("reaction remove handling failed",
			"message_id", ev.MessageID, "user_id", ev.UserID, "error", err)
	}
}

func (b *Bot) onMemberJoin(_ *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.User == nil || m.User.Bot {
		return
	}
	welcome := fmt.Sprintf(
		"👋 Welcome to AlgoPath, **%s**!\n\n"+
			"**Note**: You will only be able to join the community if your email is registered with AlgoPath.\n\n"+
			"**Getting Started Tips:**\n"+
			"- Use `!verify your@email` in #welcome to register\n"+
			"- Follow the DM instructions to complete OTP verification\n"+
			"- Then ask doubts in #doubts with `!ask`\n"+
			"- View or resolve them with `!doubts`/`!resolve`\n\n"+
			"_If you don't see the email, check your spam folder or wait a minute._",
		m.User.Username,
	)
	if err := b.gateway.DirectMessage(context.Background(), m.User.ID, welcome); err != nil {
		b.logger.Warn("welcome DM failed", "user_id", m.User.ID, "error", err)
	}
}

func (b *Bot) reactionEvent(s *discordgo.Session, r *discordgo.MessageReaction) service.ReactionEvent {
	fromBot := s.State != nil && s.State.User != nil && r.UserID == s.State.User.ID
	return service.ReactionEvent{
		ChannelID: r.ChannelID,
		MessageID: r.MessageID,
		UserID:    r.UserID,
		Glyph:     r.Emoji.Name,
		FromBot:   fromBot,
	}
}
