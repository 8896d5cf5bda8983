package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/algopath/community-bot/internal/observability"
	"github.com/algopath/community-bot/internal/repository"
	"github.com/algopath/community-bot/internal/service"
)

// Message is one inbound chat message, decoupled from the gateway's
// event types.
type Message struct {
	ID        string
	ChannelID string
	AuthorID  string
	AuthorBot bool
	Content   string
}

var doubtCommands = map[string]bool{
	"!ask":     true,
	"!resolve": true,
	"!doubts":  true,
}

// Router dispatches prefixed chat commands and captures challenge
// submissions. Unrecognized commands are ignored. Every handler
// produces exactly one reply; failures never propagate past the
// router.
type Router struct {
	chat         Chat
	doubts       *service.DoubtService
	verification *service.VerificationService
	challenges   *service.ChallengeService

	questionsChannelID  string
	challengeChannelID  string
	submissionChannelID string

	logger *slog.Logger
}

func NewRouter(
	chat Chat,
	doubts *service.DoubtService,
	verification *service.VerificationService,
	challenges *service.ChallengeService,
	questionsChannelID, challengeChannelID, submissionChannelID string,
	logger *slog.Logger,
) *Router {
	return &Router{
		chat:                chat,
		doubts:              doubts,
		verification:        verification,
		challenges:          challenges,
		questionsChannelID:  questionsChannelID,
		challengeChannelID:  challengeChannelID,
		submissionChannelID: submissionChannelID,
		logger:              logger,
	}
}

func (r *Router) HandleMessage(ctx context.Context, msg Message) {
	if msg.AuthorBot {
		return
	}
	fields := strings.Fields(msg.Content)
	if len(fields) == 0 {
		return
	}
	command, args := fields[0], fields[1:]

	if msg.ChannelID == r.submissionChannelID && !strings.HasPrefix(msg.Content, "!") {
		r.handleSubmission(ctx, msg)
		return
	}

	if doubtCommands[command] && msg.ChannelID != r.questionsChannelID {
		r.reply(ctx, msg, fmt.Sprintf("❌ Please use this command only in <#%s>.", r.questionsChannelID))
		return
	}

	switch command {
	case "!ask":
		r.handleAsk(ctx, msg, args)
	case "!resolve":
		r.handleResolve(ctx, msg, args)
	case "!doubts":
		r.handleDoubts(ctx, msg, args)
	case "!verify":
		r.handleVerify(ctx, msg, args)
	case "!otp":
		r.handleOTP(ctx, msg, args)
	case "!test-challenge":
		r.handleTestChallenge(ctx, msg)
	case "!test-voting":
		r.handleTestVoting(ctx, msg)
	case "!test-close":
		r.handleTestClose(ctx, msg)
	case "!test-status":
		r.handleTestStatus(ctx, msg)
	case "!test-debug":
		r.handleTestDebug(ctx, msg)
	case "!test-votes":
		r.handleTestVotes(ctx, msg)
	}
}

func (r *Router) handleSubmission(ctx context.Context, msg Message) {
	err := r.challenges.Submit(ctx, msg.ID, msg.AuthorID, msg.Content)
	switch {
	case errors.Is(err, service.ErrSubmissionsClosed):
		observability.RecordBotEvent(ctx, "submission", "closed")
		r.reply(ctx, msg, "❌ No active challenge for submissions right now. Check back on Monday for the new challenge!")
	case err != nil:
		observability.RecordBotEvent(ctx, "submission", "error")
		r.logger.ErrorContext(ctx, "submission handling failed", "message_id", msg.ID, "error", err)
	default:
		observability.RecordBotEvent(ctx, "submission", "success")
	}
}

func (r *Router) handleAsk(ctx context.Context, msg Message, args []string) {
	doubt, err := r.doubts.Ask(ctx, msg.AuthorID, strings.Join(args, " "))
	switch {
	case errors.Is(err, service.ErrEmptyQuestion):
		observability.RecordBotEvent(ctx, "ask", "invalid")
		r.reply(ctx, msg, "❌ Please provide a question after !ask.")
	case err != nil:
		observability.RecordBotEvent(ctx, "ask", "error")
		r.logger.ErrorContext(ctx, "ask failed", "error", err)
		r.reply(ctx, msg, "⚠️ Something went wrong. Try again later.")
	default:
		observability.RecordBotEvent(ctx, "ask", "success")
		r.reply(ctx, msg, fmt.Sprintf("✅ Doubt submitted (ID: %d). Someone will help soon!", doubt.ID))
	}
}

func (r *Router) handleResolve(ctx context.Context, msg Message, args []string) {
	if len(args) == 0 {
		r.reply(ctx, msg, "❌ Please provide a valid doubt ID.")
		return
	}
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil || id == 0 {
		r.reply(ctx, msg, "❌ Please provide a valid doubt ID.")
		return
	}

	err = r.doubts.Resolve(ctx, msg.AuthorID, uint(id))
	switch {
	case errors.Is(err, repository.ErrDoubtNotFound), errors.Is(err, service.ErrNotDoubtOwner):
		observability.RecordBotEvent(ctx, "resolve", "rejected")
		r.reply(ctx, msg, "❌ Doubt ID not found or not your doubt.")
	case errors.Is(err, service.ErrAlreadyResolved):
		observability.RecordBotEvent(ctx, "resolve", "rejected")
		r.reply(ctx, msg, "ℹ️ This doubt is already resolved.")
	case err != nil:
		observability.RecordBotEvent(ctx, "resolve", "error")
		r.logger.ErrorContext(ctx, "resolve failed", "doubt_id", id, "error", err)
		r.reply(ctx, msg, "⚠️ Something went wrong. Try again later.")
	default:
		observability.RecordBotEvent(ctx, "resolve", "success")
		r.reply(ctx, msg, fmt.Sprintf("✅ Doubt %d marked as resolved. Great job!", id))
	}
}

func (r *Router) handleDoubts(ctx context.Context, msg Message, args []string) {
	filter := repository.DoubtFilterAll
	label := "all"
	if len(args) > 0 {
		switch args[0] {
		case "open":
			filter, label = repository.DoubtFilterOpen, "open"
		case "closed":
			filter, label = repository.DoubtFilterClosed, "closed"
		}
	}

	summary, err := r.doubts.List(ctx, msg.AuthorID, filter)
	if err != nil {
		observability.RecordBotEvent(ctx, "doubts", "error")
		r.logger.ErrorContext(ctx, "doubt listing failed", "error", err)
		r.reply(ctx, msg, "⚠️ Something went wrong. Try again later.")
		return
	}
	if summary.Total == 0 {
		observability.RecordBotEvent(ctx, "doubts", "empty")
		r.reply(ctx, msg, "ℹ️ You have no doubts matching that filter.")
		return
	}

	lines := make([]string, 0, summary.Total)
	for _, d := range summary.Doubts {
		marker := "❌"
		if d.Resolved {
			marker = "✅"
		}
		lines = append(lines, fmt.Sprintf("• [%d] %s — %s", d.ID, d.Question, marker))
	}
	observability.RecordBotEvent(ctx, "doubts", "success")
	r.replyEmbed(ctx, msg, service.Embed{
		Title:       fmt.Sprintf("Your Doubts (%s)", label),
		Description: strings.Join(lines, "\n"),
		Footer:      fmt.Sprintf("Total: %d | Open: %d | Closed: %d", summary.Total, summary.Open, summary.Closed),
	})
}

func (r *Router) handleVerify(ctx context.Context, msg Message, args []string) {
	if len(args) == 0 {
		r.reply(ctx, msg, "❌ Please provide a valid email.")
		return
	}

	err := r.verification.RequestOTP(ctx, msg.AuthorID, args[0])
	switch {
	case errors.Is(err, service.ErrMalformedEmail):
		observability.RecordBotEvent(ctx, "verify", "invalid")
		r.reply(ctx, msg, "❌ Please provide a valid email.")
	case errors.Is(err, service.ErrEmailNotAllowed):
		observability.RecordBotEvent(ctx, "verify", "rejected")
		r.reply(ctx, msg, "❌ This email is not authorized.")
	case err != nil:
		observability.RecordBotEvent(ctx, "verify", "error")
		r.logger.ErrorContext(ctx, "verify failed", "error", err)
		r.reply(ctx, msg, "⚠️ Error sending OTP. Please try again later.")
	default:
		observability.RecordBotEvent(ctx, "verify", "success")
		r.reply(ctx, msg, "📧 OTP has been sent to your email. Use `!otp <code>` to verify.")
	}
}

func (r *Router) handleOTP(ctx context.Context, msg Message, args []string) {
	if len(args) == 0 {
		r.reply(ctx, msg, "❌ Please enter the OTP code.")
		return
	}

	err := r.verification.ConfirmOTP(ctx, msg.AuthorID, args[0])
	switch {
	case errors.Is(err, repository.ErrOTPMismatch):
		observability.RecordBotEvent(ctx, "otp", "rejected")
		r.reply(ctx, msg, "❌ Invalid or expired OTP.")
	case err != nil:
		observability.RecordBotEvent(ctx, "otp", "error")
		r.logger.ErrorContext(ctx, "otp confirmation failed", "error", err)
		r.reply(ctx, msg, "⚠️ Something went wrong. Try again later.")
	default:
		observability.RecordBotEvent(ctx, "otp", "success")
		r.reply(ctx, msg, "✅ Verification successful! You've been granted access.")
	}
}

func (r *Router) handleTestChallenge(ctx context.Context, msg Message) {
	_, err := r.challenges.PostChallenge(ctx)
	switch {
	case errors.Is(err, service.ErrEmptyCatalog):
		r.reply(ctx, msg, "❌ No challenges available in the catalog.")
	case err != nil:
		r.logger.ErrorContext(ctx, "manual challenge post failed", "error", err)
		r.reply(ctx, msg, "❌ Error posting test challenge. Check logs for details.")
	default:
		r.reply(ctx, msg, "✅ Test challenge posted! Previous challenge data cleared. Go submit solutions in the submission channel.")
	}
}

func (r *Router) handleTestVoting(ctx context.Context, msg Message) {
	if err := r.challenges.CloseSubmissions(ctx); err != nil {
		r.logger.ErrorContext(ctx, "manual voting transition failed", "error", err)
		r.reply(ctx, msg, "❌ Error enabling voting mode.")
		return
	}
	r.reply(ctx, msg, "✅ Voting mode enabled! You can now vote on submissions.")
}

func (r *Router) handleTestClose(ctx context.Context, msg Message) {
	if err := r.challenges.CloseVoting(ctx); err != nil {
		r.logger.ErrorContext(ctx, "manual close failed", "error", err)
		r.reply(ctx, msg, "❌ Error closing test challenge.")
		return
	}
	r.reply(ctx, msg, "✅ Test challenge closed!")
}

func (r *Router) handleTestStatus(ctx context.Context, msg Message) {
	snap, err := r.challenges.Status(ctx)
	switch {
	case errors.Is(err, repository.ErrNoChallenge):
		r.reply(ctx, msg, "❌ No challenge data found. Use !test-challenge to start one.")
	case err != nil:
		r.logger.ErrorContext(ctx, "status check failed", "error", err)
		r.reply(ctx, msg, fmt.Sprintf("❌ Error checking challenge status: %v", err))
	default:
		r.replyEmbed(ctx, msg, service.Embed{
			Title: "📊 Challenge Status",
			Fields: []service.EmbedField{
				{Name: "Status", Value: string(snap.Status), Inline: true},
				{Name: "Created", Value: snap.CreatedAt.Format("2006-01-02 15:04:05"), Inline: true},
				{Name: "Challenge", Value: snap.Title},
			},
		})
	}
}

func (r *Router) handleTestDebug(ctx context.Context, msg Message) {
	var b strings.Builder
	b.WriteString("**🔍 Debug Information:**\n\n")

	snap, err := r.challenges.Status(ctx)
	switch {
	case errors.Is(err, repository.ErrNoChallenge):
		b.WriteString("**Challenge Records:** 0\n")
	case err != nil:
		r.logger.ErrorContext(ctx, "debug check failed", "error", err)
		r.reply(ctx, msg, fmt.Sprintf("❌ Debug error: %v", err))
		return
	default:
		b.WriteString("**Challenge Records:** 1\n")
		fmt.Fprintf(&b, "**Current Status:** %s\n", snap.Status)
		fmt.Fprintf(&b, "**Total Submissions:** %d\n", snap.Submissions)
		fmt.Fprintf(&b, "**Total Votes:** %d\n", snap.Votes)
	}

	b.WriteString("\n**Channel IDs:**\n")
	fmt.Fprintf(&b, "Challenge: %s\n", r.challengeChannelID)
	fmt.Fprintf(&b, "Submission: %s\n", r.submissionChannelID)
	r.reply(ctx, msg, b.String())
}

func (r *Router) handleTestVotes(ctx context.Context, msg Message) {
	stats, err := r.challenges.VoteStats(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "vote stats failed", "error", err)
		r.reply(ctx, msg, "❌ Error fetching voting statistics.")
		return
	}
	if len(stats) == 0 {
		r.reply(ctx, msg, "❌ No submissions found for current challenge.")
		return
	}

	lines := make([]string, 0, len(stats))
	for i, row := range stats {
		rating := "N/A"
		if row.VoteCount > 0 {
			rating = fmt.Sprintf("%.1f", row.AverageRank)
		}
		lines = append(lines, fmt.Sprintf("**%d.** <@%s>\nVotes: %d\nAvg Rating: %s\nPreview: %s\n",
			i+1, row.AuthorID, row.VoteCount, rating, preview(row.Content, 50)))
	}
	r.replyEmbed(ctx, msg, service.Embed{
		Title:       "📈 Current Challenge Voting Statistics",
		Description: strings.Join(lines, "\n"),
	})
}

func (r *Router) reply(ctx context.Context, msg Message, content string) {
	if err := r.chat.Reply(ctx, msg.ChannelID, msg.ID, content); err != nil {
		r.logger.WarnContext(ctx, "reply failed", "channel_id", msg.ChannelID, "error", err)
	}
}

func (r *Router) replyEmbed(ctx context.Context, msg Message, embed service.Embed) {
	if err := r.chat.ReplyEmbed(ctx, msg.ChannelID, msg.ID, embed); err != nil {
		r.logger.WarnContext(ctx, "embed reply failed", "channel_id", msg.ChannelID, "error", err)
	}
}

func preview(content string, max int) string {
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max]) + "..."
}
