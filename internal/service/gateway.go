package service

import "context"

// Embed is the platform-agnostic shape of a rich announcement.
type Embed struct {
	Title       string
	Description string
	Fields      []EmbedField
	Footer      string
}

type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// Gateway is the messaging-platform surface the services need. The
// discordgo-backed implementation lives in the bot package; tests
// substitute fakes.
type Gateway interface {
	SendEmbed(ctx context.Context, channelID string, embed Embed) (messageID string, err error)
	React(ctx context.Context, channelID, messageID, glyph string) error
	RemoveReaction(ctx context.Context, channelID, messageID, glyph, userID string) error
	// ReactionUsers lists the IDs of users currently reacting with
	// the glyph on the message.
	ReactionUsers(ctx context.Context, channelID, messageID, glyph string) ([]string, error)
	DirectMessage(ctx context.Context, userID, content string) error
	GrantMemberRole(ctx context.Context, userID string) error
	CreateInvite(ctx context.Context, channelID string) (url string, err error)
}
