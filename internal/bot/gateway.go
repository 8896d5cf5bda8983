package bot

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/algopath/community-bot/internal/service"
)

// Chat is the reply surface the command router needs on top of
// service.Gateway.
type Chat interface {
	Reply(ctx context.Context, channelID, messageID, content string) error
	ReplyEmbed(ctx context.Context, channelID, messageID string, embed service.Embed) error
}

// DiscordGateway adapts a discordgo session to the service.Gateway
// and Chat interfaces.
type DiscordGateway struct {
	session  *discordgo.Session
	guildID  string
	roleName string

	roleMu sync.Mutex
	roleID string
}

var _ service.Gateway = (*DiscordGateway)(nil)
var _ Chat = (*DiscordGateway)(nil)

func NewDiscordGateway(session *discordgo.Session, guildID, roleName string) *DiscordGateway {
	return &DiscordGateway{session: session, guildID: guildID, roleName: roleName}
}

func (g *DiscordGateway) SendEmbed(_ context.Context, channelID string, embed service.Embed) (string, error) {
	msg, err := g.session.ChannelMessageSendEmbed(channelID, toMessageEmbed(embed))
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (g *DiscordGateway) Reply(_ context.Context, channelID, messageID, content string) error {
	_, err := g.session.ChannelMessageSendReply(channelID, content, &discordgo.MessageReference{
		MessageID: messageID,
		ChannelID: channelID,
		GuildID:   g.guildID,
	})
	return err
}

func (g *DiscordGateway) ReplyEmbed(_ context.Context, channelID, messageID string, embed service.Embed) error {
	_, err := g.session.ChannelMessageSendEmbedReply(channelID, toMessageEmbed(embed), &discordgo.MessageReference{
		MessageID: messageID,
		ChannelID: channelID,
		GuildID:   g.guildID,
	})
	return err
}

func (g *DiscordGateway) React(_ context.Context, channelID, messageID, glyph string) error {
	return g.session.MessageReactionAdd(channelID, messageID, glyph)
}

func (g *DiscordGateway) RemoveReaction(_ context.Context, channelID, messageID, glyph, userID string) error {
	return g.session.MessageReactionRemove(channelID, messageID, glyph, userID)
}

const reactionPageSize = 100

func (g *DiscordGateway) ReactionUsers(_ context.Context, channelID, messageID, glyph string) ([]string, error) {
	var ids []string
	after := ""
	for {
		users, err := g.session.MessageReactions(channelID, messageID, glyph, reactionPageSize, "", after)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			ids = append(ids, u.ID)
		}
		if len(users) < reactionPageSize {
			return ids, nil
		}
		after = users[len(users)-1].ID
	}
}

func (g *DiscordGateway) DirectMessage(_ context.Context, userID, content string) error {
	channel, err := g.session.UserChannelCreate(userID)
	if err != nil {
		return err
	}
	_, err = g.session.ChannelMessageSend(channel.ID, content)
	return err
}

func (g *DiscordGateway) GrantMemberRole(_ context.Context, userID string) error {
	roleID, err := g.memberRoleID()
	if err != nil {
		return err
	}
	return g.session.GuildMemberRoleAdd(g.guildID, userID, roleID)
}

func (g *DiscordGateway) CreateInvite(_ context.Context, channelID string) (string, error) {
	invite, err := g.session.ChannelInviteCreate(channelID, discordgo.Invite{
		MaxAge:  3600,
		MaxUses: 1,
		Unique:  true,
	})
	if err != nil {
		return "", err
	}
	return "https://discord.gg/" + invite.Code, nil
}

func (g *DiscordGateway) memberRoleID() (string, error) {
	g.roleMu.Lock()
	defer g.roleMu.Unlock()
	if g.roleID != "" {
		return g.roleID, nil
	}
	roles, err := g.session.GuildRoles(g.guildID)
	if err != nil {
		return "", fmt.Errorf("list guild roles: %w", err)
	}
	for _, role := range roles {
		if role.Name == g.roleName {
			g.roleID = role.ID
			return g.roleID, nil
		}
	}
	return "", fmt.Errorf("role %q not found in guild %s", g.roleName, g.guildID)
}

func toMessageEmbed(embed service.Embed) *discordgo.MessageEmbed {
	out := &discordgo.MessageEmbed{
		Title:       embed.Title,
		Description: embed.Description,
	}
	for _, f := range embed.Fields {
		out.Fields = append(out.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}
	if embed.Footer != "" {
		out.Footer = &discordgo.MessageEmbedFooter{Text: embed.Footer}
	}
	return out
}
