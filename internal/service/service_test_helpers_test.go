package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/algopath/community-bot/internal/domain"
)

func newServiceDBForTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.AllowedEmail{},
		&domain.Member{},
		&domain.Doubt{},
		&domain.Challenge{},
		&domain.Submission{},
		&domain.Vote{},
	); err != nil {
		t.Fatalf("migrate db: %v", err)
	}
	return db
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type reactionKey struct {
	MessageID string
	Glyph     string
	UserID    string
}

// fakeGateway records outbound calls and simulates the reaction
// state Discord would hold.
type fakeGateway struct {
	mu sync.Mutex

	messageSeq int
	sendErr    error

	embeds    []Embed
	dms       map[string][]string
	reactions map[reactionKey]bool
	removed   []reactionKey
	granted   []string
	invites   int
	inviteErr error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		dms:       map[string][]string{},
		reactions: map[reactionKey]bool{},
	}
}

func (g *fakeGateway) SendEmbed(_ context.Context, _ string, embed Embed) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sendErr != nil {
		return "", g.sendErr
	}
	g.embeds = append(g.embeds, embed)
	g.messageSeq++
	return fmt.Sprintf("msg-%d", g.messageSeq), nil
}

func (g *fakeGateway) React(_ context.Context, _, messageID, glyph string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reactions[reactionKey{MessageID: messageID, Glyph: glyph, UserID: "bot"}] = true
	return nil
}

func (g *fakeGateway) RemoveReaction(_ context.Context, _, messageID, glyph, userID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := reactionKey{MessageID: messageID, Glyph: glyph, UserID: userID}
	delete(g.reactions, key)
	g.removed = append(g.removed, key)
	return nil
}

func (g *fakeGateway) ReactionUsers(_ context.Context, _, messageID, glyph string) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var users []string
	for key := range g.reactions {
		if key.MessageID == messageID && key.Glyph == glyph {
			users = append(users, key.UserID)
		}
	}
	return users, nil
}

func (g *fakeGateway) DirectMessage(_ context.Context, userID, content string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dms[userID] = append(g.dms[userID], content)
	return nil
}

func (g *fakeGateway) GrantMemberRole(_ context.Context, userID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.granted = append(g.granted, userID)
	return nil
}

func (g *fakeGateway) CreateInvite(_ context.Context, _ string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inviteErr != nil {
		return "", g.inviteErr
	}
	g.invites++
	return "https://discord.gg/test-invite", nil
}

// react seeds a user reaction as Discord would record it before the
// reconciler runs.
func (g *fakeGateway) react(messageID, glyph, userID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reactions[reactionKey{MessageID: messageID, Glyph: glyph, UserID: userID}] = true
}

func (g *fakeGateway) hasReaction(messageID, glyph, userID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reactions[reactionKey{MessageID: messageID, Glyph: glyph, UserID: userID}]
}

func (g *fakeGateway) removedCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.removed)
}
