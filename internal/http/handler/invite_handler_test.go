package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/algopath/community-bot/internal/domain"
	"github.com/algopath/community-bot/internal/repository"
	"github.com/algopath/community-bot/internal/service"
)

type inviteGateway struct {
	service.Gateway
	inviteErr error
	created   int
}

func (g *inviteGateway) CreateInvite(context.Context, string) (string, error) {
	if g.inviteErr != nil {
		return "", g.inviteErr
	}
	g.created++
	return "https://discord.gg/abc123", nil
}

func newInviteHandlerForTest(t *testing.T) (*InviteHandler, *inviteGateway) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.AllowedEmail{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Create(&domain.AllowedEmail{Email: "alice@algopath.com"}).Error; err != nil {
		t.Fatalf("seed allow-list: %v", err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	allowlist := service.NewAllowlistService(repository.NewAllowlistRepository(db), nil, 0, log)
	gateway := &inviteGateway{}
	return NewInviteHandler(allowlist, gateway, "chan-invite", log), gateway
}

func postInvite(t *testing.T, h *InviteHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/get-discord-invite", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.CreateInvite(rec, req)
	return rec
}

func TestCreateInviteSuccess(t *testing.T) {
	h, gateway := newInviteHandlerForTest(t)

	rec := postInvite(t, h, `{"email":"alice@algopath.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["invite"] != "https://discord.gg/abc123" {
		t.Fatalf("unexpected invite: %v", resp)
	}
	if gateway.created != 1 {
		t.Fatalf("expected one invite creation, got %d", gateway.created)
	}
}

func TestCreateInviteMalformedEmail(t *testing.T) {
	h, _ := newInviteHandlerForTest(t)

	for _, body := range []string{`{}`, `{"email":"nope"}`, `not json`} {
		rec := postInvite(t, h, body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "valid email") {
			t.Fatalf("body %q: unexpected response %s", body, rec.Body.String())
		}
	}
}

func TestCreateInviteNotAllowListed(t *testing.T) {
	h, gateway := newInviteHandlerForTest(t)

	rec := postInvite(t, h, `{"email":"mallory@example.com"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if gateway.created != 0 {
		t.Fatal("no invite should be created for rejected email")
	}
}

func TestCreateInviteDownstreamFailure(t *testing.T) {
	h, gateway := newInviteHandlerForTest(t)
	gateway.inviteErr = errors.New("discord unreachable")

	rec := postInvite(t, h, `{"email":"alice@algopath.com"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "error") {
		t.Fatalf("expected error body, got %s", rec.Body.String())
	}
}
