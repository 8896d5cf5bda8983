package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/algopath/community-bot/internal/http/response"
	"github.com/algopath/community-bot/internal/observability"
	"github.com/algopath/community-bot/internal/service"
)

type inviteRequest struct {
	Email string `json:"email"`
}

type inviteResponse struct {
	Invite string `json:"invite"`
}

// InviteHandler serves POST /get-discord-invite: allow-listed emails
// receive a fresh single-use invite link.
type InviteHandler struct {
	allowlist       *service.AllowlistService
	gateway         service.Gateway
	inviteChannelID string
	logger          *slog.Logger
}

func NewInviteHandler(allowlist *service.AllowlistService, gateway service.Gateway, inviteChannelID string, logger *slog.Logger) *InviteHandler {
	return &InviteHandler{
		allowlist:       allowlist,
		gateway:         gateway,
		inviteChannelID: inviteChannelID,
		logger:          logger,
	}
}

func (h *InviteHandler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordInviteRequest(r.Context(), "bad_request")
		response.Error(w, http.StatusBadRequest, "Please provide a valid email.")
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		observability.RecordInviteRequest(r.Context(), "bad_request")
		response.Error(w, http.StatusBadRequest, "Please provide a valid email.")
		return
	}

	allowed, err := h.allowlist.IsAllowed(r.Context(), email)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "allow-list lookup failed", "error", err)
		observability.RecordInviteRequest(r.Context(), "error")
		response.Error(w, http.StatusInternalServerError, "Server error. Try again later.")
		return
	}
	if !allowed {
		observability.RecordInviteRequest(r.Context(), "forbidden")
		response.Error(w, http.StatusForbidden, "Email not authorized.")
		return
	}

	url, err := h.gateway.CreateInvite(r.Context(), h.inviteChannelID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "invite generation failed", "error", err)
		observability.RecordInviteRequest(r.Context(), "error")
		response.Error(w, http.StatusInternalServerError, "Server error. Try again later.")
		return
	}
	observability.RecordInviteRequest(r.Context(), "success")
	response.JSON(w, http.StatusOK, inviteResponse{Invite: url})
}
