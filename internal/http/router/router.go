package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/algopath/community-bot/internal/http/handler"
	"github.com/algopath/community-bot/internal/http/middleware"
)

type Dependencies struct {
	Invite      *handler.InviteHandler
	RateLimiter *middleware.RateLimiter
}

func New(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Group(func(r chi.Router) {
		r.Use(dep.RateLimiter.Middleware())
		r.Post("/get-discord-invite", dep.Invite.CreateInvite)
	})

	return r
}
