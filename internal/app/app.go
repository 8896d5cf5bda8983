package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/algopath/community-bot/internal/bot"
	"github.com/algopath/community-bot/internal/config"
	"github.com/algopath/community-bot/internal/scheduler"
)

type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Bot       *bot.Bot
	Server    *http.Server
	Scheduler *scheduler.Scheduler
}

func New(cfg *config.Config, logger *slog.Logger, b *bot.Bot, server *http.Server, sched *scheduler.Scheduler) *App {
	return &App{Config: cfg, Logger: logger, Bot: b, Server: server, Scheduler: sched}
}

// Run connects the bot, starts the scheduler and the invite server,
// then blocks until the context is cancelled and shuts everything
// down.
func (a *App) Run(ctx context.Context) error {
	if err := a.Bot.Open(); err != nil {
		return err
	}
	defer func() {
		if err := a.Bot.Close(); err != nil {
			a.Logger.Warn("discord session close failed", "error", err)
		}
	}()

	a.Scheduler.Start()
	defer a.Scheduler.Stop()

	serveErr := make(chan error, 1)
	go func() {
		a.Logger.Info("invite server listening", "addr", a.Server.Addr)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		a.Logger.Warn("invite server shutdown failed", "error", err)
	}
	return nil
}
