//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/algopath/community-bot/internal/app"
)

func InitializeApp() (*app.App, error) {
	panic(wire.Build(
		ConfigSet,
		ObservabilitySet,
		InfraSet,
		RepositorySet,
		ServiceSet,
		BotSet,
		HTTPSet,
		AppSet,
	))
}
