//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/packwise/internal/bootstrap"
	"github.com/yanqian/packwise/internal/domain/packing"
	"github.com/yanqian/packwise/internal/infra/config"
	httpiface "github.com/yanqian/packwise/internal/interface/http"
	"github.com/yanqian/packwise/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideTextGenerator,
		provideTokenCounter,
		providePromptBuilder,
		provideRemoteGenerator,
		provideOpenWeatherClient,
		provideGeocoder,
		provideWeatherStore,
		provideWeatherProvider,
		provideEmbedder,
		provideEmbeddingHook,
		packing.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
