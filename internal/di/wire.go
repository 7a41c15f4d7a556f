//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"TazeAI/internal/usecase"
	"TazeAI/pkg/config"
	"TazeAI/pkg/server"
)

var baseSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
	ProvideFeatureStore,
)

var analysisSet = wire.NewSet(
	baseSet,
	ProvidePredictor,
	ProvideProfiles,
	ProvideBacktestUseCase,
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		analysisSet,

		// Infrastructure clients
		ProvideKafkaProducer,
		ProvideSignalCache,
		ProvideMarketDataProvider,

		// Repositories
		ProvideSignalPublisher,

		// Use cases
		ProvideIngestUseCase,
		ProvideMarketAnalyzer,
		ProvideScheduler,

		// HTTP
		ProvideRateLimiter,
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}

func InitializeIngest(cfg *config.Config) (*usecase.IngestUseCase, func(), error) {
	wire.Build(baseSet, ProvideMarketDataProvider, ProvideIngestUseCase)
	return nil, nil, nil
}

func InitializeTrain(cfg *config.Config) (*usecase.TrainUseCase, func(), error) {
	wire.Build(baseSet, ProvideTrainUseCase)
	return nil, nil, nil
}

func InitializeBacktest(cfg *config.Config) (*usecase.BacktestUseCase, func(), error) {
	wire.Build(analysisSet)
	return nil, nil, nil
}
