//go:build wireinject
// +build wireinject

package di

import (
	"MarketCoach/internal/domain/repository"
	"MarketCoach/pkg/config"
	"MarketCoach/pkg/metrics"
	"MarketCoach/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Infrastructure
		ProvideKafkaProducer,
		ProvideLogger,
		ProvideCache,
		ProvideClock,
		ProvideUniverse,
		ProvideLimiter,
		ProvideMetrics,
		wire.Bind(new(repository.Metrics), new(*metrics.Recorder)),

		// Gateways and repositories
		ProvideMarketData,
		ProvidePublisher,
		ProvideClassifier,

		// Use cases
		ProvideSnapshotGateway,
		ProvideCoach,
		ProvideRegimeUseCase,
		ProvideBaselines,
		ProvideFundamentals,
		ProvideEvents,

		// HTTP
		ProvideDashboardHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
