//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"

	"github.com/chainreport/indexerd/internal/adapters/artifacts"
	"github.com/chainreport/indexerd/internal/adapters/indexer"
	"github.com/chainreport/indexerd/internal/adapters/manifest"
	"github.com/chainreport/indexerd/internal/adapters/postgres"
	"github.com/chainreport/indexerd/internal/config"
	"github.com/chainreport/indexerd/internal/logging"
	"github.com/chainreport/indexerd/internal/server"
	"github.com/chainreport/indexerd/internal/usecase"
)

// InitApp creates a fully wired App instance.
func InitApp(v *viper.Viper) (*App, func(), error) {
	wire.Build(
		config.Provider,
		logging.NewLogger,

		// Adapters
		ProvidePool,
		postgres.NewMappingStore,
		postgres.NewEventReader,
		manifest.NewStore,
		artifacts.NewWriter,
		indexer.NewSupervisor,
		wire.Bind(new(usecase.MappingStore), new(*postgres.MappingStore)),
		wire.Bind(new(usecase.EventReader), new(*postgres.EventReader)),
		wire.Bind(new(usecase.ManifestStore), new(*manifest.Store)),
		wire.Bind(new(usecase.ArtifactStore), new(*artifacts.Writer)),
		wire.Bind(new(usecase.IndexerSupervisor), new(*indexer.Supervisor)),

		// Use cases
		usecase.NewRegisterContracts,
		usecase.NewQueryEvents,
		usecase.NewListContracts,

		// Surfaces
		server.NewServer,

		NewApp,
	)
	return nil, nil, nil
}
