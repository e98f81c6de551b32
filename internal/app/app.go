package app

import (
	"log/slog"

	"github.com/chainreport/indexerd/internal/adapters/indexer"
	"github.com/chainreport/indexerd/internal/config"
	"github.com/chainreport/indexerd/internal/server"
	"github.com/chainreport/indexerd/internal/usecase"
)

// App is the main application container holding the wired use cases and
// the adapters the CLI needs direct access to.
type App struct {
	Config *config.RuntimeConfig
	Log    *slog.Logger

	// Use cases
	RegisterContracts *usecase.RegisterContracts
	QueryEvents       *usecase.QueryEvents
	ListContracts     *usecase.ListContracts

	// Adapters (the supervisor is started explicitly by serve)
	Supervisor *indexer.Supervisor

	Server *server.Server
}

// NewApp assembles the application container.
func NewApp(
	cfg *config.RuntimeConfig,
	log *slog.Logger,
	registerContracts *usecase.RegisterContracts,
	queryEvents *usecase.QueryEvents,
	listContracts *usecase.ListContracts,
	supervisor *indexer.Supervisor,
	srv *server.Server,
) *App {
	return &App{
		Config:            cfg,
		Log:               log,
		RegisterContracts: registerContracts,
		QueryEvents:       queryEvents,
		ListContracts:     listContracts,
		Supervisor:        supervisor,
		Server:            srv,
	}
}
