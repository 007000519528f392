//go:build wireinject
// +build wireinject

package app

import (
	"github.com/amaumene/gowatchlist/internal/config"
	"github.com/amaumene/gowatchlist/internal/metrics"
	"github.com/amaumene/gowatchlist/internal/models"
	"github.com/amaumene/gowatchlist/internal/services/omdb"
	"github.com/google/wire"
)

// Initialize wires the whole application
func Initialize(cfg *config.Config) (*App, func(), error) {
	wire.Build(AppSet)
	return nil, nil, nil
}

// InitializeDatabase wires only the store, for maintenance commands
func InitializeDatabase(cfg *config.Config) (*models.Database, func(), error) {
	wire.Build(ProvideLogger, ProvideDatabase)
	return nil, nil, nil
}

// InitializeLookup wires the OMDb client without opening the store
func InitializeLookup(cfg *config.Config) (*omdb.Client, func(), error) {
	wire.Build(ProvideLogger, metrics.New, ProvideTracerProvider, omdb.NewClient)
	return nil, nil, nil
}
