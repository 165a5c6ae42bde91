//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"
	"transcript-rag/internal/app/logging"
	"transcript-rag/internal/config"
)

// InitializeApp builds the ingestion coordinator, the query service and
// their stores from cfg. The returned cleanup closes every opened store.
func InitializeApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, func(), error) {
	wire.Build(ProviderSet)
	return &App{}, nil, nil
}
