package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/zeuecs/internal/config"
	"github.com/zeusync/zeuecs/internal/core/ecs"
	"github.com/zeusync/zeuecs/internal/core/observability/log"
	"github.com/zeusync/zeuecs/internal/core/types"
)

// RuntimeSet builds a manager from a config path, a registry and the dense
// provider factories.
var RuntimeSet = wire.NewSet(
	config.LoadFile,
	ProvideRuntimeLogger,
	ProvideManager,
)

func ProvideRuntimeLogger(cfg config.Config) (*log.Logger, error) {
	return log.NewFromConfig(cfg.LoggerConfig())
}

func ProvideManager(cfg config.Config, logger *log.Logger, reg *types.Registry, factories []ecs.ProviderFactory) (*ecs.Manager, error) {
	return ecs.NewManager(reg,
		ecs.WithConfig(cfg),
		ecs.WithLogger(logger),
		ecs.WithProviders(factories...),
	)
}
