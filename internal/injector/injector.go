//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/zeuecs/internal/core/ecs"
	"github.com/zeusync/zeuecs/internal/core/observability/log"
	"github.com/zeusync/zeuecs/internal/core/types"
)

func ProvideLogger() *log.Logger {
	wire.Build(log.Provide)
	return log.New(log.LevelDebug)
}

// InitializeManager builds a manager from a config file and a registry
// whose component types are already registered.
func InitializeManager(path string, reg *types.Registry, factories []ecs.ProviderFactory) (*ecs.Manager, error) {
	wire.Build(RuntimeSet)
	return nil, nil
}
