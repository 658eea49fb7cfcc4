package injector

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/zeuecs/internal/config"
	"github.com/zeusync/zeuecs/internal/core/ecs"
	"github.com/zeusync/zeuecs/internal/core/types"
)

type sample struct{ V int }

func TestProvidersBuildManager(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runtime.yaml")
	doc := "worlds: 2\nfast_entity_capacity: 16\nlog:\n  level: warn\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	logger, err := ProvideRuntimeLogger(cfg)
	require.NoError(t, err)

	reg := types.NewRegistry()
	types.Register[sample](reg)
	m, err := ProvideManager(cfg, logger, reg, []ecs.ProviderFactory{ecs.Dense[sample]()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Dispose() })

	assert.Equal(t, 2, m.WorldCount())
	assert.Equal(t, 16, m.Default().FastCapacity())
	_, ok := ecs.ProviderOf[sample](m.Default())
	assert.True(t, ok)
}
