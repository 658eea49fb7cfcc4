package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/zeuecs/internal/core/observability/log"
)

func TestLoadOverridesDefaults(t *testing.T) {
	doc := `
worlds: 3
parallel_drain: true
log:
  level: debug
  encoding: console
`
	cfg, err := Load(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Worlds)
	assert.True(t, cfg.ParallelDrain)
	assert.Equal(t, DefaultFastEntityCapacity, cfg.FastEntityCapacity)
	assert.Equal(t, log.LevelDebug, cfg.LoggerConfig().Level)
	assert.Equal(t, "console", cfg.LoggerConfig().Encoding)
}

func TestLoadEmptyDocumentYieldsDefaults(t *testing.T) {
	cfg, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load(strings.NewReader("worldz: 2\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.FastEntityCapacity = 1
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = Default()
	cfg.Worlds = -1
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = Default()
	cfg.Log.Level = "chatty"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = Default()
	cfg.Log.Encoding = "xml"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runtime.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fast_entity_capacity: 64\n"), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.FastEntityCapacity)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
