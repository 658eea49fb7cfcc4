package ecs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/zeuecs/internal/config"
	"github.com/zeusync/zeuecs/internal/core/types"
)

type position struct {
	BaseComponent
	X, Y float64
}

type velocity struct {
	BaseComponent
	DX, DY float64
}

type health struct {
	BaseComponent
	HP int

	inits      int
	afterInits int
	disposed   bool
	disposeErr error
}

func (h *health) Init()            { h.inits++ }
func (h *health) AfterEntityInit() { h.afterInits++ }

func (h *health) Dispose() error {
	h.disposed = true
	return h.disposeErr
}

// faulty panics while being disposed.
type faulty struct {
	BaseComponent
}

func (*faulty) Dispose() error { panic("faulty dispose") }

type tag struct {
	BaseComponent
}

// Dense values for the fast entity path.
type pos2 struct{ X, Y float32 }
type vel2 struct{ X, Y float32 }
type heat struct{ T float32 }

type pauseSystem struct {
	BaseSystem
	paused, resumed int
}

func (*pauseSystem) Capabilities() Capability { return CapPause }
func (s *pauseSystem) Pause()                 { s.paused++ }
func (s *pauseSystem) UnPause()               { s.resumed++ }

type exitSystem struct {
	BaseSystem
	exits int
}

func (*exitSystem) Capabilities() Capability { return CapExit }
func (s *exitSystem) OnApplicationExit()     { s.exits++ }

type listenerSystem struct {
	BaseSystem
	events   []string
	commands []string
}

func (*listenerSystem) Capabilities() Capability { return CapListener }

type lifecycleSystem struct {
	BaseSystem
	inits    int
	disposed bool
}

func (*lifecycleSystem) Capabilities() Capability { return CapInit | CapDispose }
func (s *lifecycleSystem) Init()                  { s.inits++ }

func (s *lifecycleSystem) Dispose() error {
	s.disposed = true
	return errors.New("lifecycle system released")
}

// liarSystem declares a capability it does not implement.
type liarSystem struct {
	BaseSystem
}

func (*liarSystem) Capabilities() Capability { return CapPause }

type plainSystem struct {
	BaseSystem
}

// newTestRegistry registers the fixture types. pos2 lands on index 3.
func newTestRegistry() *types.Registry {
	reg := types.NewRegistry()
	types.Register[*position](reg)
	types.Register[*velocity](reg)
	types.Register[*health](reg)
	types.Register[pos2](reg)
	types.Register[vel2](reg)
	types.Register[*tag](reg)
	types.Register[*faulty](reg)
	types.Register[heat](reg)
	return reg
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.FastEntityCapacity = 4
	return cfg
}

func newTestManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	base := []Option{
		WithConfig(testConfig()),
		WithProviders(Dense[pos2](), Dense[vel2]()),
	}
	m, err := NewManager(newTestRegistry(), append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Dispose() })
	return m
}

func newTestWorld(t *testing.T) *World {
	t.Helper()
	return newTestManager(t).Default()
}

func maskOf[T any](w *World) types.Mask {
	return types.MaskFor[T](w.reg)
}
