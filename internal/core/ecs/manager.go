package ecs

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/zeusync/zeuecs/internal/config"
	"github.com/zeusync/zeuecs/internal/core/events/bus"
	"github.com/zeusync/zeuecs/internal/core/observability/log"
	"github.com/zeusync/zeuecs/internal/core/types"
	"github.com/zeusync/zeuecs/pkg/concurrent"
	"github.com/zeusync/zeuecs/pkg/sequence"
)

// AllWorlds selects every world in the cross-world variants of Manager.
const AllWorlds = -1

// Lifecycle event types published on the manager bus.
const (
	EventWorldAdded      = "world.added"
	EventWorldRemoved    = "world.removed"
	EventManagerExit     = "manager.exit"
	EventManagerDisposed = "manager.disposed"
)

const eventSource = "ecs.manager"

var current atomic.Pointer[Manager]

// Current returns the process-wide manager: the first one created that has
// not been disposed yet.
func Current() (*Manager, bool) {
	m := current.Load()
	return m, m != nil
}

// Manager owns every World of the process. The world list is the only
// structure shared between goroutines; adding and removing worlds takes the
// exclusive lock, including the re-indexing of the worlds that follow.
type Manager struct {
	mu     sync.RWMutex
	worlds []*World

	reg       *types.Registry
	cfg       config.Config
	log       log.Log
	bus       bus.EventBus
	ownsBus   bool
	factories []ProviderFactory

	exited   atomic.Bool
	disposed atomic.Bool
}

type Option func(*Manager)

func WithConfig(cfg config.Config) Option {
	return func(m *Manager) { m.cfg = cfg }
}

func WithLogger(l log.Log) Option {
	return func(m *Manager) { m.log = l }
}

// WithProviders installs dense providers into every world the manager creates.
func WithProviders(factories ...ProviderFactory) Option {
	return func(m *Manager) { m.factories = append(m.factories, factories...) }
}

// WithEventBus publishes lifecycle events on b instead of a private bus.
// The manager does not close a bus it was given.
func WithEventBus(b bus.EventBus) Option {
	return func(m *Manager) { m.bus = b }
}

// NewManager seals reg and creates the configured number of worlds.
func NewManager(reg *types.Registry, opts ...Option) (*Manager, error) {
	m := &Manager{
		reg: reg,
		cfg: config.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := m.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new entity manager: %w", err)
	}
	if m.log == nil {
		m.log = log.Nop()
	}
	m.log = m.log.Named("ecs")
	if m.bus == nil {
		m.bus = bus.New()
		m.ownsBus = true
	}

	reg.Seal()
	for i := 0; i < m.cfg.Worlds; i++ {
		m.worlds = append(m.worlds, newWorld(m, i, m.cfg.FastEntityCapacity))
	}
	current.CompareAndSwap(nil, m)

	m.log.Info("entity manager created",
		log.Int("worlds", m.cfg.Worlds),
		log.Int("component_types", reg.Size()),
		log.Bool("parallel_drain", m.cfg.ParallelDrain),
	)
	return m, nil
}

func (m *Manager) Registry() *types.Registry { return m.reg }
func (m *Manager) Config() config.Config     { return m.cfg }
func (m *Manager) Bus() bus.EventBus         { return m.bus }
func (m *Manager) IsDisposed() bool          { return m.disposed.Load() }

// AddWorld appends a new world and returns it.
func (m *Manager) AddWorld() (*World, error) {
	if m.disposed.Load() {
		return nil, ErrManagerDisposed
	}
	m.mu.Lock()
	w := newWorld(m, len(m.worlds), m.cfg.FastEntityCapacity)
	m.worlds = append(m.worlds, w)
	m.mu.Unlock()

	m.log.Debug("world added", log.Int("world", w.Index()))
	m.publish(EventWorldAdded, w.Index())
	return w, nil
}

// RemoveWorld drops the world at index and re-indexes the worlds after it.
// With dispose set the removed world is torn down as well.
func (m *Manager) RemoveWorld(index int, dispose bool) error {
	m.mu.Lock()
	if index < 0 || index >= len(m.worlds) {
		m.mu.Unlock()
		return fmt.Errorf("remove world %d: %w", index, ErrWorldNotFound)
	}
	w := m.worlds[index]
	m.worlds = slices.Delete(m.worlds, index, index+1)
	m.reindexLocked(index)
	m.mu.Unlock()

	return m.afterRemove(w, index, dispose)
}

// RemoveWorldRef is RemoveWorld for a world value.
func (m *Manager) RemoveWorldRef(w *World, dispose bool) error {
	m.mu.Lock()
	index := slices.Index(m.worlds, w)
	if index < 0 {
		m.mu.Unlock()
		return fmt.Errorf("remove world: %w", ErrWorldNotFound)
	}
	m.worlds = slices.Delete(m.worlds, index, index+1)
	m.reindexLocked(index)
	m.mu.Unlock()

	return m.afterRemove(w, index, dispose)
}

func (m *Manager) reindexLocked(from int) {
	for i := from; i < len(m.worlds); i++ {
		m.worlds[i].index.Store(int32(i))
	}
}

func (m *Manager) afterRemove(w *World, index int, dispose bool) error {
	w.index.Store(-1)
	m.log.Debug("world removed", log.Int("world", index), log.Bool("dispose", dispose))
	m.publish(EventWorldRemoved, index)
	if !dispose {
		return nil
	}
	if err := w.Dispose(); err != nil {
		m.log.Warn("world teardown failed", log.Int("world", index), log.Error(err))
		return err
	}
	return nil
}

// World returns the world at index.
func (m *Manager) World(index int) (*World, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if index < 0 || index >= len(m.worlds) {
		return nil, false
	}
	return m.worlds[index], true
}

// Default is world 0, nil when the manager has no world.
func (m *Manager) Default() *World {
	w, _ := m.World(0)
	return w
}

// Worlds is a snapshot of the world list.
func (m *Manager) Worlds() []*World {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.worlds)
}

func (m *Manager) WorldCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.worlds)
}

// selectWorlds resolves a world index that may be AllWorlds.
func (m *Manager) selectWorlds(index int) ([]*World, error) {
	if m.disposed.Load() {
		return nil, ErrManagerDisposed
	}
	if index == AllWorlds {
		return m.Worlds(), nil
	}
	w, ok := m.World(index)
	if !ok {
		return nil, fmt.Errorf("world %d: %w", index, ErrWorldNotFound)
	}
	return []*World{w}, nil
}

// CommandGlobal sends cmd to the world listeners of one world, or of every
// world when worldIndex is AllWorlds.
func CommandGlobal[T any](m *Manager, cmd T, worldIndex int) error {
	worlds, err := m.selectWorlds(worldIndex)
	if err != nil {
		return err
	}
	for _, w := range worlds {
		CommandWorld(w, cmd)
	}
	return nil
}

// CommandGlobalWhen is CommandWorldWhen across one or every world.
func CommandGlobalWhen[T any](m *Manager, cmd T, wait types.Mask, worldIndex int) error {
	worlds, err := m.selectWorlds(worldIndex)
	if err != nil {
		return err
	}
	for _, w := range worlds {
		CommandWorldWhen(w, cmd, wait)
	}
	return nil
}

// TryGetEntityByComponents finds the first entity carrying mask, in one
// world or, with AllWorlds, across worlds in index order.
func (m *Manager) TryGetEntityByComponents(mask types.Mask, worldIndex int) (*Entity, bool) {
	worlds, err := m.selectWorlds(worldIndex)
	if err != nil {
		return nil, false
	}
	for _, w := range worlds {
		if e, ok := w.TryGetEntityByComponents(mask); ok {
			return e, true
		}
	}
	return nil, false
}

// TryGetEntityByID looks the GUID up in every world.
func (m *Manager) TryGetEntityByID(guid uuid.UUID) (*Entity, bool) {
	for _, w := range m.Worlds() {
		if e, ok := w.TryGetEntityByID(guid); ok {
			return e, true
		}
	}
	return nil, false
}

// Filter returns the filter of one world. AllWorlds is rejected; use Filters.
func (m *Manager) Filter(worldIndex int, include types.Mask, exclude ...types.Mask) (*Filter, error) {
	if worldIndex == AllWorlds {
		return nil, fmt.Errorf("filter: %w: a single world index is required", ErrWorldNotFound)
	}
	worlds, err := m.selectWorlds(worldIndex)
	if err != nil {
		return nil, err
	}
	return worlds[0].Filter(include, exclude...), nil
}

// Filters returns one filter per world, in world index order.
func (m *Manager) Filters(include types.Mask, exclude ...types.Mask) []*Filter {
	worlds := m.Worlds()
	out := make([]*Filter, 0, len(worlds))
	for _, w := range worlds {
		out = append(out, w.Filter(include, exclude...))
	}
	return out
}

// GetSingleComponentIn is GetSingleComponent over one world or AllWorlds.
func GetSingleComponentIn[T Component](m *Manager, worldIndex int) (T, bool) {
	var zero T
	worlds, err := m.selectWorlds(worldIndex)
	if err != nil {
		return zero, false
	}
	for _, w := range worlds {
		if c, ok := GetSingleComponent[T](w); ok {
			return c, true
		}
	}
	return zero, false
}

// GetSingleSystemIn is GetSingleSystem over one world or AllWorlds.
func GetSingleSystemIn[T System](m *Manager, worldIndex int) (T, bool) {
	var zero T
	worlds, err := m.selectWorlds(worldIndex)
	if err != nil {
		return zero, false
	}
	for _, w := range worlds {
		if s, ok := GetSingleSystem[T](w); ok {
			return s, true
		}
	}
	return zero, false
}

// Tick ends the current frame of every world by draining its update queue
// into its filters. Worlds are independent, so with ParallelDrain they are
// drained concurrently. The world list stays read-locked for the whole
// drain: a world cannot be removed or disposed while it is being drained.
func (m *Manager) Tick(ctx context.Context) error {
	if m.disposed.Load() {
		return ErrManagerDisposed
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	worlds := m.worlds
	if !m.cfg.ParallelDrain || len(worlds) < 2 {
		for _, w := range worlds {
			if err := ctx.Err(); err != nil {
				return err
			}
			w.FinishTick()
		}
		return nil
	}
	return concurrent.Concurrent(ctx, sequence.From(worlds), func(_ context.Context, w *World) error {
		w.FinishTick()
		return nil
	})
}

// ApplicationExit tells every CapExit system of every world that the
// application is shutting down. Only the first call has an effect.
func (m *Manager) ApplicationExit() {
	if !m.exited.CompareAndSwap(false, true) {
		return
	}
	for _, w := range m.Worlds() {
		for _, e := range w.Entities() {
			e.applicationExit()
		}
	}
	m.log.Info("application exit broadcast")
	m.publish(EventManagerExit, nil)
}

// Dispose removes and tears down every world. Later calls return nil.
func (m *Manager) Dispose() error {
	if !m.disposed.CompareAndSwap(false, true) {
		return nil
	}
	m.mu.Lock()
	worlds := m.worlds
	m.worlds = nil
	m.mu.Unlock()

	var errs []error
	for _, w := range worlds {
		if err := w.Dispose(); err != nil {
			m.log.Warn("world teardown failed", log.Int("world", w.Index()), log.Error(err))
			errs = append(errs, err)
		}
	}

	m.publish(EventManagerDisposed, len(worlds))
	if m.ownsBus {
		m.bus.Close()
	}
	current.CompareAndSwap(m, nil)
	m.log.Info("entity manager disposed", log.Int("worlds", len(worlds)))

	return errors.Join(errs...)
}

func (m *Manager) publish(eventType string, data any) {
	if err := m.bus.Publish(bus.NewEvent(eventType, eventSource, data)); err != nil {
		m.log.Warn("lifecycle event handler failed", log.String("event", eventType), log.Error(err))
	}
}
