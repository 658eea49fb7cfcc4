package ecs

import (
	"errors"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/zeusync/zeuecs/internal/core/observability/log"
	"github.com/zeusync/zeuecs/internal/core/types"
	"github.com/zeusync/zeuecs/pkg/sequence"
)

// World is one isolated simulation context: its registered entities, the
// dense fast entity array with its providers, its filters and its
// world-scoped listeners.
//
// A world is driven by a single tick goroutine. Only the index is safe to
// read from other goroutines.
type World struct {
	index   atomic.Int32
	manager *Manager
	reg     *types.Registry
	log     log.Log

	entities []*Entity
	byGUID   map[uuid.UUID]*Entity
	dirty    []*Entity

	providers []ComponentProvider
	fast      []FastEntity
	free      *sequence.Queue[uint32]
	fastDirty []uint32
	fastLive  int

	filters     []*Filter
	filterCache map[uint64][]*Filter

	commands   commandService
	components componentListeners
	pending    []pendingCommand
	flushing   bool

	disposed bool
}

func newWorld(m *Manager, index, fastCapacity int) *World {
	w := &World{
		manager:     m,
		reg:         m.reg,
		log:         m.log.With(log.Int("world", index)),
		byGUID:      make(map[uuid.UUID]*Entity),
		providers:   make([]ComponentProvider, m.reg.Size()),
		free:        sequence.NewQueue[uint32](fastCapacity),
		filterCache: make(map[uint64][]*Filter),
	}
	w.index.Store(int32(index))
	w.resizeFast(fastCapacity)
	for _, factory := range m.factories {
		factory(w)
	}
	return w
}

// Index is the position of the world in its manager's list.
func (w *World) Index() int { return int(w.index.Load()) }

func (w *World) Manager() *Manager         { return w.manager }
func (w *World) Registry() *types.Registry { return w.reg }
func (w *World) IsDisposed() bool          { return w.disposed }

// NewEntity creates an entity bound to w. It joins the world when its Init
// is called.
func (w *World) NewEntity(id string) *Entity {
	if w.disposed {
		panic(fmt.Sprintf("ecs: world %d is disposed", w.Index()))
	}
	return newEntity(w, id)
}

// Spawn moves the components of model into a new entity and initialises it.
// The model is left empty.
func (w *World) Spawn(model *EntityModel) (*Entity, error) {
	if w.disposed {
		return nil, ErrWorldDisposed
	}
	e := w.NewEntity(model.ID())
	var errs []error
	for _, c := range model.detach() {
		errs = append(errs, e.AddComponent(c, false))
	}
	e.Init()
	return e, errors.Join(errs...)
}

// RegisterEntity adds e to (add == true) or removes it from the entities
// tracked by w. Entity.Init and Entity.Dispose call it.
func (w *World) RegisterEntity(e *Entity, add bool) {
	if e.world != w {
		panic(fmt.Sprintf("ecs: entity %s belongs to another world", e))
	}
	if add {
		w.addEntity(e)
		return
	}
	w.removeEntity(e)
}

func (w *World) addEntity(e *Entity) {
	if w.disposed || e.alive || e.disposed {
		return
	}
	w.entities = append(w.entities, e)
	w.byGUID[e.guid] = e
	e.alive = true
	w.markUpdated(e)
	for _, c := range e.present() {
		w.components.notify(c.base().index, c, true)
	}
	w.flushPending()
}

func (w *World) removeEntity(e *Entity) {
	if !e.alive {
		return
	}
	for _, c := range e.present() {
		w.components.notify(c.base().index, c, false)
	}
	e.alive = false
	w.entities = slices.DeleteFunc(w.entities, func(cur *Entity) bool { return cur == e })
	if w.byGUID[e.guid] == e {
		delete(w.byGUID, e.guid)
	}
	w.markUpdated(e)
}

func (w *World) rekey(e *Entity, guid uuid.UUID) {
	if w.byGUID[e.guid] == e {
		delete(w.byGUID, e.guid)
	}
	w.byGUID[guid] = e
}

func (w *World) markUpdated(e *Entity) {
	if e.updated {
		return
	}
	e.updated = true
	w.dirty = append(w.dirty, e)
}

// Entities is a copy of the registered entities in registration order.
func (w *World) Entities() []*Entity { return slices.Clone(w.entities) }

func (w *World) EntityCount() int { return len(w.entities) }

func (w *World) TryGetEntityByID(guid uuid.UUID) (*Entity, bool) {
	e, ok := w.byGUID[guid]
	return e, ok
}

// TryGetEntityByComponents returns the first registered entity carrying
// every component in m.
func (w *World) TryGetEntityByComponents(m types.Mask) (*Entity, bool) {
	return sequence.From(w.entities).Find(func(e *Entity) bool {
		return e.ContainsMask(m)
	})
}

// Provider returns the dense provider registered for index i, or nil.
func (w *World) Provider(i types.Index) ComponentProvider {
	if int(i) >= len(w.providers) {
		return nil
	}
	return w.providers[i]
}

func (w *World) setProvider(i types.Index, p ComponentProvider) {
	if int(i) >= len(w.providers) {
		grown := make([]ComponentProvider, w.reg.Size())
		copy(grown, w.providers)
		w.providers = grown
	}
	p.Resize(len(w.fast))
	w.providers[i] = p
}

// Filter returns the live filter for include minus the union of exclude.
// Filters are cached: asking twice for the same masks yields the same value,
// and every call takes a reference that Filter.Close gives back.
func (w *World) Filter(include types.Mask, exclude ...types.Mask) *Filter {
	var ex types.Mask
	for _, m := range exclude {
		ex = ex.Union(m)
	}
	key := filterKey(include, ex)
	for _, f := range w.filterCache[key] {
		if f.include.Equal(include) && f.exclude.Equal(ex) {
			f.refs++
			return f
		}
	}
	f := newFilter(w, include.Clone(), ex.Clone(), key)
	w.filters = append(w.filters, f)
	w.filterCache[key] = append(w.filterCache[key], f)
	return f
}

// FilterCount is the number of open filters.
func (w *World) FilterCount() int { return len(w.filters) }

func (w *World) dropFilter(f *Filter) {
	match := func(cur *Filter) bool { return cur == f }
	w.filters = slices.DeleteFunc(w.filters, match)
	bucket := slices.DeleteFunc(w.filterCache[f.key], match)
	if len(bucket) == 0 {
		delete(w.filterCache, f.key)
		return
	}
	w.filterCache[f.key] = bucket
}

// PendingCommands is the number of gated commands still waiting.
func (w *World) PendingCommands() int { return len(w.pending) }

// flushPending delivers, oldest first, every gated command whose wait mask
// is now satisfied.
func (w *World) flushPending() {
	if len(w.pending) == 0 || w.flushing {
		return
	}
	w.flushing = true
	defer func() { w.flushing = false }()

	for {
		ready := slices.IndexFunc(w.pending, func(p pendingCommand) bool {
			_, ok := w.TryGetEntityByComponents(p.wait)
			return ok
		})
		if ready < 0 {
			return
		}
		p := w.pending[ready]
		w.pending = slices.Delete(w.pending, ready, ready+1)
		p.deliver()
	}
}

// FinishTick drains the update queue into every filter and clears the
// updated flags. It is the frame boundary of the world.
func (w *World) FinishTick() {
	for _, f := range slices.Clone(w.filters) {
		if f.dirty {
			f.rebuild()
			continue
		}
		for _, e := range w.dirty {
			f.refreshEntity(e)
		}
		for _, slot := range w.fastDirty {
			f.refreshSlot(slot)
		}
	}

	for _, e := range w.dirty {
		e.updated = false
	}
	for _, slot := range w.fastDirty {
		w.fast[slot].updated = false
	}
	clear(w.dirty)
	w.dirty = w.dirty[:0]
	w.fastDirty = w.fastDirty[:0]
}

// Dispose tears down every entity, filter and provider of w. Entities keep
// being disposed when one of them fails; failures are joined.
func (w *World) Dispose() error {
	if w.disposed {
		return nil
	}
	w.disposed = true

	var errs []error
	for _, e := range slices.Clone(w.entities) {
		errs = append(errs, e.Dispose())
	}
	for _, f := range slices.Clone(w.filters) {
		f.shutdown()
	}

	w.pending = nil
	w.commands.clear()
	w.components.clear()
	clear(w.byGUID)
	w.entities, w.dirty = nil, nil
	w.providers, w.fast, w.fastDirty = nil, nil, nil
	w.fastLive = 0
	w.free.Reset()

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("dispose world %d: %w", w.Index(), err)
	}
	return nil
}
