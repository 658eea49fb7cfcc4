package ecs

import (
	"encoding/binary"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/zeuecs/internal/core/types"
)

// Filter is the live set of entities of one world whose components satisfy
// an include mask and avoid an exclude mask. It covers general and fast
// entities alike.
//
// Membership is refreshed when the world drains its update queue at the
// end of a tick; changes made earlier in the same tick are not visible yet.
type Filter struct {
	world   *World
	key     uint64
	include types.Mask
	exclude types.Mask

	entities []*Entity
	entityAt map[*Entity]int
	slots    []uint32
	slotAt   map[uint32]int

	refs   int
	dirty  bool
	closed bool
}

func newFilter(w *World, include, exclude types.Mask, key uint64) *Filter {
	f := &Filter{
		world:    w,
		key:      key,
		include:  include,
		exclude:  exclude,
		entityAt: make(map[*Entity]int),
		slotAt:   make(map[uint32]int),
		refs:     1,
	}
	f.rebuild()
	return f
}

func filterKey(include, exclude types.Mask) uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], include.Hash())
	binary.LittleEndian.PutUint64(buf[8:], exclude.Hash())
	return xxhash.Sum64(buf[:])
}

func (f *Filter) World() *World           { return f.world }
func (f *Filter) Include() types.Mask     { return f.include.Clone() }
func (f *Filter) Exclude() types.Mask     { return f.exclude.Clone() }
func (f *Filter) IsClosed() bool          { return f.closed }
func (f *Filter) Len() int                { return len(f.entities) + len(f.slots) }
func (f *Filter) Contains(e *Entity) bool { _, ok := f.entityAt[e]; return ok }

// Matches reports whether a component set m passes the filter.
func (f *Filter) Matches(m types.Mask) bool {
	if !m.ContainsAll(f.include) {
		return false
	}
	return f.exclude.IsEmpty() || !m.ContainsAny(f.exclude)
}

// ContainsFast reports whether h is live and in the filter.
func (f *Filter) ContainsFast(h FastHandle) bool {
	if !f.world.IsValid(h) {
		return false
	}
	_, ok := f.slotAt[h.Index]
	return ok
}

// Entities is a copy of the matching general entities.
func (f *Filter) Entities() []*Entity { return slices.Clone(f.entities) }

// FastEntities returns the handles of the matching fast entities.
func (f *Filter) FastEntities() []FastHandle {
	out := make([]FastHandle, 0, len(f.slots))
	for _, slot := range f.slots {
		out = append(out, f.world.fast[slot].Handle())
	}
	return out
}

// Each calls fn for every matching general entity. fn may change the world;
// the changes show up after the next drain.
func (f *Filter) Each(fn func(*Entity)) {
	for _, e := range f.Entities() {
		fn(e)
	}
}

func (f *Filter) EachFast(fn func(FastHandle)) {
	for _, h := range f.FastEntities() {
		fn(h)
	}
}

// Invalidate schedules a full rescan of the world on the next drain.
func (f *Filter) Invalidate() { f.dirty = true }

// Close releases one reference to the filter. World.Filter hands the same
// value to every caller asking for the same masks, so the filter stays live
// until each of them has closed it. Once the last reference is gone it is
// unregistered, emptied and no longer refreshed.
func (f *Filter) Close() {
	if f.closed {
		return
	}
	f.refs--
	if f.refs > 0 {
		return
	}
	f.shutdown()
}

func (f *Filter) shutdown() {
	if f.closed {
		return
	}
	f.closed = true
	f.refs = 0
	f.world.dropFilter(f)
	f.reset()
}

func (f *Filter) reset() {
	f.entities = f.entities[:0]
	f.slots = f.slots[:0]
	clear(f.entityAt)
	clear(f.slotAt)
}

func (f *Filter) rebuild() {
	f.dirty = false
	f.reset()
	for _, e := range f.world.entities {
		f.refreshEntity(e)
	}
	for slot := 1; slot < len(f.world.fast); slot++ {
		if f.world.fast[slot].ready {
			f.refreshSlot(uint32(slot))
		}
	}
}

func (f *Filter) refreshEntity(e *Entity) {
	match := e.alive && e.world == f.world && f.Matches(e.mask)
	pos, in := f.entityAt[e]
	switch {
	case match && !in:
		f.entityAt[e] = len(f.entities)
		f.entities = append(f.entities, e)
	case !match && in:
		last := len(f.entities) - 1
		moved := f.entities[last]
		f.entities[pos] = moved
		f.entityAt[moved] = pos
		f.entities[last] = nil
		f.entities = f.entities[:last]
		delete(f.entityAt, e)
	}
}

func (f *Filter) refreshSlot(slot uint32) {
	fe := &f.world.fast[slot]
	match := fe.ready && f.Matches(fe.mask)
	pos, in := f.slotAt[slot]
	switch {
	case match && !in:
		f.slotAt[slot] = len(f.slots)
		f.slots = append(f.slots, slot)
	case !match && in:
		last := len(f.slots) - 1
		moved := f.slots[last]
		f.slots[pos] = moved
		f.slotAt[moved] = pos
		f.slots = f.slots[:last]
		delete(f.slotAt, slot)
	}
}
