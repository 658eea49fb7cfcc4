package ecs

import (
	"fmt"
	"reflect"

	"github.com/zeusync/zeuecs/internal/core/observability/log"
	"github.com/zeusync/zeuecs/internal/core/types"
)

// FastHandle identifies a fast entity. The slot index alone is reused after
// destruction; the generation tells a live entity from a stale reference.
// The zero handle is never valid.
type FastHandle struct {
	Index      uint32
	Generation uint32
}

func (h FastHandle) IsZero() bool { return h == FastHandle{} }

func (h FastHandle) String() string {
	return fmt.Sprintf("fast(%d#%d)", h.Index, h.Generation)
}

// FastEntity is the per-slot metadata of the dense entity array.
type FastEntity struct {
	index      uint32
	generation uint32
	mask       types.Mask
	ready      bool
	updated    bool
}

func (f FastEntity) Index() uint32      { return f.index }
func (f FastEntity) Generation() uint32 { return f.generation }
func (f FastEntity) Mask() types.Mask   { return f.mask.Clone() }
func (f FastEntity) IsReady() bool      { return f.ready }
func (f FastEntity) Handle() FastHandle { return FastHandle{Index: f.index, Generation: f.generation} }

// NewFastEntity takes the oldest free slot, growing the dense array when
// none is left, and queues the new entity for the next drain.
func (w *World) NewFastEntity() FastHandle {
	if w.disposed {
		panic(fmt.Sprintf("ecs: world %d is disposed", w.Index()))
	}
	slot, ok := w.free.Dequeue()
	if !ok {
		w.resizeFast(len(w.fast) * 2)
		slot, _ = w.free.Dequeue()
	}
	fe := &w.fast[slot]
	fe.ready = true
	w.fastLive++
	w.markFastUpdated(slot)
	return fe.Handle()
}

// DestroyFastEntity clears the components of h, bumps the slot generation
// and returns the slot to the free list.
func (w *World) DestroyFastEntity(h FastHandle) error {
	fe, err := w.lookupFast(h)
	if err != nil {
		return fmt.Errorf("destroy %s: %w", h, err)
	}
	fe.ready = false
	fe.mask.ForEach(func(i types.Index) {
		if p := w.Provider(i); p != nil {
			p.Clear(h.Index)
		}
	})
	fe.generation++
	fe.mask.Reset()
	w.fastLive--
	w.markFastUpdated(h.Index)
	w.free.Enqueue(h.Index)
	return nil
}

// IsValid reports whether h still refers to a live fast entity.
func (w *World) IsValid(h FastHandle) bool {
	_, err := w.lookupFast(h)
	return err == nil
}

// FastEntity returns a snapshot of the metadata behind h.
func (w *World) FastEntity(h FastHandle) (FastEntity, bool) {
	fe, err := w.lookupFast(h)
	if err != nil {
		return FastEntity{}, false
	}
	snapshot := *fe
	snapshot.mask = fe.mask.Clone()
	return snapshot, true
}

// FastCapacity is the current length of the dense array, slot 0 included.
func (w *World) FastCapacity() int { return len(w.fast) }

// FastCount is the number of live fast entities.
func (w *World) FastCount() int { return w.fastLive }

func (w *World) lookupFast(h FastHandle) (*FastEntity, error) {
	if h.Index == 0 || int(h.Index) >= len(w.fast) {
		return nil, ErrStaleHandle
	}
	fe := &w.fast[h.Index]
	if !fe.ready || fe.generation != h.Generation {
		return nil, ErrStaleHandle
	}
	return fe, nil
}

func (w *World) markFastUpdated(slot uint32) {
	fe := &w.fast[slot]
	if fe.updated {
		return
	}
	fe.updated = true
	w.fastDirty = append(w.fastDirty, slot)
}

// resizeFast grows the dense array to n slots. Existing slots keep their
// index, generation and components; every provider grows in the same step.
func (w *World) resizeFast(n int) {
	old := len(w.fast)
	if n < 2 {
		n = 2
	}
	if n <= old {
		return
	}
	grown := make([]FastEntity, n)
	copy(grown, w.fast)
	for i := old; i < n; i++ {
		grown[i].index = uint32(i)
		if i > 0 {
			w.free.Enqueue(uint32(i))
		}
	}
	w.fast = grown
	for _, p := range w.providers {
		if p != nil {
			p.Resize(n)
		}
	}
	if old > 0 {
		w.log.Debug("fast entity array grown",
			log.Int("world", w.Index()),
			log.Int("from", old),
			log.Int("to", n),
		)
	}
}

// AddFast stores v as the T component of h.
func AddFast[T any](w *World, h FastHandle, v T) error {
	fe, err := w.lookupFast(h)
	if err != nil {
		return fmt.Errorf("add %s to %s: %w", reflect.TypeFor[T](), h, err)
	}
	p, ok := ProviderOf[T](w)
	if !ok {
		return fmt.Errorf("add %s to %s: %w", reflect.TypeFor[T](), h, ErrProviderMissing)
	}
	if fe.mask.Has(p.index) {
		return fmt.Errorf("add %s to %s: %w", reflect.TypeFor[T](), h, ErrComponentExists)
	}
	p.Set(h.Index, v)
	fe.mask.Add(p.index)
	w.markFastUpdated(h.Index)
	return nil
}

// GetFast returns a pointer to the T component of h.
func GetFast[T any](w *World, h FastHandle) (*T, bool) {
	fe, err := w.lookupFast(h)
	if err != nil {
		return nil, false
	}
	p, ok := ProviderOf[T](w)
	if !ok || !fe.mask.Has(p.index) {
		return nil, false
	}
	return p.Get(h.Index), true
}

// HasFast reports whether h is live and carries a T component.
func HasFast[T any](w *World, h FastHandle) bool {
	_, ok := GetFast[T](w, h)
	return ok
}

// RemoveFast drops the T component of h. Removing an absent component is a no-op.
func RemoveFast[T any](w *World, h FastHandle) error {
	fe, err := w.lookupFast(h)
	if err != nil {
		return fmt.Errorf("remove %s from %s: %w", reflect.TypeFor[T](), h, err)
	}
	p, ok := ProviderOf[T](w)
	if !ok || !fe.mask.Has(p.index) {
		return nil
	}
	p.Clear(h.Index)
	fe.mask.Remove(p.index)
	w.markFastUpdated(h.Index)
	return nil
}
