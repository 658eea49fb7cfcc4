package ecs

import (
	"fmt"
	"reflect"

	"github.com/zeusync/zeuecs/internal/core/types"
)

// Holder is anything that stores components in per-type slots.
type Holder interface {
	Component(i types.Index) Component
	Registry() *types.Registry
}

// store is the sparse slot array of a general entity. mask.Has(i) and
// slots[i] != nil always change together.
type store struct {
	reg   *types.Registry
	slots []Component
	mask  types.Mask
}

func newStore(reg *types.Registry) store {
	return store{
		reg:   reg,
		slots: make([]Component, reg.Size()),
	}
}

// indexOf resolves the slot of c. A nil or unregistered component is a
// configuration defect and panics.
func (s *store) indexOf(c Component) types.Index {
	if c == nil {
		panic("ecs: cannot attach a nil component")
	}
	if v := reflect.ValueOf(c); v.Kind() == reflect.Pointer && v.IsNil() {
		panic("ecs: cannot attach a nil component")
	}
	t := reflect.TypeOf(c)
	idx, ok := s.reg.IndexOfType(t)
	if !ok {
		panic(fmt.Sprintf("ecs: component type %s is not registered", t))
	}
	return idx
}

func (s *store) at(i types.Index) Component {
	if int(i) >= len(s.slots) {
		return nil
	}
	return s.slots[i]
}

func (s *store) put(i types.Index, c Component) {
	if int(i) >= len(s.slots) {
		grown := make([]Component, s.reg.Size())
		copy(grown, s.slots)
		s.slots = grown
	}
	s.slots[i] = c
	s.mask.Add(i)
}

func (s *store) take(i types.Index) Component {
	c := s.at(i)
	if c == nil {
		return nil
	}
	s.slots[i] = nil
	s.mask.Remove(i)
	return c
}

// present lists the occupied slots in index order.
func (s *store) present() []Component {
	out := make([]Component, 0, s.mask.Len())
	s.mask.ForEach(func(i types.Index) {
		out = append(out, s.slots[i])
	})
	return out
}

// TryGetComponent returns the component of type T held by h.
func TryGetComponent[T Component](h Holder) (T, bool) {
	var zero T
	idx, ok := types.TryIndexOf[T](h.Registry())
	if !ok {
		return zero, false
	}
	c := h.Component(idx)
	if c == nil {
		return zero, false
	}
	typed, ok := c.(T)
	return typed, ok
}

// HasComponent reports whether h holds a component of type T.
func HasComponent[T Component](h Holder) bool {
	_, ok := TryGetComponent[T](h)
	return ok
}

// ComponentsOf returns every component held by h that is assignable to T.
// T is usually an interface shared by several component types.
func ComponentsOf[T any](h interface{ Components() []Component }) []T {
	var out []T
	for _, c := range h.Components() {
		if typed, ok := c.(T); ok {
			out = append(out, typed)
		}
	}
	return out
}

func safeDispose(c any) (err error) {
	d, ok := c.(Disposer)
	if !ok {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dispose %T: panic: %v", c, r)
		}
	}()
	if derr := d.Dispose(); derr != nil {
		return fmt.Errorf("dispose %T: %w", c, derr)
	}
	return nil
}
