package ecs

import (
	"fmt"

	"github.com/zeusync/zeuecs/internal/core/types"
)

// ComponentProvider is the dense storage of one component type in one
// world, indexed by fast entity slot. Providers grow together with the
// world's fast entity array.
type ComponentProvider interface {
	TypeIndex() types.Index
	Len() int
	// Resize grows the provider to n slots, keeping existing values.
	Resize(n int)
	// Clear resets slot to the zero value.
	Clear(slot uint32)
	Value(slot uint32) any
}

var _ ComponentProvider = (*Provider[struct{}])(nil)

// Provider packs the values of T for every fast entity of a world.
type Provider[T any] struct {
	index types.Index
	data  []T
}

func (p *Provider[T]) TypeIndex() types.Index { return p.index }
func (p *Provider[T]) Len() int               { return len(p.data) }

func (p *Provider[T]) Resize(n int) {
	if n <= len(p.data) {
		return
	}
	grown := make([]T, n)
	copy(grown, p.data)
	p.data = grown
}

func (p *Provider[T]) Clear(slot uint32) {
	var zero T
	p.data[slot] = zero
}

func (p *Provider[T]) Value(slot uint32) any { return p.data[slot] }

// Get returns a pointer into the packed array. The pointer is invalidated
// by the next growth of the fast entity array.
func (p *Provider[T]) Get(slot uint32) *T { return &p.data[slot] }

func (p *Provider[T]) Set(slot uint32, v T) { p.data[slot] = v }

// ProviderFactory installs a provider into a freshly created world.
type ProviderFactory func(w *World)

// Dense returns a factory that registers a Provider[T] in every world the
// manager creates.
func Dense[T any]() ProviderFactory {
	return func(w *World) {
		RegisterProvider[T](w)
	}
}

// RegisterProvider returns the provider of T in w, creating it on first use.
// T must be registered in the world's registry.
func RegisterProvider[T any](w *World) *Provider[T] {
	i := types.IndexOf[T](w.reg)
	if existing := w.Provider(i); existing != nil {
		p, ok := existing.(*Provider[T])
		if !ok {
			panic(fmt.Sprintf("ecs: provider for %s has type %T", w.reg.Name(i), existing))
		}
		return p
	}
	p := &Provider[T]{index: i, data: make([]T, len(w.fast))}
	w.setProvider(i, p)
	return p
}

// ProviderOf returns the provider of T in w, if one is registered.
func ProviderOf[T any](w *World) (*Provider[T], bool) {
	i, ok := types.TryIndexOf[T](w.reg)
	if !ok {
		return nil, false
	}
	p, ok := w.Provider(i).(*Provider[T])
	return p, ok
}
