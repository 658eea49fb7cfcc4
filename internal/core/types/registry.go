// Package types assigns component types their stable small integer index
// and builds the masks used for composition checks across the runtime.
package types

import (
	"fmt"
	"math"
	"reflect"
	"sync"
	"sync/atomic"
)

// Index is the registered position of a component type.
type Index uint16

// MaxTypes is the number of distinct component types a registry can hold.
const MaxTypes = math.MaxUint16

// Registry maps component types to indices. Indices are handed out in
// registration order and never reused while the registry lives.
//
// Registration belongs to the startup phase: once Seal is called the table
// is immutable and lookups run without locking.
type Registry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]Index
	types  []reflect.Type
	sealed atomic.Bool
}

// NewRegistry returns an empty, unsealed registry.
func NewRegistry() *Registry {
	return &Registry{
		byType: make(map[reflect.Type]Index, 64),
		types:  make([]reflect.Type, 0, 64),
	}
}

// Register returns the index of T, assigning the next free one the first
// time T is seen. It panics when called for a new type after Seal.
func Register[T any](r *Registry) Index {
	return r.RegisterType(reflect.TypeFor[T]())
}

// RegisterType is the reflect form of Register.
func (r *Registry) RegisterType(t reflect.Type) Index {
	if t == nil {
		panic("types: cannot register a nil type")
	}
	if idx, ok := r.IndexOfType(t); ok {
		return idx
	}
	if r.sealed.Load() {
		panic(fmt.Sprintf("types: cannot register %s: registry is sealed", t))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if idx, ok := r.byType[t]; ok {
		return idx
	}
	// Seal may have landed while waiting for the lock.
	if r.sealed.Load() {
		panic(fmt.Sprintf("types: cannot register %s: registry is sealed", t))
	}
	if len(r.types) >= MaxTypes {
		panic(fmt.Sprintf("types: cannot register %s: maximum number of component types (%d) reached", t, MaxTypes))
	}
	idx := Index(len(r.types))
	r.byType[t] = idx
	r.types = append(r.types, t)
	return idx
}

// IndexOf returns the index of T and panics if T was never registered.
func IndexOf[T any](r *Registry) Index {
	t := reflect.TypeFor[T]()
	idx, ok := r.IndexOfType(t)
	if !ok {
		panic(fmt.Sprintf("types: component type %s is not registered", t))
	}
	return idx
}

// TryIndexOf returns the index of T without panicking.
func TryIndexOf[T any](r *Registry) (Index, bool) {
	return r.IndexOfType(reflect.TypeFor[T]())
}

// IndexOfType looks up the index registered for t.
func (r *Registry) IndexOfType(t reflect.Type) (Index, bool) {
	if r.sealed.Load() {
		idx, ok := r.byType[t]
		return idx, ok
	}
	r.mu.RLock()
	idx, ok := r.byType[t]
	r.mu.RUnlock()
	return idx, ok
}

// Type returns the type registered at index i.
func (r *Registry) Type(i Index) (reflect.Type, bool) {
	if !r.sealed.Load() {
		r.mu.RLock()
		defer r.mu.RUnlock()
	}
	if int(i) >= len(r.types) {
		return nil, false
	}
	return r.types[i], true
}

// Name returns a printable name for index i.
func (r *Registry) Name(i Index) string {
	t, ok := r.Type(i)
	if !ok {
		return fmt.Sprintf("unregistered(%d)", i)
	}
	return t.String()
}

// Size is the number of registered types, which is also the length of
// every per-entity component slot array.
func (r *Registry) Size() int {
	if !r.sealed.Load() {
		r.mu.RLock()
		defer r.mu.RUnlock()
	}
	return len(r.types)
}

// Seal ends the registration phase. Calling it more than once is harmless.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed.Store(true)
	r.mu.Unlock()
}

// Sealed reports whether Seal was called.
func (r *Registry) Sealed() bool {
	return r.sealed.Load()
}
