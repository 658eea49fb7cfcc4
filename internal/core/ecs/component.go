package ecs

import (
	"github.com/zeusync/zeuecs/internal/core/types"
)

// Component is a data fragment attached to at most one entity at a time.
// Implementations embed BaseComponent and are registered by pointer type:
//
//	type Health struct {
//		ecs.BaseComponent
//		HP int
//	}
//
//	types.Register[*Health](registry)
type Component interface {
	// Mask is the single-index mask of the component type, empty while detached.
	Mask() types.Mask
	IsAlive() bool
	// Owner is the entity holding the component, nil while detached.
	Owner() *Entity

	base() *BaseComponent
}

// Initializer is run when a component is initialised and when a system with
// CapInit is initialised.
type Initializer interface {
	Init()
}

// AfterEntityInitializer runs after every component of the entity has been
// initialised.
type AfterEntityInitializer interface {
	AfterEntityInit()
}

// Disposer releases resources held by a component or a CapDispose system.
type Disposer interface {
	Dispose() error
}

// BaseComponent carries the bookkeeping every component needs.
type BaseComponent struct {
	owner *Entity
	index types.Index
	bound bool
	alive bool
}

func (c *BaseComponent) Mask() types.Mask {
	if !c.bound {
		return types.Mask{}
	}
	return types.MaskOf(c.index)
}

// TypeIndex is the registered index of the component, valid while attached.
func (c *BaseComponent) TypeIndex() (types.Index, bool) {
	return c.index, c.bound
}

func (c *BaseComponent) IsAlive() bool  { return c.alive }
func (c *BaseComponent) Owner() *Entity { return c.owner }

func (c *BaseComponent) base() *BaseComponent { return c }

func (c *BaseComponent) bind(owner *Entity, index types.Index) {
	c.owner = owner
	c.index = index
	c.bound = true
	c.alive = true
}

func (c *BaseComponent) unbind() {
	c.owner = nil
	c.bound = false
	c.alive = false
}
