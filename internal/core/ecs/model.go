package ecs

import (
	"errors"
	"fmt"

	"github.com/zeusync/zeuecs/internal/core/types"
)

// EntityModel is a detached component container used to assemble an entity
// before it exists. It is never registered with a world, runs no hooks, and
// is never alive; World.Spawn turns it into a live Entity.
type EntityModel struct {
	store
	id string
}

func NewEntityModel(reg *types.Registry, id string) *EntityModel {
	return &EntityModel{store: newStore(reg), id: id}
}

func (m *EntityModel) ID() string                               { return m.id }
func (m *EntityModel) Registry() *types.Registry                { return m.reg }
func (m *EntityModel) Component(i types.Index) Component        { return m.at(i) }
func (m *EntityModel) Components() []Component                  { return m.present() }
func (m *EntityModel) Mask() types.Mask                         { return m.mask.Clone() }
func (m *EntityModel) ContainsMask(mask types.Mask) bool        { return m.mask.ContainsAll(mask) }
func (m *EntityModel) ContainsAnyFromMask(mask types.Mask) bool { return m.mask.ContainsAny(mask) }

func (*EntityModel) IsAlive() bool  { return false }
func (*EntityModel) IsPaused() bool { return true }

// AddComponent stores c in the model. The same rules as Entity.AddComponent
// apply, except that no hooks run and no listeners are told.
func (m *EntityModel) AddComponent(c Component) error {
	i := m.indexOf(c)
	b := c.base()
	if b.bound {
		return fmt.Errorf("add %s to model %q: %w", m.reg.Name(i), m.id, ErrNotOwner)
	}
	if m.at(i) != nil {
		return fmt.Errorf("add %s to model %q: %w", m.reg.Name(i), m.id, ErrComponentExists)
	}
	b.index, b.bound = i, true
	m.put(i, c)
	return nil
}

// RemoveComponentAt disposes and drops the component in slot i.
func (m *EntityModel) RemoveComponentAt(i types.Index) error {
	c := m.take(i)
	if c == nil {
		return nil
	}
	err := safeDispose(c)
	c.base().unbind()
	return err
}

// Dispose drops every component, joining disposal failures.
func (m *EntityModel) Dispose() error {
	var errs []error
	for _, i := range m.mask.Indices() {
		errs = append(errs, m.RemoveComponentAt(i))
	}
	return errors.Join(errs...)
}

// detach empties the model without disposing anything and hands the
// components over to the caller.
func (m *EntityModel) detach() []Component {
	out := m.present()
	for _, c := range out {
		m.take(c.base().index)
		c.base().unbind()
	}
	return out
}
