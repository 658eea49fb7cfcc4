package ecs

import (
	"errors"
	"fmt"
	"math/bits"
	"reflect"
	"slices"

	"github.com/google/uuid"

	"github.com/zeusync/zeuecs/internal/core/types"
)

// capabilityLists keeps the systems of an entity grouped by capability bit.
type capabilityLists [len(capabilityNames)][]System

func (l *capabilityLists) add(s System, caps Capability) {
	for c := uint8(caps); c != 0; c &= c - 1 {
		bit := bits.TrailingZeros8(c)
		l[bit] = append(l[bit], s)
	}
}

func (l *capabilityLists) remove(s System) {
	for bit := range l {
		l[bit] = slices.DeleteFunc(l[bit], func(cur System) bool { return cur == s })
	}
}

func (l *capabilityLists) of(c Capability) []System {
	return slices.Clone(l[bits.TrailingZeros8(uint8(c))])
}

// Entity is the general entity form: a GUID identity with one component
// slot per registered type and a list of attached systems.
//
// An entity is created by World.NewEntity and becomes alive when Init
// registers it with its world. Entities are not safe for concurrent use;
// they belong to the tick goroutine of their world.
type Entity struct {
	store

	guid  uuid.UUID
	id    string
	world *World

	systems []System
	byType  map[reflect.Type]System
	caps    capabilityLists

	// components added before Init, waiting for their hooks
	pendingInit  []Component
	pendingAfter []Component

	commands   commandService
	components componentListeners

	inited   bool
	alive    bool
	paused   bool
	disposed bool
	updated  bool
}

func newEntity(w *World, id string) *Entity {
	return &Entity{
		store:  newStore(w.reg),
		guid:   uuid.New(),
		id:     id,
		world:  w,
		byType: make(map[reflect.Type]System),
	}
}

func (e *Entity) GUID() uuid.UUID { return e.guid }

// SetGUID replaces the identity of e, keeping the world lookup in sync.
func (e *Entity) SetGUID(guid uuid.UUID) {
	if e.alive && e.world != nil {
		e.world.rekey(e, guid)
	}
	e.guid = guid
}

// GenerateGUID assigns a fresh random GUID and returns it.
func (e *Entity) GenerateGUID() uuid.UUID {
	guid := uuid.New()
	e.SetGUID(guid)
	return guid
}

func (e *Entity) ID() string      { return e.id }
func (e *Entity) SetID(id string) { e.id = id }
func (e *Entity) World() *World   { return e.world }

func (e *Entity) Registry() *types.Registry { return e.reg }

// Mask is a copy of the indices of every attached component.
func (e *Entity) Mask() types.Mask { return e.mask.Clone() }

func (e *Entity) Component(i types.Index) Component { return e.at(i) }

// Components lists the attached components in type index order.
func (e *Entity) Components() []Component { return e.present() }

func (e *Entity) IsAlive() bool       { return e.alive }
func (e *Entity) IsPaused() bool      { return e.paused }
func (e *Entity) IsInitialized() bool { return e.inited }
func (e *Entity) IsDisposed() bool    { return e.disposed }

// Equal compares entities by GUID.
func (e *Entity) Equal(other *Entity) bool {
	return other != nil && e.guid == other.guid
}

func (e *Entity) String() string {
	if e.id != "" {
		return fmt.Sprintf("%s(%s)", e.id, e.guid)
	}
	return e.guid.String()
}

// Contains reports whether a component with index i is attached.
func (e *Entity) Contains(i types.Index) bool { return e.mask.Has(i) }

// ContainsMask reports whether every index of m is attached.
func (e *Entity) ContainsMask(m types.Mask) bool { return e.mask.ContainsAll(m) }

// ContainsAnyFromMask reports whether at least one index of m is attached.
func (e *Entity) ContainsAnyFromMask(m types.Mask) bool { return e.mask.ContainsAny(m) }

// AddComponent attaches c. Hooks run immediately when initNow is set or the
// entity is already initialised; otherwise they wait for Init. A slot that
// is already occupied is left untouched and ErrComponentExists is returned.
//
// Attaching a nil component or one whose type was never registered panics.
func (e *Entity) AddComponent(c Component, initNow bool) error {
	i := e.indexOf(c)
	if err := e.canAttach(i, c); err != nil {
		return err
	}
	if e.at(i) != nil {
		return fmt.Errorf("add %s to %s: %w", e.reg.Name(i), e, ErrComponentExists)
	}

	c.base().bind(e, i)
	e.put(i, c)

	switch {
	case e.inited:
		runInit(c)
		runAfterInit(c)
	case initNow:
		runInit(c)
		e.pendingAfter = append(e.pendingAfter, c)
	default:
		e.pendingInit = append(e.pendingInit, c)
		e.pendingAfter = append(e.pendingAfter, c)
	}

	e.changed()
	e.notify(i, c, true)
	if e.alive {
		e.world.flushPending()
	}
	return nil
}

// canAttach checks that c may move into slot i of e, whatever occupies it.
func (e *Entity) canAttach(i types.Index, c Component) error {
	if e.disposed {
		return fmt.Errorf("add %s to %s: %w", e.reg.Name(i), e, ErrEntityNotAlive)
	}
	if b := c.base(); b.bound && b.owner != e {
		return fmt.Errorf("add %s to %s: %w", e.reg.Name(i), e, ErrNotOwner)
	}
	return nil
}

// AddOrReplaceComponent attaches c, removing whatever occupied its slot first.
// When c cannot be attached the current component is kept.
func (e *Entity) AddOrReplaceComponent(c Component) error {
	i := e.indexOf(c)
	cur := e.at(i)
	if cur == c {
		return nil
	}
	if err := e.canAttach(i, c); err != nil {
		return err
	}
	var errs []error
	if cur != nil {
		errs = append(errs, e.removeAt(i))
	}
	errs = append(errs, e.AddComponent(c, false))
	return errors.Join(errs...)
}

// RemoveComponent detaches c. Components that are not attached to e are ignored.
func (e *Entity) RemoveComponent(c Component) error {
	if c == nil {
		return nil
	}
	b := c.base()
	if !b.bound || b.owner != e || e.at(b.index) != c {
		return nil
	}
	return e.removeAt(b.index)
}

// RemoveComponentAt detaches the component in slot i, if any.
func (e *Entity) RemoveComponentAt(i types.Index) error {
	return e.removeAt(i)
}

// RemoveComponents detaches every component whose index is in m.
func (e *Entity) RemoveComponents(m types.Mask) error {
	var errs []error
	for _, i := range m.Indices() {
		errs = append(errs, e.removeAt(i))
	}
	return errors.Join(errs...)
}

func (e *Entity) removeAt(i types.Index) error {
	c := e.at(i)
	if c == nil {
		return nil
	}
	err := safeDispose(c)
	e.take(i)
	e.dropPending(c)

	b := c.base()
	b.alive = false
	e.changed()
	e.notify(i, c, false)
	b.unbind()
	return err
}

func (e *Entity) dropPending(c Component) {
	match := func(cur Component) bool { return cur == c }
	e.pendingInit = slices.DeleteFunc(e.pendingInit, match)
	e.pendingAfter = slices.DeleteFunc(e.pendingAfter, match)
}

// changed queues e for the next filter drain.
func (e *Entity) changed() {
	if e.alive {
		e.world.markUpdated(e)
	}
}

func (e *Entity) notify(i types.Index, c Component, added bool) {
	e.components.notify(i, c, added)
	if e.alive {
		e.world.components.notify(i, c, added)
	}
}

// AddSystem attaches s. Declared capabilities are checked once here and a
// system that declares a hook it does not implement panics.
func (e *Entity) AddSystem(s System) error {
	if s == nil {
		panic("ecs: cannot attach a nil system")
	}
	t := reflect.TypeOf(s)
	if e.disposed {
		return fmt.Errorf("add system %s to %s: %w", t, e, ErrEntityNotAlive)
	}
	if owner := s.base().owner; owner != nil && owner != e {
		return fmt.Errorf("add system %s to %s: %w", t, e, ErrNotOwner)
	}
	if _, ok := e.byType[t]; ok {
		return fmt.Errorf("add system %s to %s: %w", t, e, ErrSystemExists)
	}

	caps := checkCapabilities(s)
	s.base().owner = e
	e.systems = append(e.systems, s)
	e.byType[t] = s
	e.caps.add(s, caps)

	if e.inited && caps.Has(CapInit) {
		s.(Initializer).Init()
	}
	if e.paused && caps.Has(CapPause) {
		s.(Pauser).Pause()
	}
	return nil
}

// RemoveSystem detaches s and releases every listener it registered.
func (e *Entity) RemoveSystem(s System) error {
	if s == nil || s.base().owner != e {
		return nil
	}
	return e.detachSystem(s)
}

func (e *Entity) detachSystem(s System) error {
	e.systems = slices.DeleteFunc(e.systems, func(cur System) bool { return cur == s })
	delete(e.byType, reflect.TypeOf(s))
	e.caps.remove(s)

	caps := s.Capabilities()
	if caps.Has(CapListener) {
		Release(s)
	}
	s.base().owner = nil
	if caps.Has(CapDispose) {
		return safeDispose(s)
	}
	return nil
}

// Systems returns the attached systems in attach order.
func (e *Entity) Systems() []System { return slices.Clone(e.systems) }

// TryGetSystem returns the attached system of type T.
func TryGetSystem[T System](e *Entity) (T, bool) {
	s, ok := e.byType[reflect.TypeFor[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := s.(T)
	return typed, ok
}

// GetOrAddComponent returns the T attached to e, attaching newFn() when
// there is none.
func GetOrAddComponent[T Component](e *Entity, newFn func() T) (T, error) {
	if c, ok := TryGetComponent[T](e); ok {
		return c, nil
	}
	c := newFn()
	return c, e.AddComponent(c, false)
}

// RemoveComponentOf detaches the T attached to e, if any.
func RemoveComponentOf[T Component](e *Entity) error {
	i, ok := types.TryIndexOf[T](e.reg)
	if !ok {
		return nil
	}
	return e.removeAt(i)
}

// Pause marks e as paused and pauses every CapPause system.
func (e *Entity) Pause() {
	if e.paused {
		return
	}
	e.paused = true
	for _, s := range e.caps.of(CapPause) {
		s.(Pauser).Pause()
	}
}

func (e *Entity) UnPause() {
	if !e.paused {
		return
	}
	e.paused = false
	for _, s := range e.caps.of(CapPause) {
		s.(Pauser).UnPause()
	}
}

func (e *Entity) applicationExit() {
	for _, s := range e.caps.of(CapExit) {
		s.(ApplicationExiter).OnApplicationExit()
	}
}

// Init runs the deferred component hooks, initialises CapInit systems and
// registers e with its world. Calling it again is a no-op.
func (e *Entity) Init() {
	if e.inited || e.disposed {
		return
	}
	e.inited = true

	pendingInit, pendingAfter := e.pendingInit, e.pendingAfter
	e.pendingInit, e.pendingAfter = nil, nil
	for _, c := range pendingInit {
		runInit(c)
	}
	for _, c := range pendingAfter {
		runAfterInit(c)
	}
	for _, s := range e.caps.of(CapInit) {
		s.(Initializer).Init()
	}

	if e.world != nil {
		e.world.RegisterEntity(e, true)
	}
}

// Dispose unregisters e, disposes every component and system and releases
// its listeners. A failing or panicking component does not stop the rest
// from being released; all failures are joined into the returned error.
func (e *Entity) Dispose() error {
	if e.disposed {
		return nil
	}
	e.disposed = true

	if e.alive && e.world != nil {
		e.world.RegisterEntity(e, false)
	}

	var errs []error
	for _, i := range e.mask.Indices() {
		errs = append(errs, e.removeAt(i))
	}
	for _, s := range slices.Clone(e.systems) {
		errs = append(errs, e.detachSystem(s))
	}

	e.commands.clear()
	e.components.clear()
	e.pendingInit, e.pendingAfter = nil, nil
	clear(e.slots)
	e.mask.Reset()

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("dispose entity %s: %w", e, err)
	}
	return nil
}

func runInit(c Component) {
	if i, ok := c.(Initializer); ok {
		i.Init()
	}
}

func runAfterInit(c Component) {
	if a, ok := c.(AfterEntityInitializer); ok {
		a.AfterEntityInit()
	}
}
