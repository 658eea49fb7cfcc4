package ecs

import (
	"fmt"
	"slices"
	"strings"
)

// Capability is a set of hooks a system declares when it is attached.
type Capability uint8

const (
	// CapPause systems implement Pauser.
	CapPause Capability = 1 << iota
	// CapExit systems implement ApplicationExiter.
	CapExit
	// CapListener systems may subscribe to component and command events.
	CapListener
	// CapInit systems implement Initializer.
	CapInit
	// CapDispose systems implement Disposer.
	CapDispose
)

var capabilityNames = [...]string{"pause", "exit", "listener", "init", "dispose"}

func (c Capability) Has(other Capability) bool {
	return c&other == other
}

func (c Capability) String() string {
	if c == 0 {
		return "none"
	}
	var parts []string
	for i, name := range capabilityNames {
		if c&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "|")
}

// System is behavior attached to an entity. Implementations embed BaseSystem
// and override Capabilities to opt into hooks.
type System interface {
	Capabilities() Capability
	Owner() *Entity

	base() *BaseSystem
}

// Pauser reacts to its entity being paused and resumed.
type Pauser interface {
	Pause()
	UnPause()
}

// ApplicationExiter is told once when the application shuts down.
type ApplicationExiter interface {
	OnApplicationExit()
}

type BaseSystem struct {
	owner *Entity
	// every listener registry the system subscribed to, on any entity or world
	joined []listenerRegistry
}

// listenerRegistry is a component or command listener table.
type listenerRegistry interface {
	release(owner System)
}

func (*BaseSystem) Capabilities() Capability { return 0 }
func (s *BaseSystem) Owner() *Entity         { return s.owner }

func (s *BaseSystem) base() *BaseSystem { return s }

func (s *BaseSystem) join(r listenerRegistry) {
	if !slices.Contains(s.joined, r) {
		s.joined = append(s.joined, r)
	}
}

// checkCapabilities panics when s declares a capability whose hook it does
// not implement.
func checkCapabilities(s System) Capability {
	caps := s.Capabilities()
	fail := func(c Capability, hook string) {
		panic(fmt.Sprintf("ecs: system %T declares %s but does not implement %s", s, c, hook))
	}
	if caps.Has(CapPause) {
		if _, ok := s.(Pauser); !ok {
			fail(CapPause, "Pauser")
		}
	}
	if caps.Has(CapExit) {
		if _, ok := s.(ApplicationExiter); !ok {
			fail(CapExit, "ApplicationExiter")
		}
	}
	if caps.Has(CapInit) {
		if _, ok := s.(Initializer); !ok {
			fail(CapInit, "Initializer")
		}
	}
	if caps.Has(CapDispose) {
		if _, ok := s.(Disposer); !ok {
			fail(CapDispose, "Disposer")
		}
	}
	return caps
}

// Release drops every component and command listener s registered, on any
// entity or world.
func Release(s System) {
	b := s.base()
	for _, r := range b.joined {
		r.release(s)
	}
	b.joined = nil
}

func requireListener(s System) {
	if s == nil {
		panic("ecs: listener owner must not be nil")
	}
	if !s.Capabilities().Has(CapListener) {
		panic(fmt.Sprintf("ecs: system %T registers a listener without declaring %s", s, CapListener))
	}
}
