// Package ecs is the entity-component-system runtime: entities built from
// components and systems, grouped into isolated worlds that are owned by a
// single Manager.
//
// Two entity strategies live side by side. Entity is the general form: a
// GUID identity with one component slot per registered type, dynamic
// composition and per-entity systems, listeners and commands. FastEntity is
// the dense form: a (slot, generation) handle into a world-owned array whose
// component values are packed per type in a Provider.
//
// Mutation of one world happens on a single tick goroutine. Changes are
// queued and folded into every live Filter when World.FinishTick (driven by
// Manager.Tick) runs at the frame boundary.
package ecs
