package ecs

import "errors"

var (
	// Composition errors

	ErrComponentExists = errors.New("component slot already occupied")
	ErrSystemExists    = errors.New("system of this type already attached")
	ErrNotOwner        = errors.New("component is attached to another entity")

	// Dense path errors

	ErrStaleHandle     = errors.New("stale fast entity handle")
	ErrProviderMissing = errors.New("no provider registered for component type")

	// Lifecycle errors

	ErrEntityNotAlive  = errors.New("entity is not alive")
	ErrWorldNotFound   = errors.New("world not found")
	ErrWorldDisposed   = errors.New("world is disposed")
	ErrManagerDisposed = errors.New("entity manager is disposed")
)
