package ecs

import (
	"github.com/zeusync/zeuecs/internal/core/types"
)

// GetSingleComponent returns the T of the first registered entity of w that
// carries one.
func GetSingleComponent[T Component](w *World) (T, bool) {
	var zero T
	i, ok := types.TryIndexOf[T](w.reg)
	if !ok {
		return zero, false
	}
	for _, e := range w.entities {
		if c, ok := e.at(i).(T); ok {
			return c, true
		}
	}
	return zero, false
}

// GetSingleSystem returns the first T attached to a registered entity of w.
func GetSingleSystem[T System](w *World) (T, bool) {
	for _, e := range w.entities {
		if s, ok := TryGetSystem[T](e); ok {
			return s, true
		}
	}
	var zero T
	return zero, false
}

// TryGetSystemFromEntity returns the T attached to the first entity of w
// that carries every component of m and has such a system.
func TryGetSystemFromEntity[T System](w *World, m types.Mask) (T, bool) {
	for _, e := range w.entities {
		if !e.ContainsMask(m) {
			continue
		}
		if s, ok := TryGetSystem[T](e); ok {
			return s, true
		}
	}
	var zero T
	return zero, false
}

// TryGetComponentFromEntity returns the T of the first entity of w that
// carries every component of ownerMask and a T.
func TryGetComponentFromEntity[T Component](w *World, ownerMask types.Mask) (T, bool) {
	for _, e := range w.entities {
		if !e.ContainsMask(ownerMask) {
			continue
		}
		if c, ok := TryGetComponent[T](e); ok {
			return c, true
		}
	}
	var zero T
	return zero, false
}
