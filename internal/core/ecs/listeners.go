package ecs

import (
	"slices"

	"github.com/zeusync/zeuecs/internal/core/types"
)

type componentListener struct {
	owner System
	fn    func(Component, bool)
}

// componentListeners indexes listeners by component type index.
type componentListeners struct {
	byIndex map[types.Index][]componentListener
}

func (l *componentListeners) listen(i types.Index, owner System, fn func(Component, bool)) {
	if l.byIndex == nil {
		l.byIndex = make(map[types.Index][]componentListener)
	}
	l.byIndex[i] = append(l.byIndex[i], componentListener{owner: owner, fn: fn})
}

func (l *componentListeners) notify(i types.Index, c Component, added bool) {
	list := l.byIndex[i]
	if len(list) == 0 {
		return
	}
	for _, cl := range slices.Clone(list) {
		cl.fn(c, added)
	}
}

// release drops every listener registered by owner.
func (l *componentListeners) release(owner System) {
	for i, list := range l.byIndex {
		list = slices.DeleteFunc(list, func(cl componentListener) bool { return cl.owner == owner })
		if len(list) == 0 {
			delete(l.byIndex, i)
			continue
		}
		l.byIndex[i] = list
	}
}

func (l *componentListeners) clear() {
	l.byIndex = nil
}

func wrapComponentFunc[T Component](fn func(T, bool)) func(Component, bool) {
	return func(c Component, added bool) {
		if typed, ok := c.(T); ok {
			fn(typed, added)
		}
	}
}

// ListenComponent subscribes sys to additions (added == true) and removals
// of T on e. sys must declare CapListener. e need not be the entity sys is
// attached to; Release and RemoveSystem drop the listener either way.
func ListenComponent[T Component](e *Entity, sys System, fn func(c T, added bool)) {
	requireListener(sys)
	e.components.listen(types.IndexOf[T](e.reg), sys, wrapComponentFunc(fn))
	sys.base().join(&e.components)
}

// ListenWorldComponent subscribes sys to additions and removals of T on
// every entity registered in w.
func ListenWorldComponent[T Component](w *World, sys System, fn func(c T, added bool)) {
	requireListener(sys)
	w.components.listen(types.IndexOf[T](w.reg), sys, wrapComponentFunc(fn))
	sys.base().join(&w.components)
}
