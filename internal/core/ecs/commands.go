package ecs

import (
	"reflect"
	"slices"

	"github.com/zeusync/zeuecs/internal/core/types"
)

type commandListener struct {
	owner System
	fn    func(any)
}

// commandService routes typed commands to the listeners that declared
// interest in the command type, in registration order.
type commandService struct {
	byType map[reflect.Type][]commandListener
}

func (s *commandService) listen(t reflect.Type, owner System, fn func(any)) {
	if s.byType == nil {
		s.byType = make(map[reflect.Type][]commandListener)
	}
	s.byType[t] = append(s.byType[t], commandListener{owner: owner, fn: fn})
}

// dispatch returns the number of listeners that received cmd.
func (s *commandService) dispatch(t reflect.Type, cmd any) int {
	list := s.byType[t]
	if len(list) == 0 {
		return 0
	}
	for _, cl := range slices.Clone(list) {
		cl.fn(cmd)
	}
	return len(list)
}

func (s *commandService) release(owner System) {
	for t, list := range s.byType {
		list = slices.DeleteFunc(list, func(cl commandListener) bool { return cl.owner == owner })
		if len(list) == 0 {
			delete(s.byType, t)
			continue
		}
		s.byType[t] = list
	}
}

func (s *commandService) clear() {
	s.byType = nil
}

func wrapCommandFunc[T any](fn func(T)) func(any) {
	return func(cmd any) {
		fn(cmd.(T))
	}
}

// ListenCommand subscribes sys to commands of type T sent to e, which may
// be any entity. Release and RemoveSystem drop the listener.
func ListenCommand[T any](e *Entity, sys System, fn func(T)) {
	requireListener(sys)
	e.commands.listen(reflect.TypeFor[T](), sys, wrapCommandFunc(fn))
	sys.base().join(&e.commands)
}

// ListenWorldCommand subscribes sys to commands of type T sent to w.
func ListenWorldCommand[T any](w *World, sys System, fn func(T)) {
	requireListener(sys)
	w.commands.listen(reflect.TypeFor[T](), sys, wrapCommandFunc(fn))
	sys.base().join(&w.commands)
}

// Command delivers cmd to the listeners of e. It does nothing while e is
// paused or not alive.
func Command[T any](e *Entity, cmd T) {
	if e.paused || !e.alive {
		return
	}
	e.commands.dispatch(reflect.TypeFor[T](), cmd)
}

// CommandWorld delivers cmd to the world-scoped listeners of w and returns
// how many received it.
func CommandWorld[T any](w *World, cmd T) int {
	return w.commands.dispatch(reflect.TypeFor[T](), cmd)
}

// CommandWorldWhen delivers cmd once some registered entity of w carries
// every component in wait. If one already does the command is delivered
// immediately; otherwise it is parked and re-evaluated whenever an entity is
// registered or gains a component. It reports whether delivery happened now.
func CommandWorldWhen[T any](w *World, cmd T, wait types.Mask) bool {
	deliver := func() { CommandWorld(w, cmd) }
	if _, ok := w.TryGetEntityByComponents(wait); ok {
		deliver()
		return true
	}
	w.pending = append(w.pending, pendingCommand{wait: wait.Clone(), deliver: deliver})
	return false
}

type pendingCommand struct {
	wait    types.Mask
	deliver func()
}
