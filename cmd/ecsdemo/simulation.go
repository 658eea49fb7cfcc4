package main

import (
	"fmt"

	"github.com/zeusync/zeuecs/internal/core/ecs"
	"github.com/zeusync/zeuecs/internal/core/observability/log"
	"github.com/zeusync/zeuecs/internal/core/types"
)

// Position and Velocity live in dense providers on the fast path.
type Position struct{ X, Y float64 }
type Velocity struct{ X, Y float64 }

// Spawner is the general-entity component driving particle churn.
type Spawner struct {
	ecs.BaseComponent
	PerTick  int
	Lifetime int
}

// lifetimeSystem counts down the frames left for every spawned particle.
type lifetimeSystem struct {
	ecs.BaseSystem
	log     log.Log
	expires map[ecs.FastHandle]int
	ticks   int
}

func (*lifetimeSystem) Capabilities() ecs.Capability { return ecs.CapExit }

func (s *lifetimeSystem) OnApplicationExit() {
	s.log.Info("simulation stopping", log.Int("ticks", s.ticks), log.Int("alive", len(s.expires)))
}

type simulation struct {
	world   *ecs.World
	moving  *ecs.Filter
	spawner *Spawner
	life    *lifetimeSystem
	log     log.Log
}

func registerTypes(reg *types.Registry) {
	types.Register[Position](reg)
	types.Register[Velocity](reg)
	types.Register[*Spawner](reg)
}

func newSimulation(m *ecs.Manager, logger log.Log) (*simulation, error) {
	w := m.Default()
	sp := &Spawner{PerTick: 8, Lifetime: 40}
	life := &lifetimeSystem{log: logger.Named("sim"), expires: make(map[ecs.FastHandle]int)}

	director := w.NewEntity("director")
	if err := director.AddComponent(sp, false); err != nil {
		return nil, err
	}
	if err := director.AddSystem(life); err != nil {
		return nil, err
	}
	director.Init()

	moving := w.Filter(types.MaskFor[Position](w.Registry()).Union(types.MaskFor[Velocity](w.Registry())))
	return &simulation{world: w, moving: moving, spawner: sp, life: life, log: logger}, nil
}

// step runs one frame of systems. Filter changes made here become visible
// after the manager ticks.
func (s *simulation) step() {
	s.life.ticks++
	for i := 0; i < s.spawner.PerTick; i++ {
		h := s.world.NewFastEntity()
		if err := s.attach(h, Velocity{X: float64(i), Y: 1}); err != nil {
			s.log.Error("spawn particle", log.Stringer("handle", h), log.Error(err))
			_ = s.world.DestroyFastEntity(h)
			continue
		}
		s.life.expires[h] = s.spawner.Lifetime
	}

	s.moving.EachFast(func(h ecs.FastHandle) {
		p, ok := ecs.GetFast[Position](s.world, h)
		if !ok {
			return
		}
		v, ok := ecs.GetFast[Velocity](s.world, h)
		if !ok {
			s.log.Error("moving entity without velocity", log.Stringer("handle", h))
			return
		}
		p.X += v.X
		p.Y += v.Y
	})

	for h, left := range s.life.expires {
		if left > 0 {
			s.life.expires[h] = left - 1
			continue
		}
		if err := s.world.DestroyFastEntity(h); err != nil {
			s.log.Warn("destroy expired entity", log.Stringer("handle", h), log.Error(err))
		}
		delete(s.life.expires, h)
	}
}

func (s *simulation) attach(h ecs.FastHandle, v Velocity) error {
	if err := ecs.AddFast(s.world, h, Position{}); err != nil {
		return fmt.Errorf("attach position: %w", err)
	}
	if err := ecs.AddFast(s.world, h, v); err != nil {
		return fmt.Errorf("attach velocity: %w", err)
	}
	return nil
}
