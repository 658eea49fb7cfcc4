// Allocation profile of fast entity churn:
// go build ./cmd/ecsprofile
// go tool pprof -http=":8000" -nodefraction=0.001 ./ecsprofile mem.pprof

package main

import (
	"context"

	"github.com/pkg/profile"

	"github.com/zeusync/zeuecs/internal/config"
	"github.com/zeusync/zeuecs/internal/core/ecs"
	"github.com/zeusync/zeuecs/internal/core/types"
)

type comp1 struct {
	V int64
	W int64
}

type comp2 struct {
	V int64
	W int64
}

func main() {
	rounds := 20
	iters := 1000
	entities := 1000
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(rounds, iters, entities)
	p.Stop()
}

func run(rounds, iters, numEntities int) {
	ctx := context.Background()
	for range rounds {
		reg := types.NewRegistry()
		types.Register[comp1](reg)
		types.Register[comp2](reg)

		cfg := config.Default()
		cfg.FastEntityCapacity = numEntities
		m, err := ecs.NewManager(reg, ecs.WithConfig(cfg), ecs.WithProviders(ecs.Dense[comp1](), ecs.Dense[comp2]()))
		if err != nil {
			panic(err)
		}
		w := m.Default()
		query := w.Filter(types.MaskOf(types.IndexOf[comp1](reg), types.IndexOf[comp2](reg)))

		handles := make([]ecs.FastHandle, 0, numEntities)
		for range iters {
			handles = handles[:0]
			for range numEntities {
				h := w.NewFastEntity()
				_ = ecs.AddFast(w, h, comp1{})
				_ = ecs.AddFast(w, h, comp2{V: 1, W: 2})
				handles = append(handles, h)
			}
			_ = m.Tick(ctx)

			query.EachFast(func(h ecs.FastHandle) {
				c1, _ := ecs.GetFast[comp1](w, h)
				c2, _ := ecs.GetFast[comp2](w, h)
				c1.V += c2.V
				c1.W += c2.W
			})
			for _, h := range handles {
				_ = w.DestroyFastEntity(h)
			}
			_ = m.Tick(ctx)
		}
		_ = m.Dispose()
	}
}
