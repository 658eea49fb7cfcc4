package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zeusync/zeuecs/internal/config"
	"github.com/zeusync/zeuecs/internal/core/ecs"
	"github.com/zeusync/zeuecs/internal/core/observability/log"
	"github.com/zeusync/zeuecs/internal/core/types"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML runtime config")
	rate := flag.Duration("tick", 50*time.Millisecond, "tick interval")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			fmt.Println("Error loading config:", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	logger, err := log.NewFromConfig(cfg.LoggerConfig())
	if err != nil {
		fmt.Println("Error building logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	reg := types.NewRegistry()
	registerTypes(reg)

	manager, err := ecs.NewManager(reg,
		ecs.WithConfig(cfg),
		ecs.WithLogger(logger),
		ecs.WithProviders(ecs.Dense[Position](), ecs.Dense[Velocity]()),
	)
	if err != nil {
		logger.Fatal("entity manager", log.Error(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sim, err := newSimulation(manager, logger)
	if err != nil {
		logger.Fatal("simulation setup", log.Error(err))
	}

	ticker := time.NewTicker(*rate)
	defer ticker.Stop()

	for running := true; running; {
		select {
		case <-ctx.Done():
			running = false
		case <-ticker.C:
			sim.step()
			if err := manager.Tick(ctx); err != nil && ctx.Err() == nil {
				logger.Error("tick failed", log.Error(err))
			}
		}
	}

	manager.ApplicationExit()
	if err := manager.Dispose(); err != nil {
		logger.Error("teardown incomplete", log.Error(err))
	}
}
