package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lao-tseu-is-alive/go-boids/pkg/simulation"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"
)

func main() {
	configFile := flag.String("config", "", "path to a .json or .toml configuration file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	ctx := context.Background()
	logger := log.DefaultLogger
	if *debug {
		logger = log.New(log.DebugLevel, os.Stdout)
	}

	cfg := simulation.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = simulation.LoadConfig(*configFile); err != nil {
			logger.Fatalf("Failed to load config: %v", err)
		}
	}

	system, err := actor.NewActorSystem("BoidsWorld",
		actor.WithLogger(logger),
		actor.WithActorInitMaxRetries(3))
	if err != nil {
		logger.Fatalf("Failed to create actor system: %v", err)
	}
	if err := system.Start(ctx); err != nil {
		logger.Fatalf("Failed to start actor system: %v", err)
	}

	engine, err := simulation.NewActorEngine(ctx, system, "world", cfg)
	if err != nil {
		_ = system.Stop(ctx)
		logger.Fatalf("Failed to create world: %v", err)
	}

	ebiten.SetWindowSize(int(cfg.WorldWidth), int(cfg.WorldHeight))
	ebiten.SetWindowTitle("Boids (actor world)")
	ebiten.SetTPS(cfg.TicksPerSecond)
	runErr := ebiten.RunGame(simulation.NewGame(engine, cfg, logger))

	if sum, err := engine.Summary(2 * time.Second); err == nil {
		logger.Infof("Final state: %s", sum)
	}
	if err := system.Stop(ctx); err != nil {
		logger.Errorf("Failed to stop actor system: %v", err)
	}
	if runErr != nil {
		logger.Fatal(runErr)
	}
}
