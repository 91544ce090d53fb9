package main

import (
	"flag"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lao-tseu-is-alive/go-boids/pkg/simulation"
	"github.com/tochemey/goakt/v3/log"
)

func main() {
	configFile := flag.String("config", "", "path to a .json or .toml configuration file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

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

	engine, err := simulation.NewLocalEngine(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to create world: %v", err)
	}

	ebiten.SetWindowSize(int(cfg.WorldWidth), int(cfg.WorldHeight))
	ebiten.SetWindowTitle("Boids")
	ebiten.SetTPS(cfg.TicksPerSecond)
	if err := ebiten.RunGame(simulation.NewGame(engine, cfg, logger)); err != nil {
		logger.Fatal(err)
	}
}
