package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/drops/config"
	"github.com/pthm-cable/drops/game"
	"github.com/pthm-cable/drops/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files (saved on bookmarks)")
	snapshotPath := flag.String("snapshot", "", "Restore particles from a snapshot file")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.Options{
		Config:         cfg,
		Seed:           rngSeed,
		LogStats:       *logStats,
		OutputDir:      *outputDir,
		Headless:       *headless,
		StepsPerUpdate: *stepsPerUpdate,
		SnapshotDir:    *snapshotDir,
		Logger:         logger,
	}

	var snap *telemetry.Snapshot
	if *snapshotPath != "" {
		s, err := telemetry.LoadSnapshot(*snapshotPath)
		if err != nil {
			slog.Error("failed to load snapshot", "error", err)
			os.Exit(1)
		}
		snap = s
		if *seed == 0 {
			rngSeed = snap.RNGSeed
			opts.Seed = rngSeed
		}
	}
	restore := func(g *game.Game) {
		if snap == nil {
			return
		}
		if err := g.RestoreSnapshot(snap); err != nil {
			slog.Warn("snapshot restored partially", "error", err)
		}
		slog.Info("snapshot restored", "path", *snapshotPath, "tick", g.Tick(), "particles", g.ParticleCount())
	}

	if *headless {
		// Headless mode - pure CPU simulation, no raylib needed
		g := game.NewGameWithOptions(opts)
		defer g.Unload()
		restore(g)

		slog.Info("starting headless simulation",
			"seed", rngSeed,
			"max_ticks", *maxTicks,
			"steps_per_update", *stepsPerUpdate,
			"lanes", cfg.Kernel.Lanes,
		)

		for {
			g.UpdateHeadless()

			if *maxTicks > 0 && int(g.Tick()) >= *maxTicks {
				slog.Info("max ticks reached",
					"tick", g.Tick(),
					"particles", g.ParticleCount(),
					"overflows", g.Kernel().Overflows().Total(),
				)
				return
			}
		}
	}

	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(cfg.Screen.Width, cfg.Screen.Height, "Drops")
	defer rl.CloseWindow()

	rl.SetTargetFPS(cfg.Screen.TargetFPS)

	g := game.NewGameWithOptions(opts)
	defer g.Unload()
	restore(g)

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()

		if *maxTicks > 0 && int(g.Tick()) >= *maxTicks {
			break
		}
	}
}
