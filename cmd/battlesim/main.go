// Package main provides battlesim, a headless runner that plays battle
// encounters with a scripted autopilot and optionally records reports.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/redarchon/internal/config"
	"github.com/cory-johannsen/redarchon/internal/game/battle"
	"github.com/cory-johannsen/redarchon/internal/game/character"
	"github.com/cory-johannsen/redarchon/internal/game/dice"
	"github.com/cory-johannsen/redarchon/internal/game/npc"
	"github.com/cory-johannsen/redarchon/internal/game/special"
	"github.com/cory-johannsen/redarchon/internal/lifecycle"
	"github.com/cory-johannsen/redarchon/internal/observability"
	"github.com/cory-johannsen/redarchon/internal/scripting"
	"github.com/cory-johannsen/redarchon/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	enemies := flag.String("enemies", "necromancer,nightborne", "comma-separated enemy template IDs fought in order")
	playerName := flag.String("name", "Archon", "player character name")
	playerID := flag.String("player-id", "", "stable player UUID so stored history accumulates across runs")
	seed := flag.Uint64("seed", 0, "seed for deterministic runs; 0 uses crypto randomness")
	fps := flag.Int("fps", 60, "simulation ticks per second")
	realtime := flag.Bool("realtime", false, "pace ticks against the wall clock")
	render := flag.Bool("render", false, "draw ANSI frames to stdout")
	plain := flag.Bool("plain", false, "strip ANSI escapes from rendered frames")
	autopilot := flag.String("autopilot", "", "Lua policy script; overrides scripting.autopilot")
	maxBattle := flag.Duration("max-battle", 10*time.Minute, "abort an encounter after this much simulated time")
	flag.Parse()

	if *fps < 1 {
		log.Fatalf("fps must be >= 1, got %d", *fps)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	// battle tuning edits apply from the next encounter
	var current atomic.Pointer[config.Config]
	current.Store(&cfg)
	if _, err := config.Watch(*configPath, func(c config.Config) {
		current.Store(&c)
		logger.Info("configuration reloaded")
	}, func(err error) {
		logger.Warn("ignoring invalid configuration change", zap.Error(err))
	}); err != nil {
		logger.Fatal("watching config", zap.Error(err))
	}

	var src dice.Source = dice.NewCryptoSource()
	if *seed != 0 {
		src = dice.NewSeededSource(*seed)
	}
	roller := dice.NewLoggedRoller(src, logger)

	reg, err := npc.LoadRegistry(cfg.Content.EnemiesDir)
	if err != nil {
		logger.Fatal("loading enemy templates", zap.Error(err))
	}
	specials, err := special.LoadDirectory(cfg.Content.SpecialsDir)
	if err != nil {
		logger.Fatal("loading specials", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Strings("enemies", reg.IDs()),
		zap.Int("specials", len(specials.All())),
	)

	policy := cfg.Scripting.Autopilot
	if *autopilot != "" {
		policy = *autopilot
	}
	var pilot *scripting.Autopilot
	if policy == "" {
		pilot, err = scripting.NewAutopilot(roller, logger, cfg.Scripting.InstructionLimit)
	} else {
		pilot, err = scripting.LoadAutopilot(policy, roller, logger, cfg.Scripting.InstructionLimit)
	}
	if err != nil {
		logger.Fatal("loading autopilot", zap.Error(err))
	}
	defer pilot.Close()

	ctx := context.Background()
	var (
		sink ReportSink
		pool *postgres.Pool
		repo *postgres.ReportRepository
	)
	if cfg.Database.Enabled {
		dbStart := time.Now()
		pool, err = postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		repo = postgres.NewReportRepository(pool.DB())
		sink = repo
	}

	player, err := character.Build(*playerName, character.DefaultLoadout())
	if err != nil {
		logger.Fatal("building character", zap.Error(err))
	}
	if *playerID != "" {
		id, err := uuid.Parse(*playerID)
		if err != nil {
			logger.Fatal("parsing player-id", zap.Error(err))
		}
		player.ID = id
	}

	r := &runner{
		battleCfg: func() config.BattleConfig { return current.Load().Battle },
		enemies:   reg,
		specials:  specials,
		roller:    roller,
		pilot:     pilot,
		sink:      sink,
		logger:    logger,
		step:      time.Second / time.Duration(*fps),
		realtime:  *realtime,
		maxBattle: *maxBattle,
	}
	if *render {
		r.out = os.Stdout
		r.renderEvery = max(1, *fps/20)
		r.plain = *plain
	}

	lc := lifecycle.New(logger)
	if cfg.Content.Watch {
		w, err := npc.NewWatcher(cfg.Content.EnemiesDir, reg, logger)
		if err != nil {
			logger.Fatal("watching enemy templates", zap.Error(err))
		}
		w.OnReload = func(ids []string) {
			logger.Info("enemy templates reloaded", zap.Strings("enemies", ids))
		}
		lc.Add("content-watcher", w)
	}

	var reports []battle.Report
	lc.Add("gauntlet", lifecycle.ServiceFunc(func(ctx context.Context) error {
		var err error
		reports, err = r.run(ctx, player, splitIDs(*enemies))
		return err
	}))

	if err := lc.Run(ctx); err != nil {
		logger.Error("battlesim failed", zap.Error(err))
	}
	printSummary(reports, time.Since(start))
	if repo != nil {
		if err := pool.Health(ctx, 2*time.Second); err != nil {
			logger.Error("database unreachable after gauntlet", zap.Error(err))
			return
		}
		if err := printHistory(ctx, os.Stdout, repo, player.ID, 5); err != nil {
			logger.Error("reading battle history", zap.Error(err))
		}
	}
}

func splitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func printSummary(reports []battle.Report, elapsed time.Duration) {
	for _, rep := range reports {
		fmt.Fprintf(os.Stdout, "%-12s %-8s turns=%-3d dealt=%-4d taken=%-4d loot=%v sim=%s\n",
			rep.EnemyName, rep.Outcome, rep.PlayerTurns, rep.DamageDealt, rep.DamageTaken,
			rep.Loot, rep.Elapsed.Round(time.Millisecond))
	}
	fmt.Fprintf(os.Stdout, "%d battle(s) [%s]\n", len(reports), elapsed.Round(time.Millisecond))
}
