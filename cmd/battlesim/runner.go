package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/redarchon/internal/config"
	"github.com/cory-johannsen/redarchon/internal/game/battle"
	"github.com/cory-johannsen/redarchon/internal/game/character"
	"github.com/cory-johannsen/redarchon/internal/game/dice"
	"github.com/cory-johannsen/redarchon/internal/game/npc"
	"github.com/cory-johannsen/redarchon/internal/game/special"
	"github.com/cory-johannsen/redarchon/internal/observability"
	"github.com/cory-johannsen/redarchon/internal/presentation"
	"github.com/cory-johannsen/redarchon/internal/scripting"
)

// ReportSink persists finished battle reports.
type ReportSink interface {
	Save(ctx context.Context, rep battle.Report) error
}

// runner plays a gauntlet of encounters with one character, driven by an
// autopilot on a fixed-step clock.
type runner struct {
	battleCfg func() config.BattleConfig
	enemies   *npc.Registry
	specials  *special.Registry
	roller    *dice.Roller
	pilot     *scripting.Autopilot
	sink      ReportSink
	logger    *zap.Logger

	// step is the simulated time per tick.
	step time.Duration
	// realtime paces ticks against the wall clock.
	realtime bool
	// out receives rendered frames every renderEvery ticks; nil disables rendering.
	out         io.Writer
	renderEvery int
	// plain strips ANSI escapes from rendered frames.
	plain bool
	// maxBattle aborts an encounter that runs longer in simulated time.
	maxBattle time.Duration
}

// run fights each enemy in order until the player is defeated.
//
// Postcondition: returns one report per finished encounter.
func (r *runner) run(ctx context.Context, player *character.Character, enemyIDs []string) ([]battle.Report, error) {
	reports := make([]battle.Report, 0, len(enemyIDs))
	for _, id := range enemyIDs {
		rep, err := r.encounter(ctx, player, id)
		if err != nil {
			return reports, err
		}
		reports = append(reports, rep)
		if rep.Outcome == battle.OutcomeDefeat {
			r.logger.Info("gauntlet over", zap.String("defeated_by", id), zap.Int("battles", len(reports)))
			break
		}
	}
	return reports, nil
}

func (r *runner) encounter(ctx context.Context, player *character.Character, enemyID string) (battle.Report, error) {
	enemy, err := r.enemies.Spawn(enemyID)
	if err != nil {
		return battle.Report{}, fmt.Errorf("spawning %q: %w", enemyID, err)
	}
	s, err := battle.NewSession(r.battleCfg(), player, enemy, battle.Deps{
		Roller:   r.roller,
		Specials: r.specials,
		Logger:   r.logger,
	})
	if err != nil {
		return battle.Report{}, fmt.Errorf("starting battle with %q: %w", enemyID, err)
	}
	logger := observability.EncounterLogger(r.logger, s.ID().String(), enemyID, s.IsBoss())

	var ticker *time.Ticker
	if r.realtime {
		ticker = time.NewTicker(r.step)
		defer ticker.Stop()
	}

	for frame := 0; !s.Ended(); frame++ {
		if s.Elapsed() > r.maxBattle {
			return battle.Report{}, fmt.Errorf("battle with %q exceeded %s", enemyID, r.maxBattle)
		}
		if ticker != nil {
			select {
			case <-ctx.Done():
				return battle.Report{}, ctx.Err()
			case <-ticker.C:
			}
		} else if err := ctx.Err(); err != nil {
			return battle.Report{}, err
		}

		r.pilot.Step(s)
		s.Tick(r.step)
		logEvents(logger, s.DrainEvents())
		if r.out != nil && r.renderEvery > 0 && (frame%r.renderEvery == 0 || s.Ended()) {
			screen := presentation.ClearScreen + presentation.Render(presentation.Snapshot(s))
			if r.plain {
				screen = presentation.StripANSI(screen)
			}
			fmt.Fprint(r.out, screen)
		}
	}

	rep, _ := s.Report()
	logger.Info("encounter finished",
		zap.String("outcome", rep.Outcome.String()),
		zap.Int("turns", rep.PlayerTurns),
		zap.Int("damage_dealt", rep.DamageDealt),
		zap.Int("damage_taken", rep.DamageTaken),
		zap.Strings("loot", rep.Loot),
		zap.Duration("elapsed", rep.Elapsed),
	)
	if r.sink != nil {
		if err := r.sink.Save(ctx, rep); err != nil {
			logger.Error("saving battle report", zap.Error(err))
		}
	}
	return rep, nil
}

func logEvents(logger *zap.Logger, events []battle.Event) {
	for _, e := range events {
		switch e.Kind {
		case battle.EventPopup:
			logger.Debug("popup", zap.String("text", e.Text))
		case battle.EventDamage, battle.EventHeal:
			logger.Debug("hp change",
				zap.String("kind", e.Kind.String()),
				zap.String("target", e.Target),
				zap.Int("amount", e.Amount),
			)
		}
	}
}
