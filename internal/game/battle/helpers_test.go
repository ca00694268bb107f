package battle_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/redarchon/internal/config"
	"github.com/cory-johannsen/redarchon/internal/game/battle"
	"github.com/cory-johannsen/redarchon/internal/game/character"
	"github.com/cory-johannsen/redarchon/internal/game/dice"
	"github.com/cory-johannsen/redarchon/internal/game/npc"
	"github.com/cory-johannsen/redarchon/internal/game/special"
)

const step = 10 * time.Millisecond

func necromancerTemplate() *npc.Template {
	return &npc.Template{
		ID: "necromancer", Name: "Necromancer", Kind: npc.KindBasic,
		MaxHP: 30, Atk: 10, Defense: 5, Spd: 11,
		Clips: npc.Clips{
			Idle:   npc.Clip{Start: 50, End: 58, FrameDuration: "100ms"},
			Attack: npc.Clip{Start: 68, End: 81, FrameDuration: "100ms"},
			Hurt:   npc.Clip{Start: 17, End: 21, FrameDuration: "150ms"},
			Death:  npc.Clip{Start: 0, End: 9, FrameDuration: "100ms"},
		},
		Loot: &npc.LootTable{Items: []npc.ItemDrop{{ItemID: character.HPPotion, Chance: 0.1, MinQty: 1, MaxQty: 1}}},
	}
}

func nightborneTemplate() *npc.Template {
	return &npc.Template{
		ID: "nightborne", Name: "NightBorne", Kind: npc.KindBoss,
		MaxHP: 100, Atk: 16, Defense: 9, Spd: 14,
		Clips: npc.Clips{
			Attack:  npc.Clip{Start: 46, End: 58, FrameDuration: "100ms"},
			Hurt:    npc.Clip{Start: 23, End: 28, FrameDuration: "150ms"},
			Death:   npc.Clip{Start: 0, End: 23, FrameDuration: "100ms"},
			Special: npc.Clip{Start: 92, End: 101, FrameDuration: "120ms"},
		},
	}
}

type recordAudio struct {
	cues []battle.Cue
}

func (r *recordAudio) Play(c battle.Cue) { r.cues = append(r.cues, c) }

type fixture struct {
	s      *battle.Session
	player *character.Character
	enemy  npc.Enemy
	audio  *recordAudio
}

type option func(*config.BattleConfig, *battle.Deps, *character.Character)

func withSource(src dice.Source) option {
	return func(_ *config.BattleConfig, d *battle.Deps, _ *character.Character) {
		d.Roller = dice.NewLoggedRoller(src, nil)
	}
}

func withSpecials(reg *special.Registry) option {
	return func(_ *config.BattleConfig, d *battle.Deps, _ *character.Character) { d.Specials = reg }
}

func withLogger(l *zap.Logger) option {
	return func(_ *config.BattleConfig, d *battle.Deps, _ *character.Character) { d.Logger = l }
}

func withPlayer(f func(*character.Character)) option {
	return func(_ *config.BattleConfig, _ *battle.Deps, c *character.Character) { f(c) }
}

func withConfig(f func(*config.BattleConfig)) option {
	return func(cfg *config.BattleConfig, _ *battle.Deps, _ *character.Character) { f(cfg) }
}

func newFixture(t *testing.T, tmpl *npc.Template, opts ...option) *fixture {
	t.Helper()
	require.NoError(t, tmpl.Validate())
	player, err := character.Build("Archon", character.DefaultLoadout())
	require.NoError(t, err)
	enemy, err := npc.New(tmpl)
	require.NoError(t, err)

	cfg := config.DefaultBattle()
	audio := &recordAudio{}
	deps := battle.Deps{Roller: dice.NewLoggedRoller(dice.NewFixed(0), nil), Audio: audio}
	for _, o := range opts {
		o(&cfg, &deps, player)
	}
	s, err := battle.NewSession(cfg, player, enemy, deps)
	require.NoError(t, err)
	return &fixture{s: s, player: player, enemy: enemy, audio: audio}
}

// runFor ticks the session in fixed steps for d.
func (f *fixture) runFor(d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += step {
		f.s.Tick(step)
	}
}

// runUntil ticks until cond holds, failing after limit.
func (f *fixture) runUntil(t *testing.T, cond func() bool, limit time.Duration) {
	t.Helper()
	for elapsed := time.Duration(0); !cond(); elapsed += step {
		require.Less(t, elapsed, limit, "condition not reached; state %s", f.s.State())
		f.s.Tick(step)
	}
}

// hit waits for the attack pointer to enter the hit zone and presses.
func (f *fixture) hit(t *testing.T) {
	t.Helper()
	for i := 0; ; i++ {
		v, ok := f.s.AttackQTE()
		require.True(t, ok)
		require.True(t, v.Active, "window closed before the pointer reached the zone")
		if v.Zone.Contains(v.Angle) {
			require.True(t, f.s.HandleInput(battle.AttackPress()))
			return
		}
		require.Less(t, i, 1000)
		f.s.Tick(5 * time.Millisecond)
	}
}

// attack runs a full combo of n hits followed by a deliberate miss and resolves it.
func (f *fixture) attack(t *testing.T, hits int) {
	t.Helper()
	require.True(t, f.s.Attack())
	for i := 0; i < hits; i++ {
		f.hit(t)
	}
	require.True(t, f.s.HandleInput(battle.AttackPress())) // pointer restarts outside the zone
	require.Equal(t, battle.Resolving, f.s.State())
	f.s.Tick(0)
}

// dodgeAt waits for the pointer to come within dist of center and presses dir.
func (f *fixture) dodgeAt(t *testing.T, dir battle.Direction, dist float64) {
	t.Helper()
	for i := 0; ; i++ {
		v, ok := f.s.DodgeQTE()
		require.True(t, ok)
		if v.Moving && math.Abs(v.Pointer) <= dist {
			require.True(t, f.s.HandleInput(battle.Dodge(dir)))
			return
		}
		require.Less(t, i, 1000)
		f.s.Tick(5 * time.Millisecond)
	}
}

// waitMoving ticks until the dodge pointer starts moving.
func (f *fixture) waitMoving(t *testing.T) {
	t.Helper()
	f.runUntil(t, func() bool {
		v, ok := f.s.DodgeQTE()
		return ok && v.Moving
	}, 5*time.Second)
}

func singleCharge(id string, kind special.Kind, cost int) *special.Registry {
	reg := special.NewRegistry()
	reg.Register(&special.Def{ID: id, Name: id, MPCost: cost, Grant: special.Grant{Buff: kind, Charges: 1}})
	return reg
}

func fixedSource(vals ...int) dice.Source { return dice.NewFixed(vals...) }
