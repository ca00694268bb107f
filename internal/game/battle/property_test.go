package battle_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/redarchon/internal/config"
	"github.com/cory-johannsen/redarchon/internal/game/battle"
	"github.com/cory-johannsen/redarchon/internal/game/character"
	"github.com/cory-johannsen/redarchon/internal/game/dice"
	"github.com/cory-johannsen/redarchon/internal/game/npc"
)

func TestSession_Property_InvariantsHoldUnderRandomPlay(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tmpl := necromancerTemplate()
		if rapid.Bool().Draw(rt, "boss") {
			tmpl = nightborneTemplate()
		}
		player, err := character.Build("A", character.DefaultLoadout())
		require.NoError(rt, err)
		enemy, err := npc.New(tmpl)
		require.NoError(rt, err)
		roller := dice.NewLoggedRoller(dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed")), nil)
		s, err := battle.NewSession(config.DefaultBattle(), player, enemy, battle.Deps{Roller: roller})
		require.NoError(rt, err)

		inputs := []battle.Input{
			battle.Move(battle.Left), battle.Move(battle.Right), battle.Confirm(),
			battle.AttackPress(), battle.Dodge(battle.Up), battle.Dodge(battle.Down),
			battle.Dodge(battle.Left), battle.Dodge(battle.Right),
		}
		for i := 0; i < 200 && !s.Ended(); i++ {
			if rapid.Bool().Draw(rt, "input") {
				s.HandleInput(inputs[rapid.IntRange(0, len(inputs)-1).Draw(rt, "which")])
			}
			s.Tick(time.Duration(rapid.IntRange(0, 300).Draw(rt, "ms")) * time.Millisecond)

			ps, es := player.CombatStats(), enemy.CombatStats()
			require.GreaterOrEqual(rt, ps.HP, 0)
			require.LessOrEqual(rt, ps.HP, ps.MaxHP)
			require.GreaterOrEqual(rt, ps.MP, 0)
			require.LessOrEqual(rt, ps.MP, ps.MaxMP)
			require.GreaterOrEqual(rt, es.HP, 0)
			require.LessOrEqual(rt, es.HP, es.MaxHP)
			b := s.Buffs()
			require.GreaterOrEqual(rt, b.Overclock, 0)
			require.GreaterOrEqual(rt, b.Guard, 0)
			require.GreaterOrEqual(rt, b.Repair, 0)
			if ps.HP == 0 {
				require.Equal(rt, battle.Defeat, s.State())
			}
		}
		if s.Ended() {
			require.NotEqual(rt, battle.OutcomeNone, s.Outcome())
			_, ok := s.Report()
			require.True(rt, ok)
		}
	})
}
