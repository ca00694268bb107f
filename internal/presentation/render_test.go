package presentation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/redarchon/internal/config"
	"github.com/cory-johannsen/redarchon/internal/game/battle"
	"github.com/cory-johannsen/redarchon/internal/game/character"
	"github.com/cory-johannsen/redarchon/internal/game/combat"
	"github.com/cory-johannsen/redarchon/internal/game/dice"
	"github.com/cory-johannsen/redarchon/internal/game/npc"
	"github.com/cory-johannsen/redarchon/internal/game/special"
	"github.com/cory-johannsen/redarchon/internal/presentation"
)

func newSession(t *testing.T) *battle.Session {
	t.Helper()
	tmpl := &npc.Template{
		ID: "necromancer", Name: "Necromancer", Kind: npc.KindBasic,
		MaxHP: 30, Atk: 10, Defense: 5, Spd: 11,
		Clips: npc.Clips{
			Idle:   npc.Clip{Start: 50, End: 58, FrameDuration: "100ms"},
			Attack: npc.Clip{Start: 68, End: 81, FrameDuration: "100ms"},
			Hurt:   npc.Clip{Start: 17, End: 21, FrameDuration: "150ms"},
			Death:  npc.Clip{Start: 0, End: 9, FrameDuration: "100ms"},
		},
	}
	enemy, err := npc.New(tmpl)
	require.NoError(t, err)
	player, err := character.Build("Archon", character.DefaultLoadout())
	require.NoError(t, err)
	s, err := battle.NewSession(config.DefaultBattle(), player, enemy, battle.Deps{
		Roller: dice.NewLoggedRoller(dice.NewFixed(0), nil),
	})
	require.NoError(t, err)
	return s
}

func TestSnapshot_InitialState(t *testing.T) {
	v := presentation.Snapshot(newSession(t))
	assert.Equal(t, battle.PlayerTurn, v.State)
	assert.Equal(t, "Archon", v.PlayerName)
	assert.Equal(t, "Necromancer", v.EnemyName)
	assert.False(t, v.Boss)
	assert.Equal(t, presentation.Gauge{Current: 50, Max: 50, Display: 50}, v.PlayerHP)
	assert.Equal(t, presentation.Gauge{Current: 30, Max: 30, Display: 30}, v.EnemyHP)
	assert.Equal(t, 1, v.Potions[character.HPPotion])
	assert.True(t, v.Menu.Visible)
	assert.False(t, v.HasAttack)
	assert.False(t, v.HasDodge)
	assert.Equal(t, battle.ClipIdle, v.Clip)
	assert.Equal(t, 50, v.Frame)
}

func TestSnapshot_DoesNotAliasInventory(t *testing.T) {
	s := newSession(t)
	v := presentation.Snapshot(s)
	v.Potions[character.HPPotion] = 99
	assert.Equal(t, 1, s.Player().Count(character.HPPotion))
}

func TestRender_Menu(t *testing.T) {
	out := presentation.StripANSI(presentation.Render(presentation.Snapshot(newSession(t))))
	assert.Contains(t, out, "Archon vs Necromancer")
	assert.Contains(t, out, "> Attack <")
	assert.Contains(t, out, "  Items  ")
	assert.Contains(t, out, " 50/50")
	assert.Contains(t, out, "HP Potion x1")
}

func TestRender_AttackDial(t *testing.T) {
	s := newSession(t)
	require.True(t, s.Attack())
	v := presentation.Snapshot(s)
	require.True(t, v.HasAttack)
	out := presentation.StripANSI(presentation.Render(v))
	assert.Contains(t, out, "hits 0  press!")
	assert.NotContains(t, out, "> Attack <")
	assert.Equal(t, 1, strings.Count(out, "^"))
}

func TestRender_PopupOnlyWhileTimed(t *testing.T) {
	s := newSession(t)
	s.UseItem(character.MPPotion)
	out := presentation.StripANSI(presentation.Render(presentation.Snapshot(s)))
	assert.Contains(t, out, "You used an MP Potion and restored 0 MP!")

	v := presentation.Snapshot(s)
	assert.Positive(t, v.PopupRemaining)
	v.PopupRemaining = 0
	assert.NotContains(t, presentation.StripANSI(presentation.Render(v)), "MP Potion and restored")
}

func TestRenderGauge_FillsProportionally(t *testing.T) {
	out := presentation.StripANSI(presentation.RenderGauge("HP", presentation.Gauge{Current: 25, Max: 50, Display: 25}, presentation.Green))
	assert.Contains(t, out, "["+strings.Repeat("#", 10)+strings.Repeat(".", 10)+"]")
	assert.Contains(t, out, " 25/50")
}

func TestRenderBuffs(t *testing.T) {
	v := presentation.View{Buffs: special.Buffs{Overclock: 2, Guard: 1}}
	out := presentation.StripANSI(presentation.RenderBuffs(v))
	assert.Equal(t, "Overclock x2  Guard x1", out)
	assert.Equal(t, "", presentation.RenderBuffs(presentation.View{}))
}

func TestRenderDodge(t *testing.T) {
	d := battle.DodgeView{
		Round: 2, Rounds: 4, Direction: battle.Left, Pointer: 0, BarWidth: 260,
		Zones:  combat.DodgeZones{Inner: 16.5, Middle: 47.5, Outer: 109.5},
		Moving: true, Accumulated: 8,
	}
	out := presentation.StripANSI(presentation.RenderDodge(d))
	assert.Contains(t, out, "round 2/4  press LEFT  taken 8")
	track := out[1:strings.Index(out, "]")]
	require.Len(t, track, 53)
	assert.Equal(t, byte('|'), track[26])
	assert.Equal(t, byte('.'), track[0])
	assert.Equal(t, byte('#'), track[25])

	d.Moving = false
	out = presentation.StripANSI(presentation.RenderDodge(d))
	assert.NotContains(t, out, "|")
}

func TestRenderOutcome(t *testing.T) {
	assert.Equal(t, "*** VICTORY ***", presentation.StripANSI(presentation.RenderOutcome(battle.OutcomeVictory)))
	assert.Equal(t, "*** DEFEAT ***", presentation.StripANSI(presentation.RenderOutcome(battle.OutcomeDefeat)))
	assert.Equal(t, "", presentation.RenderOutcome(battle.OutcomeNone))
}

// Property: the gauge always draws exactly barWidth cells regardless of value.
func TestPropertyGaugeWidthConstant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		max := rapid.IntRange(1, 500).Draw(t, "max")
		display := rapid.Float64Range(-50, 600).Draw(t, "display")
		out := presentation.StripANSI(presentation.RenderGauge("X", presentation.Gauge{Current: 0, Max: max, Display: display}, presentation.Red))
		cells := out[strings.Index(out, "[")+1 : strings.Index(out, "]")]
		assert.Len(t, cells, 20)
	})
}
