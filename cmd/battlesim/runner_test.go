package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/redarchon/internal/config"
	"github.com/cory-johannsen/redarchon/internal/game/battle"
	"github.com/cory-johannsen/redarchon/internal/game/character"
	"github.com/cory-johannsen/redarchon/internal/game/dice"
	"github.com/cory-johannsen/redarchon/internal/game/npc"
	"github.com/cory-johannsen/redarchon/internal/game/special"
	"github.com/cory-johannsen/redarchon/internal/presentation"
	"github.com/cory-johannsen/redarchon/internal/scripting"
)

type memorySink struct {
	saved []battle.Report
}

func (m *memorySink) Save(_ context.Context, rep battle.Report) error {
	m.saved = append(m.saved, rep)
	return nil
}

func newRunner(t *testing.T, policy string) (*runner, *memorySink) {
	t.Helper()
	reg, err := npc.LoadRegistry(filepath.Join("..", "..", "content", "enemies"))
	require.NoError(t, err)
	specials, err := special.LoadDirectory(filepath.Join("..", "..", "content", "specials"))
	require.NoError(t, err)
	logger := zaptest.NewLogger(t)
	roller := dice.NewLoggedRoller(dice.NewSeededSource(42), logger)

	var pilot *scripting.Autopilot
	if policy == "" {
		pilot, err = scripting.NewAutopilot(roller, logger, 0)
	} else {
		pilot, err = scripting.LoadAutopilotString(policy, roller, logger, 0)
	}
	require.NoError(t, err)
	t.Cleanup(pilot.Close)

	sink := &memorySink{}
	return &runner{
		battleCfg: config.DefaultBattle,
		enemies:   reg,
		specials:  specials,
		roller:    roller,
		pilot:     pilot,
		sink:      sink,
		logger:    logger,
		step:      time.Second / 60,
		maxBattle: 5 * time.Minute,
	}, sink
}

func newPlayer(t *testing.T) *character.Character {
	t.Helper()
	p, err := character.Build("Archon", character.DefaultLoadout())
	require.NoError(t, err)
	return p
}

func TestRunner_DefeatsNecromancerAndSavesReport(t *testing.T) {
	r, sink := newRunner(t, "")
	reports, err := r.run(context.Background(), newPlayer(t), []string{"necromancer"})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, battle.OutcomeVictory, reports[0].Outcome)
	assert.Equal(t, "necromancer", reports[0].EnemyID)
	assert.Equal(t, reports, sink.saved)
}

func TestRunner_DefeatEndsGauntlet(t *testing.T) {
	r, sink := newRunner(t, `function choose_action(v) return "attack" end`)
	player := newPlayer(t)
	player.HP = 3
	reports, err := r.run(context.Background(), player, []string{"necromancer", "nightborne"})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, battle.OutcomeDefeat, reports[0].Outcome)
	assert.Len(t, sink.saved, 1)
}

func TestRunner_RendersFrames(t *testing.T) {
	r, _ := newRunner(t, "")
	var out bytes.Buffer
	r.out = &out
	r.renderEvery = 30
	_, err := r.run(context.Background(), newPlayer(t), []string{"necromancer"})
	require.NoError(t, err)
	text := presentation.StripANSI(out.String())
	assert.Contains(t, text, "Archon vs Necromancer")
	assert.Contains(t, text, "*** VICTORY ***")
}

func TestRunner_PlainFramesHaveNoEscapes(t *testing.T) {
	r, _ := newRunner(t, "")
	var out bytes.Buffer
	r.out = &out
	r.renderEvery = 30
	r.plain = true
	_, err := r.run(context.Background(), newPlayer(t), []string{"necromancer"})
	require.NoError(t, err)
	assert.NotContains(t, out.String(), "\033[")
	assert.Contains(t, out.String(), "*** VICTORY ***")
}

func TestRunner_UnknownEnemy(t *testing.T) {
	r, _ := newRunner(t, "")
	_, err := r.run(context.Background(), newPlayer(t), []string{"dragon"})
	assert.ErrorIs(t, err, npc.ErrUnknownTemplate)
}

func TestRunner_MaxBattleAborts(t *testing.T) {
	r, _ := newRunner(t, `function choose_action(v) return "mp_potion" end`)
	r.maxBattle = time.Second
	_, err := r.run(context.Background(), newPlayer(t), []string{"necromancer"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeded")
}

func TestRunner_CancelledContext(t *testing.T) {
	r, _ := newRunner(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.run(ctx, newPlayer(t), []string{"necromancer"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSplitIDs(t *testing.T) {
	assert.Equal(t, []string{"necromancer", "nightborne"}, splitIDs(" necromancer, ,nightborne "))
	assert.Nil(t, splitIDs(""))
}
